// Command fromconfig builds a pipeline from a YAML file, runs it over a CSV
// file and writes the result as CSV.
//
//	fromconfig --config pipeline.yaml --input train.csv --output out.csv
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/ryuk2git/dspipeline/internal/preview"
	"github.com/ryuk2git/dspipeline/pkg/config"
	"github.com/ryuk2git/dspipeline/pkg/frame"
)

func main() {
	fs := pflag.NewFlagSet("fromconfig", pflag.ExitOnError)
	cfgFile := fs.String("config", "pipeline.yaml", "pipeline definition")
	input := fs.String("input", "", "input CSV file (default stdin)")
	output := fs.String("output", "", "output CSV file (default stdout)")
	head := fs.Int("preview", 0, "print the first N output rows to stderr")
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.LoadWithFlags(*cfgFile, fs)
	if err != nil {
		log.Fatal(err)
	}

	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	p, err := cfg.Build(logger)
	if err != nil {
		log.Fatal(err)
	}

	in := os.Stdin
	if *input != "" {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		in = f
	}
	data, err := frame.ReadCSV(in)
	if err != nil {
		log.Fatal(err)
	}

	out, err := p.FitTransform(data, cfg.RunOptions())
	if err != nil {
		log.Fatal(err)
	}
	logger.Info("pipeline finished",
		slog.String("pipeline", p.Description()),
		slog.Int("rows_in", data.NumRows()),
		slog.Int("rows_out", out.NumRows()),
		slog.Int("cols_out", out.NumCols()),
	)

	w := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		w = f
	}
	if err := frame.WriteCSV(w, out); err != nil {
		log.Fatal(err)
	}
	if *head > 0 {
		preview.Render(os.Stderr, out, *head)
		fmt.Fprintln(os.Stderr)
	}
}
