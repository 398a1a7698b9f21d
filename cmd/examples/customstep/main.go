// Command customstep shows how to plug a user-defined step into a pipeline.
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ryuk2git/dspipeline/internal/preview"
	"github.com/ryuk2git/dspipeline/pkg/frame"
	"github.com/ryuk2git/dspipeline/pkg/pipeline"
	"github.com/ryuk2git/dspipeline/pkg/transform"
)

// containsA keeps the features whose name contains "a".
type containsA struct {
	features []string
	fitted   bool
}

func (s *containsA) Description() string   { return "Select features with 'a'" }
func (s *containsA) ChangesRowCount() bool { return false }

func (s *containsA) Fit(data *frame.Frame, label string) (*frame.Frame, error) {
	feats, _, _ := frame.SplitLabel(data, label)
	s.features = s.features[:0]
	for _, n := range feats.Names() {
		if strings.Contains(n, "a") {
			s.features = append(s.features, n)
		}
	}
	s.fitted = true
	return s.Transform(data, label)
}

func (s *containsA) Transform(data *frame.Frame, label string) (*frame.Frame, error) {
	if !s.fitted {
		return nil, pipeline.NotFitted(s)
	}
	feats, target, _ := frame.SplitLabel(data, label)
	out, err := feats.Select(s.features...)
	if err != nil {
		return nil, err
	}
	return frame.JoinLabel(out, label, target)
}

func main() {
	appendInput := pflag.Bool("append", false, "return the input columns next to the derived ones")
	verbose := pflag.BoolP("verbose", "v", false, "log every pipeline step")
	pflag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	data, err := frame.FromRows(
		[]string{"alpha", "beta", "epsilon", "omicron", "label"},
		[][]float64{
			{1, 10, 100, 5, 0},
			{2, 20, 200, 4, 1},
			{3, 30, 300, 3, 0},
			{4, 40, 400, 2, 1},
		},
	)
	if err != nil {
		log.Fatal(err)
	}

	p := pipeline.New([]pipeline.Step{
		&containsA{},
		transform.NewMinMaxScaler(transform.ScaleConfig{}),
	}, pipeline.WithAppendInput(*appendInput), pipeline.WithLogger(logger))

	opts := pipeline.DefaultRunOptions()
	opts.Verbose = *verbose
	out, err := p.FitTransform(data, opts)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(p.Description())
	preview.Render(os.Stdout, out, 0)
}
