// Command regression preprocesses a synthetic regression dataset with a
// pipeline, fits ordinary least squares on the result and reports the test
// error.
package main

import (
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"math/rand"
	"os"

	"github.com/spf13/pflag"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ryuk2git/dspipeline/internal/preview"
	"github.com/ryuk2git/dspipeline/pkg/frame"
	"github.com/ryuk2git/dspipeline/pkg/outlier"
	"github.com/ryuk2git/dspipeline/pkg/pipeline"
	"github.com/ryuk2git/dspipeline/pkg/selection"
	"github.com/ryuk2git/dspipeline/pkg/stats"
	"github.com/ryuk2git/dspipeline/pkg/transform"
)

// generateData creates n samples with d features. Only the first half of the
// features influence the label; a few rows are corrupted into outliers.
func generateData(n, d int, seed int64) (*frame.Frame, error) {
	rng := rand.New(rand.NewSource(seed))
	names := make([]string, d+1)
	for j := range d {
		names[j] = fmt.Sprintf("x%d", j)
	}
	names[d] = pipeline.DefaultLabel

	rows := make([][]float64, n)
	for i := range rows {
		row := make([]float64, d+1)
		y := 3.0
		for j := range d {
			row[j] = rng.NormFloat64() * 5
			if j < d/2 {
				y += float64(j+1) * row[j]
			}
		}
		row[d] = y + rng.NormFloat64()*2
		if i%97 == 0 {
			for j := range d {
				row[j] *= 40
			}
		}
		rows[i] = row
	}
	return frame.FromRows(names, rows)
}

// design returns the feature matrix of f with a leading intercept column.
func design(f *frame.Frame) (*mat.Dense, error) {
	feats, _, _ := frame.SplitLabel(f, pipeline.DefaultLabel)
	x, err := feats.Dense()
	if err != nil {
		return nil, err
	}
	r, c := x.Dims()
	out := mat.NewDense(r, c+1, nil)
	for i := range r {
		out.Set(i, 0, 1)
		for j := range c {
			out.Set(i, j+1, x.At(i, j))
		}
	}
	return out, nil
}

func plotPredictions(actual, predicted []float64, filename string) error {
	p := plot.New()
	p.Title.Text = "Predicted vs Actual"
	p.X.Label.Text = "Actual"
	p.Y.Label.Text = "Predicted"

	pts := make(plotter.XYs, len(actual))
	for i := range actual {
		pts[i].X = actual[i]
		pts[i].Y = predicted[i]
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	s.Color = color.RGBA{B: 255, A: 255, R: 50, G: 50}
	p.Add(s)

	lo, hi := stats.MinMax(actual)
	l, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return err
	}
	l.Color = color.RGBA{R: 255, A: 255}
	l.LineStyle.Width = vg.Points(2)
	p.Add(l)

	return p.Save(5*vg.Inch, 5*vg.Inch, filename)
}

func main() {
	rows := pflag.Int("rows", 1000, "number of samples")
	features := pflag.Int("features", 10, "number of features")
	seed := pflag.Int64("seed", 1, "random seed")
	plotFile := pflag.String("plot", "", "write a predicted-vs-actual plot to this PNG file")
	verbose := pflag.BoolP("verbose", "v", false, "log every pipeline step")
	pflag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	data, err := generateData(*rows, *features, *seed)
	if err != nil {
		log.Fatal(err)
	}
	train, test, err := frame.TrainTestSplit(data, 0.3, *seed)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Train size: %d, Test size: %d\n", train.NumRows(), test.NumRows())

	remove, err := outlier.NewDistance(outlier.DistanceConfig{Remove: 5})
	if err != nil {
		log.Fatal(err)
	}
	pearson, err := selection.NewPearson(selection.PearsonConfig{Threshold: 0.25})
	if err != nil {
		log.Fatal(err)
	}
	p := pipeline.New([]pipeline.Step{
		transform.NewStandardScaler(transform.ScaleConfig{}),
		remove,
		pearson,
	}, pipeline.WithLogger(logger))

	opts := pipeline.DefaultRunOptions()
	opts.Verbose = *verbose
	trainOut, err := p.FitWith(train, opts)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\n%s kept %v\n", p.Description(), pearson.Selected())
	preview.Render(os.Stdout, trainOut, 5)

	opts.AllowRowRemoval = false
	testOut, err := p.TransformWith(test, opts)
	if err != nil {
		log.Fatal(err)
	}

	x, err := design(trainOut)
	if err != nil {
		log.Fatal(err)
	}
	y, _ := trainOut.Column(pipeline.DefaultLabel)
	var beta mat.VecDense
	if err := beta.SolveVec(x, mat.NewVecDense(len(y), y)); err != nil {
		log.Fatal(err)
	}

	xt, err := design(testOut)
	if err != nil {
		log.Fatal(err)
	}
	var pred mat.VecDense
	pred.MulVec(xt, &beta)
	predicted := pred.RawVector().Data
	actual, _ := testOut.Column(pipeline.DefaultLabel)

	fmt.Printf("\nTest MAE: %.4f\n", stats.MAE(actual, predicted))
	fmt.Printf("Test R2:  %.4f\n", stats.R2(actual, predicted))

	if *plotFile != "" {
		if err := plotPredictions(actual, predicted, *plotFile); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Saved plot to %s\n", *plotFile)
	}
}
