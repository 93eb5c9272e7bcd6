// Package render draws the per-scenario comparison figure: an ordination
// biplot stacked above a grouped bar chart of variable importance.
package render

import (
	"fmt"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/paulabirocchi/Paper-Phytoplankton-TSB/internal/compare"
	"github.com/paulabirocchi/Paper-Phytoplankton-TSB/internal/ordination"
)

var (
	ccaColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	olsColor  = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	taxaColor = color.RGBA{R: 44, G: 160, B: 44, A: 255}
)

// Meta carries the annotation text for one scenario's figure. The axis
// labels embed the externally supplied explained-variance percentages; they
// are not recomputed here.
type Meta struct {
	Title      string
	Axis1Label string
	Axis2Label string
}

// Figure renders comparison results to PNG files.
type Figure struct {
	Width, Height vg.Length
}

// NewFigure returns a Figure with the default canvas size.
func NewFigure() *Figure {
	return &Figure{Width: 8 * vg.Inch, Height: 11 * vg.Inch}
}

// Render writes the two-panel figure for one scenario to path.
func (f *Figure) Render(c *compare.Comparison, meta Meta, path string) error {
	biplot, err := biplotPanel(c.Scores, meta)
	if err != nil {
		return fmt.Errorf("biplot panel: %w", err)
	}
	bars, err := barsPanel(c)
	if err != nil {
		return fmt.Errorf("bar panel: %w", err)
	}

	img := vgimg.New(f.Width, f.Height)
	dc := draw.New(img)
	top, bottom := splitVertical(dc)
	biplot.Draw(top)
	bars.Draw(bottom)

	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create figure: %w", err)
	}
	defer w.Close()
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("write figure: %w", err)
	}
	return nil
}

func splitVertical(dc draw.Canvas) (top, bottom draw.Canvas) {
	mid := (dc.Min.Y + dc.Max.Y) / 2
	top = dc
	top.Min.Y = mid
	bottom = dc
	bottom.Max.Y = mid
	return top, bottom
}

// biplotPanel plots taxa as labeled points and environmental predictors as
// arrows from the origin with labels at the tips.
func biplotPanel(res *ordination.Result, meta Meta) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = meta.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = meta.Axis1Label
	p.Y.Label.Text = meta.Axis2Label
	p.Add(plotter.NewGrid())

	taxa := res.Taxa()
	pts := make(plotter.XYs, len(taxa))
	labels := make([]string, len(taxa))
	for i, name := range taxa {
		s := res.TaxonScores[name]
		pts[i] = plotter.XY{X: s[0], Y: s[1]}
		labels[i] = name
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	scatter.GlyphStyle.Color = taxaColor
	scatter.GlyphStyle.Radius = vg.Points(3)
	p.Add(scatter)

	taxonLabels, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: labels})
	if err != nil {
		return nil, err
	}
	p.Add(taxonLabels)

	for _, name := range res.Variables() {
		s := res.EnvScores[name]
		arrow, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: s[0], Y: s[1]}})
		if err != nil {
			return nil, err
		}
		arrow.Color = ccaColor
		arrow.Width = vg.Points(1.5)
		p.Add(arrow)

		tip, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    []plotter.XY{{X: s[0], Y: s[1]}},
			Labels: []string{name},
		})
		if err != nil {
			return nil, err
		}
		p.Add(tip)
	}
	return p, nil
}

// barsPanel plots the two importance series side by side, one group per
// environmental variable.
func barsPanel(c *compare.Comparison) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Relative importance of environmental variables"
	p.Y.Label.Text = "Contribution (%)"

	w := vg.Points(12)
	cca, err := plotter.NewBarChart(plotter.Values(c.Ordination), w)
	if err != nil {
		return nil, err
	}
	cca.Color = ccaColor
	cca.Offset = -w / 2
	cca.LineStyle.Width = 0

	ols, err := plotter.NewBarChart(plotter.Values(c.Regression), w)
	if err != nil {
		return nil, err
	}
	ols.Color = olsColor
	ols.Offset = w / 2
	ols.LineStyle.Width = 0

	p.Add(cca, ols)
	p.Legend.Add("CCA contribution", cca)
	p.Legend.Add("Regression importance", ols)
	p.Legend.Top = true
	p.NominalX(c.Variables...)
	return p, nil
}
