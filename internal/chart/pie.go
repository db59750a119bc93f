// Package chart renders the chart-ready dataset into a pie chart PNG.
package chart

import (
	"bytes"
	"fmt"

	"github.com/golang/freetype/truetype"
	gochart "github.com/wcharczuk/go-chart/v2"

	"scontrini/internal/core"
)

// PieRenderer draws expense breakdown pie charts. A CJK-capable font is
// picked up from the system when available so Japanese/Chinese/Korean item
// names do not render as boxes.
type PieRenderer struct {
	width  int
	height int
	font   *truetype.Font
}

// NewPieRenderer creates a renderer with the default canvas size.
func NewPieRenderer() *PieRenderer {
	return &PieRenderer{
		width:  1024,
		height: 768,
		font:   loadCJKFont(),
	}
}

// RenderPie produces a PNG of the dataset. Labels are attached to their
// slices in order.
func (p *PieRenderer) RenderPie(dataset core.ChartDataset, title string) ([]byte, error) {
	if len(dataset.Sizes) == 0 {
		return nil, fmt.Errorf("empty chart dataset")
	}
	if len(dataset.Sizes) != len(dataset.Labels) {
		return nil, fmt.Errorf("dataset has %d sizes but %d labels",
			len(dataset.Sizes), len(dataset.Labels))
	}

	values := make([]gochart.Value, len(dataset.Sizes))
	for i, size := range dataset.Sizes {
		values[i] = gochart.Value{Value: size, Label: dataset.Labels[i]}
	}

	pie := gochart.PieChart{
		Title:  title,
		Width:  p.width,
		Height: p.height,
		Font:   p.font,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render pie chart: %w", err)
	}
	return buf.Bytes(), nil
}
