// Package chart renders a day's voting result as a PNG bar chart: one column
// per timeslot, one block per voter, green when the slot reached quorum and
// red when it did not.
package chart

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
)

// SlotColumn is one timeslot column with the display names of its voters.
type SlotColumn struct {
	Label  string
	Voters []string
}

const (
	barWidth        = 90.0
	barSpacing      = 10.0
	blockHeight     = 25.0
	verticalSpacing = 5.0
)

// Render draws the columns in the given order and encodes the chart to PNG.
// It is pure: no I/O besides the returned bytes.
func Render(day string, columns []SlotColumn, quorum int) ([]byte, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("chart: no slot columns to render")
	}

	deepest := 1
	for _, col := range columns {
		if len(col.Voters) > deepest {
			deepest = len(col.Voters)
		}
	}
	width := len(columns)*100 + int(barSpacing)
	height := deepest*30 + 100

	dc := gg.NewContext(width, height)
	dc.SetRGB255(210, 210, 210)
	dc.Clear()

	for i, col := range columns {
		x := float64(i)*(barWidth+barSpacing) + barSpacing
		met := len(col.Voters) >= quorum
		for j, voter := range col.Voters {
			y := float64(height) - float64(j+1)*(blockHeight+verticalSpacing) - 30
			if met {
				dc.SetRGB255(0, 153, 0)
			} else {
				dc.SetRGB255(204, 0, 0)
			}
			dc.DrawRectangle(x, y, barWidth, blockHeight)
			dc.Fill()
			dc.SetRGB255(255, 255, 255)
			dc.DrawString(voter, x+5, y+17)
		}
		dc.SetRGB255(0, 0, 0)
		dc.DrawString(col.Label, x+5, float64(height)-8)
	}

	dc.SetRGB255(0, 0, 0)
	dc.DrawString(fmt.Sprintf("Slots für %s", day), float64(width)/2-50, 20)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("chart: failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
