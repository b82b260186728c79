// Package sweep measures bit error rate across a range of Eb/N0 settings by
// repeating independent transmissions and averaging.
package sweep

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"

	"github.com/jeongseonghan/semcom/internal/link"
)

// DefaultPoints is the customary 0..10 dB measurement grid.
var DefaultPoints = []float64{0, 2, 4, 6, 8, 10}

// Point is the averaged outcome at one Eb/N0 setting. LastText is the
// reconstruction from the final trial, kept for display.
type Point struct {
	EbN0dB   float64 `json:"ebno_db"`
	BER      float64 `json:"ber"`
	Trials   int     `json:"trials"`
	BitCount int     `json:"bit_count"`
	LastText string  `json:"last_text"`
}

// ProgressFunc is called after each completed point, with done counting from
// 1 to total.
type ProgressFunc func(done, total int, p Point)

// Runner sweeps a text across Eb/N0 points.
type Runner struct {
	Link    *link.Link
	Trials  int          // transmissions per point; 0 means 1
	OnPoint ProgressFunc // optional
}

// NewRunner creates a sweep runner over the given link.
func NewRunner(l *link.Link, trials int) *Runner {
	return &Runner{Link: l, Trials: trials}
}

// Run transmits the text Trials times at every Eb/N0 point, drawing all
// noise from src, and returns the averaged results in point order.
func (r *Runner) Run(text string, points []float64, src rand.Source) []Point {
	if len(points) == 0 {
		points = DefaultPoints
	}
	trials := r.Trials
	if trials < 1 {
		trials = 1
	}

	out := make([]Point, 0, len(points))
	for i, ebn0dB := range points {
		bers := make([]float64, trials)
		var last link.Result
		for j := 0; j < trials; j++ {
			last = r.Link.Transmit(text, ebn0dB, src)
			bers[j] = last.BER
		}

		p := Point{
			EbN0dB:   ebn0dB,
			BER:      stat.Mean(bers, nil),
			Trials:   trials,
			BitCount: last.BitCount(),
			LastText: last.Text,
		}
		out = append(out, p)

		if r.OnPoint != nil {
			r.OnPoint(i+1, len(points), p)
		}
	}
	return out
}
