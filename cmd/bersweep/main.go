// Command bersweep prints averaged bit error rates for a text across a
// range of Eb/N0 settings.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"golang.org/x/exp/rand"

	"github.com/jeongseonghan/semcom/internal/link"
	"github.com/jeongseonghan/semcom/internal/sweep"
)

func main() {
	text := flag.String("text", "Hello, world!", "Text to transmit")
	min := flag.Float64("min", 0, "Lowest Eb/N0 in dB")
	max := flag.Float64("max", 10, "Highest Eb/N0 in dB")
	stepSize := flag.Float64("step", 2, "Eb/N0 step in dB")
	trials := flag.Int("trials", 1, "Transmissions per point")
	seed := flag.Uint64("seed", 0, "Noise seed (0 uses current time)")
	flag.Parse()

	if *stepSize <= 0 {
		log.Fatal("step must be positive")
	}

	var points []float64
	for p := *min; p <= *max+1e-9; p += *stepSize {
		points = append(points, p)
	}

	src := rand.NewSource(uint64(time.Now().UnixNano()))
	if *seed != 0 {
		src = rand.NewSource(*seed)
	}

	runner := sweep.NewRunner(link.Default(), *trials)
	for _, p := range runner.Run(*text, points, src) {
		fmt.Printf("Eb/N0 = %g dB | BER = %.5f | Received: %q\n", p.EbN0dB, p.BER, p.LastText)
	}
}
