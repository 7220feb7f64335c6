package resample_test

import (
	"fmt"

	"github.com/cwbudde/algo-remix/dsp/resample"
)

func ExampleNewForRates() {
	c, _ := resample.NewForRates(44100, 48000, resample.WithQuality(resample.QualityBest))
	up, down := c.Ratio()
	fmt.Printf("ratio=%d/%d taps=%d\n", up, down, c.TapsPerPhase())
	// Output:
	// ratio=160/147 taps=64
}

func ExampleConvertRates() {
	in := make([]float64, 4410)
	out, _ := resample.ConvertRates(in, 44100, 48000)
	fmt.Printf("in=%d out=%d\n", len(in), len(out))
	// Output:
	// in=4410 out=4800
}
