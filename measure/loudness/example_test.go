package loudness_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-remix/measure/loudness"
)

func ExampleMeter() {
	fs := 48000.0
	m := loudness.NewMeter(
		loudness.WithSampleRate(fs),
		loudness.WithChannels(1),
	)

	// 4 s of 1 kHz at 0.5 amplitude, about -9 LUFS after K-weighting.
	sig := make([]float64, int(fs*4))
	for i := range sig {
		sig[i] = 0.5 * math.Sin(2*math.Pi*1000.0/fs*float64(i))
	}

	m.StartIntegration()
	m.ProcessBlock(sig)

	fmt.Printf("Integrated: %.0f LUFS\n", m.Integrated())
	// Output: Integrated: -9 LUFS
}
