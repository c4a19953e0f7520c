package timeline

import (
	"math"

	"dubline/internal/media/pcm"
)

// duckEnvelope returns a per-frame gain curve that sits at 1.0 outside voiced
// intervals and at depthDB inside them, ramping between the two with a
// raised-cosine over crossfadeMs on each side of every interval.
func duckEnvelope(format pcm.Format, totalFrames int, intervals []Interval, depthDB float64, crossfadeMs int) []float32 {
	env := make([]float32, totalFrames)
	for i := range env {
		env[i] = 1
	}
	if len(intervals) == 0 || depthDB >= 0 {
		return env
	}
	duck := float32(pcm.GainFactor(depthDB))
	fade := format.FramesForMs(crossfadeMs)

	lower := func(f int, g float32) {
		if f >= 0 && f < totalFrames && g < env[f] {
			env[f] = g
		}
	}

	for _, iv := range intervals {
		start := min(format.FramesForMs(iv.StartMs), totalFrames)
		end := min(format.FramesForMs(iv.EndMs), totalFrames)
		for f := start; f < end; f++ {
			lower(f, duck)
		}
		// Ramp down ahead of the interval and back up after it.
		for k := 0; k < fade; k++ {
			w := rampWeight(k, fade)
			lower(start-fade+k, duck+(1-duck)*(1-w))
			lower(end+k, duck+(1-duck)*w)
		}
	}
	return env
}

// rampWeight rises from ~0 to ~1 across n steps along a raised cosine.
func rampWeight(k, n int) float32 {
	theta := float64(k+1) / float64(n+1) * math.Pi
	return float32(0.5 * (1 - math.Cos(theta)))
}
