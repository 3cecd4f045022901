package audio

// Hook transforms normalized samples in place of the originals. Hooks run
// between decoding the remote PCM and re-quantizing it into the container.
type Hook func(samples []float32) []float32

// ApplyHooks runs each hook over the samples in order.
func ApplyHooks(samples []float32, hooks ...Hook) []float32 {
	out := samples
	for _, hook := range hooks {
		out = hook(out)
	}

	return out
}

// FadeIn returns a hook applying a linear fade-in ramp over ms milliseconds.
func FadeIn(sampleRate int, ms float64) Hook {
	return func(samples []float32) []float32 {
		n := rampSamples(sampleRate, ms, len(samples))
		out := make([]float32, len(samples))
		copy(out, samples)
		for i := range n {
			out[i] *= float32(i) / float32(n)
		}

		return out
	}
}

// FadeOut returns a hook applying a linear fade-out ramp over ms milliseconds.
func FadeOut(sampleRate int, ms float64) Hook {
	return func(samples []float32) []float32 {
		n := rampSamples(sampleRate, ms, len(samples))
		out := make([]float32, len(samples))
		copy(out, samples)
		for i := range n {
			out[len(out)-1-i] *= float32(i) / float32(n)
		}

		return out
	}
}

func rampSamples(sampleRate int, ms float64, max int) int {
	n := int(float64(sampleRate) * ms / 1000.0)
	if n > max {
		n = max
	}
	if n < 0 {
		n = 0
	}

	return n
}
