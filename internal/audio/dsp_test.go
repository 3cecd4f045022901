package audio

import (
	"testing"
)

func constSamples(n int, v float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}

	return out
}

func TestApplyHooks_RunsInOrder(t *testing.T) {
	var order []string

	first := func(s []float32) []float32 {
		order = append(order, "first")
		return s
	}
	second := func(s []float32) []float32 {
		order = append(order, "second")
		return s
	}

	ApplyHooks(make([]float32, 4), first, second)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("hooks ran as %v, want [first second]", order)
	}
}

func TestFadeIn(t *testing.T) {
	// 10 ms at 24000 Hz = 240 ramp samples.
	in := constSamples(480, 1.0)

	out := FadeIn(24000, 10)(in)

	if out[0] != 0 {
		t.Errorf("first sample %v, want 0", out[0])
	}
	if out[239] >= 1.0 {
		t.Errorf("last ramp sample %v, want < 1.0", out[239])
	}
	if out[240] != 1.0 {
		t.Errorf("sample after ramp %v, want 1.0", out[240])
	}
	if in[0] != 1.0 {
		t.Error("input slice was mutated")
	}
}

func TestFadeOut(t *testing.T) {
	in := constSamples(480, 1.0)

	out := FadeOut(24000, 10)(in)

	if out[479] != 0 {
		t.Errorf("final sample %v, want 0", out[479])
	}
	if out[239] != 1.0 {
		t.Errorf("sample before ramp %v, want 1.0", out[239])
	}
}

func TestFade_RampLongerThanSignal(t *testing.T) {
	in := constSamples(10, 1.0)

	out := FadeIn(24000, 1000)(in)
	if len(out) != 10 {
		t.Fatalf("output length %d, want 10", len(out))
	}
	if out[0] != 0 {
		t.Errorf("first sample %v, want 0", out[0])
	}
}
