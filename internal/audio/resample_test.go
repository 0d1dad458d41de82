package audio

import "testing"

func TestDownsample48to16RatioAndLength(t *testing.T) {
	input := make([]int16, 480) // 10ms at 48kHz
	for i := range input {
		input[i] = 100
	}
	out := Downsample48to16(input)
	if len(out) != len(input)/3 {
		t.Fatalf("len(out) = %d, want %d", len(out), len(input)/3)
	}
	for i, v := range out {
		if v != 100 {
			t.Fatalf("out[%d] = %d, want 100", i, v)
		}
	}
}

func TestDownsample48to16Empty(t *testing.T) {
	if out := Downsample48to16(nil); out != nil {
		t.Fatalf("expected nil for empty input, got %v", out)
	}
}
