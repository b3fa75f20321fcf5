package mathutil

import "testing"

func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		i, n int
		want int
	}{
		{"pow2 positive", 70, 64, 6},
		{"pow2 negative", -1, 64, 63},
		{"pow2 far negative", -129, 64, 63},
		{"odd positive", 200, 72, 56},
		{"odd negative", -1, 72, 71},
		{"zero", 0, 128, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Wrap(tt.i, tt.n); got != tt.want {
				t.Errorf("Wrap(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
			}
		})
	}
}

func TestClampAndIsPow2(t *testing.T) {
	if got := Clamp(-5, 0, 15); got != 0 {
		t.Errorf("Clamp low = %d", got)
	}
	if got := Clamp(99, 0, 15); got != 15 {
		t.Errorf("Clamp high = %d", got)
	}
	if !IsPow2(128) || IsPow2(72) || IsPow2(0) {
		t.Error("IsPow2 wrong")
	}
}
