package mathutil

import "golang.org/x/exp/constraints"

// Min returns the smaller of two values.
func Min[T constraints.Integer](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two values.
func Max[T constraints.Integer](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Clamp limits x to [lo, hi].
func Clamp[T constraints.Integer](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// IsPow2 reports whether n is a positive power of two.
func IsPow2[T constraints.Integer](n T) bool {
	return n > 0 && n&(n-1) == 0
}

// Wrap returns i modulo n with a non-negative result.
func Wrap(i, n int) int {
	if IsPow2(n) {
		return i & (n - 1)
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
