package model

// Result separates a value produced normally from a fallback produced after an
// expected failure (backend down, malformed output). Degraded results are still
// safe to use; Reason says why the fallback was taken.
type Result[T any] struct {
	Value    T
	Degraded bool
	Reason   error
}

func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func Degrade[T any](fallback T, reason error) Result[T] {
	return Result[T]{Value: fallback, Degraded: true, Reason: reason}
}
