package structure

import "fmt"

// insertAt inserts v at position i. i must be in [0, len(s)].
func insertAt[T any](s []T, i int, v T) ([]T, error) {
	if i < 0 || i > len(s) {
		return s, fmt.Errorf("position %d out of range [0, %d]", i, len(s))
	}
	s = append(s, v)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s, nil
}

// removeAt removes the element at position i if match accepts it.
func removeAt[T any](s []T, i int, match func(T) bool) ([]T, T, error) {
	var zero T
	if i < 0 || i >= len(s) {
		return s, zero, fmt.Errorf("position %d out of range [0, %d)", i, len(s))
	}
	v := s[i]
	if !match(v) {
		return s, zero, fmt.Errorf("unexpected item at position %d", i)
	}
	copy(s[i:], s[i+1:])
	s[len(s)-1] = zero
	return s[:len(s)-1], v, nil
}

// clampIndex maps a requested position onto [0, n]. Negative means append.
func clampIndex(i, n int) int {
	if i < 0 || i > n {
		return n
	}
	return i
}

func codes[T any](items []T, code func(T) string) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = code(it)
	}
	return out
}

func indexOfString(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
