package browserstate

// cloneSlice copies s so appends and element writes never reach a state
// that has already been published.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s), len(s)+1)
	copy(out, s)
	return out
}

func removeAt[T any](s []T, idx int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:idx]...)
	return append(out, s[idx+1:]...)
}

func insertAt[T any](s []T, idx int, v T) []T {
	out := make([]T, 0, len(s)+1)
	out = append(out, s[:idx]...)
	out = append(out, v)
	return append(out, s[idx:]...)
}
