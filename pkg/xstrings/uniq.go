package xstrings

import "strings"

// UniqueSlice drops duplicates from s, keeping the first occurrence of each
// element in its original position.
func UniqueSlice[T comparable](s []T) []T {
	seen := make(map[T]struct{}, len(s))
	out := []T{}
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// CleanTags normalizes a user-supplied tag list: trims whitespace, drops
// empties, and removes duplicates while preserving order.
func CleanTags(tags []string) []string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return UniqueSlice(cleaned)
}
