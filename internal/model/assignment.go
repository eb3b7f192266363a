package model

import (
	"sort"
	"strings"
)

// Assignment maps variable names to the concrete values chosen for one
// candidate configuration. Only the variables on the selected path appear;
// an assignment is treated as immutable once produced by the space.
type Assignment map[string]string

// Key returns the canonical identity of the assignment: name=value pairs
// sorted by name and joined with commas. Two assignments are the same
// candidate if and only if their keys are equal, regardless of which branch
// of the space produced them. The result log uses this identity to decide
// what has already been evaluated.
func (a Assignment) Key() string {
	pairs := make([]string, 0, len(a))
	for name, value := range a {
		pairs = append(pairs, name+"="+value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

// String renders the assignment for human-readable output, sorted by
// variable name.
func (a Assignment) String() string {
	pairs := make([]string, 0, len(a))
	for name, value := range a {
		pairs = append(pairs, name+" = "+value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ", ")
}

// Clone returns an independent copy.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for name, value := range a {
		out[name] = value
	}
	return out
}
