package service

import "fmt"

// singleOrNone extracts at most one item from a query result. More than one
// item signals an internal consistency defect (slug uniqueness should make
// it unreachable), not a user-facing case.
func singleOrNone[T any](items []T) (*T, error) {
	switch len(items) {
	case 0:
		return nil, nil
	case 1:
		return &items[0], nil
	default:
		return nil, fmt.Errorf("expected at most one item, got %d", len(items))
	}
}

// single extracts exactly one item from a query result, erroring on zero or
// more than one.
func single[T any](items []T) (*T, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("expected a single item, got none")
	}
	return singleOrNone(items)
}
