package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/recstore/config"
	"github.com/hupe1980/recstore/record"
)

// Predicate tests a single record.
type Predicate[R any] func(R) bool

// InUse accepts records that hold a live entity. Instantiate it for the store
// at hand, e.g. store.InUse[*record.Node].
func InUse[R record.Record](r R) bool {
	return r.InUse()
}

// All returns the conjunction of preds, evaluated in order with short-circuit.
// With no predicates it accepts everything.
func All[R any](preds ...Predicate[R]) Predicate[R] {
	return func(r R) bool {
		return matches(r, preds)
	}
}

// Not negates p.
func Not[R any](p Predicate[R]) Predicate[R] {
	return func(r R) bool {
		return !p(r)
	}
}

// IDRange accepts records whose id lies in [lo, hi].
func IDRange[R record.Record](lo, hi uint64) Predicate[R] {
	return func(r R) bool {
		id := r.ID()
		return id >= lo && id <= hi
	}
}

func matches[R any](r R, preds []Predicate[R]) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

// Filter keys accepted by ParseFilter.
const (
	FilterInUse = "in_use"
	FilterMinID = "min_id"
	FilterMaxID = "max_id"
)

// ParseFilter turns a filter configuration value into predicates.
//
// "true" selects in-use records, "false" or "" selects everything, and
// "in_use=true,min_id=10,max_id=99" combines the individual filters.
func ParseFilter[R record.Record](value string) ([]Predicate[R], error) {
	v := strings.TrimSpace(value)
	switch strings.ToLower(v) {
	case "", "false":
		return nil, nil
	case "true":
		return []Predicate[R]{InUse[R]}, nil
	}

	if !config.ContainsMultipleParameters(v) {
		return nil, &InvalidFilterSpecificationError{Value: value}
	}

	args, err := config.ParseMapValue("filter", v)
	if err != nil {
		return nil, &InvalidFilterSpecificationError{Value: value, cause: err}
	}

	var (
		preds  []Predicate[R]
		lo, hi uint64 = 0, record.NoID
		ranged bool
	)
	for key, arg := range args {
		switch key {
		case FilterInUse:
			b, err := strconv.ParseBool(arg)
			if err != nil {
				return nil, &InvalidFilterSpecificationError{Value: value, cause: err}
			}
			if b {
				preds = append(preds, InUse[R])
			}
		case FilterMinID:
			n, err := strconv.ParseUint(arg, 10, 64)
			if err != nil {
				return nil, &InvalidFilterSpecificationError{Value: value, cause: err}
			}
			lo, ranged = n, true
		case FilterMaxID:
			n, err := strconv.ParseUint(arg, 10, 64)
			if err != nil {
				return nil, &InvalidFilterSpecificationError{Value: value, cause: err}
			}
			hi, ranged = n, true
		default:
			return nil, &InvalidFilterSpecificationError{
				Value: value,
				cause: fmt.Errorf("unknown filter key %q", key),
			}
		}
	}

	if ranged {
		if lo > hi {
			return nil, &InvalidFilterSpecificationError{
				Value: value,
				cause: fmt.Errorf("min_id %d exceeds max_id %d", lo, hi),
			}
		}
		preds = append(preds, IDRange[R](lo, hi))
	}
	return preds, nil
}
