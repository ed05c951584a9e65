// Package normalize turns loosely typed classifier output into canonical
// values. None of the functions fail: anything that cannot be interpreted is
// replaced by a fallback and flagged as defaulted.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/GustavoCaso/gastos/internal/category"
)

type Value[T any] struct {
	Value     T
	Defaulted bool
}

func kept[T any](v T) Value[T] {
	return Value[T]{Value: v}
}

func defaulted[T any](v T) Value[T] {
	return Value[T]{Value: v, Defaulted: true}
}

// Amount accepts numbers or strings such as "45", "$45", "45,20" or "12 USD".
func Amount(v any) Value[float64] {
	switch n := v.(type) {
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return kept(float64(n))
	case int64:
		return kept(float64(n))
	case int32:
		return kept(float64(n))
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return defaulted(0.0)
		}
		return finite(f)
	case string:
		return amountFromString(n)
	default:
		return defaulted(0.0)
	}
}

func amountFromString(s string) Value[float64] {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "USD", "")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")

	s = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)

	if s == "" {
		return defaulted(0.0)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaulted(0.0)
	}

	return kept(f)
}

func finite(f float64) Value[float64] {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return defaulted(0.0)
	}
	return kept(f)
}

// Category maps v onto a valid category: exact matches pass through, known
// aliases are translated and everything else becomes category.Fallback.
// Matching is exact and case sensitive.
func Category(v any, valid category.Set) Value[string] {
	s, ok := v.(string)
	if !ok {
		return defaulted(category.Fallback)
	}

	s = strings.TrimSpace(s)
	if valid.Contains(s) {
		return kept(s)
	}

	if canonical, ok := category.Alias(s); ok {
		return kept(canonical)
	}

	return defaulted(category.Fallback)
}

// Description returns the trimmed text, or fallback when v is not a string or
// is blank.
func Description(v any, fallback string) Value[string] {
	s, ok := v.(string)
	if !ok {
		return defaulted(fallback)
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return defaulted(fallback)
	}

	return kept(s)
}
