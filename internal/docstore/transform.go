package docstore

import (
	"fmt"
	"time"
)

// Field transform sentinels. These values are recognized inside the field
// maps passed to Set, Update and Transact and are applied atomically by
// the store implementation.

type incrementTransform struct{ n int64 }

type arrayUnionTransform struct{ value any }

type arrayRemoveTransform struct{ value any }

type deleteFieldTransform struct{}

type serverTimestampTransform struct{}

// Increment atomically adds n to a numeric field, treating a missing
// field as zero.
func Increment(n int64) any { return incrementTransform{n: n} }

// ArrayUnion appends value to an array field unless it is already
// present. A missing field becomes a one-element array.
func ArrayUnion(value any) any { return arrayUnionTransform{value: value} }

// ArrayRemove removes every occurrence of value from an array field.
// Removing from a missing field is a no-op.
func ArrayRemove(value any) any { return arrayRemoveTransform{value: value} }

// DeleteField removes the field from the document.
func DeleteField() any { return deleteFieldTransform{} }

// ServerTimestamp sets the field to the store's own clock at commit time.
func ServerTimestamp() any { return serverTimestampTransform{} }

// ApplyFields merges fields into data, resolving any transform sentinels
// against the current field values. now is the store's commit timestamp.
// data is mutated in place; implementations call this while holding
// whatever write exclusivity they provide.
func ApplyFields(data map[string]any, fields map[string]any, now time.Time) {
	for key, value := range fields {
		switch t := value.(type) {
		case incrementTransform:
			data[key] = toInt64(data[key]) + t.n
		case arrayUnionTransform:
			arr := toSlice(data[key])
			if !containsValue(arr, t.value) {
				arr = append(arr, t.value)
			}
			data[key] = arr
		case arrayRemoveTransform:
			arr := toSlice(data[key])
			kept := make([]any, 0, len(arr))
			for _, v := range arr {
				if !valuesEqual(v, t.value) {
					kept = append(kept, v)
				}
			}
			data[key] = kept
		case deleteFieldTransform:
			delete(data, key)
		case serverTimestampTransform:
			data[key] = now
		default:
			data[key] = value
		}
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	case float32:
		return int64(n)
	default:
		return 0
	}
}

func toSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		out := make([]any, len(s))
		copy(out, s)
		return out
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	default:
		return nil
	}
}

func containsValue(arr []any, value any) bool {
	for _, v := range arr {
		if valuesEqual(v, value) {
			return true
		}
	}
	return false
}

// valuesEqual compares scalars loosely enough to survive a JSON round
// trip (int vs float64, fmt-comparable fallbacks).
func valuesEqual(a, b any) bool {
	if a == b {
		return true
	}
	switch a.(type) {
	case int, int32, int64, float32, float64:
		switch b.(type) {
		case int, int32, int64, float32, float64:
			return toInt64(a) == toInt64(b)
		}
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}
