package docstore

import (
	"sort"
	"strings"
	"time"
)

// Matches reports whether doc satisfies every equality condition of q.
// Collection membership is decided by the caller.
func Matches(q Query, doc *Document) bool {
	for _, cond := range q.Where {
		if !valuesEqual(doc.Data[cond.Field], cond.Value) {
			return false
		}
	}
	return true
}

// Evaluate filters, orders and limits docs according to q. Both the
// memory and redis backends hold their collections small enough that
// client-side evaluation matches what the managed backend would return.
func Evaluate(q Query, docs []*Document) []*Document {
	out := make([]*Document, 0, len(docs))
	for _, d := range docs {
		if Matches(q, d) {
			out = append(out, d)
		}
	}
	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			c := compareValues(out[i].Data[q.OrderBy], out[j].Data[q.OrderBy])
			if q.Desc {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// CollectionOf returns the collection path of a document path, i.e.
// everything up to the final segment. "posts/p1/comments/c1" belongs to
// "posts/p1/comments".
func CollectionOf(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// IDOf returns the final segment of a document path.
func IDOf(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

func compareValues(a, b any) int {
	at, aok := toTime(a)
	bt, bok := toTime(b)
	if aok && bok {
		switch {
		case at.Before(bt):
			return -1
		case at.After(bt):
			return 1
		default:
			return 0
		}
	}
	switch a.(type) {
	case int, int32, int64, float32, float64:
		ai, bi := toInt64(a), toInt64(b)
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		default:
			return 0
		}
	}
	as, _ := a.(string)
	bs, _ := b.(string)
	return strings.Compare(as, bs)
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
