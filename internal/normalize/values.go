package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"healthtrack/treatment-tracker/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Layouts accepted for dates stored as strings.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// document returns v as a plain map if it is a document of any shape the
// driver or a caller might hand us.
func document(v interface{}) (map[string]interface{}, bool) {
	switch d := v.(type) {
	case map[string]interface{}:
		return d, d != nil
	case bson.M:
		return map[string]interface{}(d), d != nil
	case bson.D:
		m := make(map[string]interface{}, len(d))
		for _, e := range d {
			m[e.Key] = e.Value
		}
		return m, true
	}
	return nil, false
}

// lookup returns the first non-null value found under any of keys.
func lookup(doc map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := doc[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func list(v interface{}) ([]interface{}, bool) {
	switch l := v.(type) {
	case []interface{}:
		return l, true
	case bson.A:
		return []interface{}(l), true
	case []map[string]interface{}:
		out := make([]interface{}, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out, true
	case []bson.M:
		out := make([]interface{}, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out, true
	case []string:
		out := make([]interface{}, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out, true
	}
	return nil, false
}

// text renders scalar values as strings; anything else is "".
func text(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case primitive.ObjectID:
		return s.Hex()
	case int, int32, int64, float64, float32:
		if n, ok := integer(s); ok {
			return strconv.Itoa(n)
		}
		if f, ok := s.(float64); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return ""
}

func integer(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int(n), true
		}
	case float32:
		f := float64(n)
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int(f), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func timestamp(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t.UTC(), true
	case primitive.DateTime:
		return t.Time().UTC(), true
	case primitive.Timestamp:
		return time.Unix(int64(t.T), 0).UTC(), true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// items converts a stored collection into canonical items. Missing, null
// and non-list values give an empty slice; unusable elements are skipped.
func items(v interface{}) []domain.ScheduleItem {
	l, ok := list(v)
	if !ok {
		if typed, ok := v.([]domain.ScheduleItem); ok {
			out := make([]domain.ScheduleItem, len(typed))
			copy(out, typed)
			return out
		}
		return []domain.ScheduleItem{}
	}
	out := make([]domain.ScheduleItem, 0, len(l))
	for _, el := range l {
		if s, ok := el.(string); ok {
			out = append(out, domain.ScheduleItem{Name: s})
			continue
		}
		if it, ok := el.(domain.ScheduleItem); ok {
			out = append(out, it)
			continue
		}
		doc, ok := document(el)
		if !ok {
			continue
		}
		out = append(out, domain.ScheduleItem{
			Name:     field(doc, "name"),
			Duration: field(doc, "duration"),
			Dosage:   field(doc, "dosage"),
		})
	}
	return out
}

func field(doc map[string]interface{}, keys ...string) string {
	v, _ := lookup(doc, keys...)
	return text(v)
}

func flag(doc map[string]interface{}, keys ...string) bool {
	v, _ := lookup(doc, keys...)
	b, _ := v.(bool)
	return b
}

func date(doc map[string]interface{}, keys ...string) (time.Time, bool) {
	v, ok := lookup(doc, keys...)
	if !ok {
		return time.Time{}, false
	}
	return timestamp(v)
}

func recordID(doc map[string]interface{}) string {
	return field(doc, domain.FieldID, "id")
}

func ownerID(doc map[string]interface{}) string {
	return field(doc, domain.FieldOwnerID, "owner_id", "userId", "user_id")
}
