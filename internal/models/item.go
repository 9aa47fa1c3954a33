package models

import "time"

// Item is the generic key-value shape entities serialize to and from.
// Stores that persist whole records (the in-memory store, JSON columns)
// work with Items rather than with the typed structs.
type Item = map[string]any

func itemString(item Item, key string) string {
	if v, ok := item[key].(string); ok {
		return v
	}
	return ""
}

func itemBool(item Item, key string) bool {
	if v, ok := item[key].(bool); ok {
		return v
	}
	return false
}

func itemInt(item Item, key string) int {
	switch v := item[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func itemFloat(item Item, key string) float64 {
	switch v := item[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func itemTime(item Item, key string) time.Time {
	if v, ok := item[key].(time.Time); ok {
		return v
	}
	return time.Time{}
}
