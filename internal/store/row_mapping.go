package store

import (
	"fmt"
	"time"
)

// timestampLayout is the serialized form of every timestamp column. Values
// are stored as text so both backends round-trip them bit-identically.
const timestampLayout = time.RFC3339Nano

// Row→entity conversion helpers. Stored values that do not match the
// expected shape are corruption and must error, never silently default.

func rowInt64(row map[string]any, col string) (int64, error) {
	switch v := row[col].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("column %s holds %T, want integer", col, row[col])
	}
}

func rowString(row map[string]any, col string) (string, error) {
	switch v := row[col].(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("column %s holds %T, want text", col, row[col])
	}
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q: %w", s, err)
	}
	return t, nil
}

func rowTime(row map[string]any, col string) (time.Time, error) {
	switch v := row[col].(type) {
	case time.Time:
		return v, nil
	case string, []byte:
		s, _ := rowString(row, col)
		t, err := time.Parse(timestampLayout, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("column %s holds malformed timestamp %q: %w", col, s, err)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("column %s holds %T, want timestamp", col, row[col])
	}
}
