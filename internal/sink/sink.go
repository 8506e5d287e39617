package sink

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrSink marks failures of the underlying store.
var ErrSink = errors.New("sink failure")

// AppendResult tells whether a row was accepted.
type AppendResult struct {
	Accepted bool
	Message  string
}

// Sink is an append-only table addressed by name.
type Sink interface {
	ReadAll(ctx context.Context) ([][]any, error)
	// Append writes row unless a row with the same values in keyColumns exists.
	Append(ctx context.Context, row []any, keyColumns []int) (AppendResult, error)
}

// HeaderWriter is implemented by sinks able to create their header row.
type HeaderWriter interface {
	EnsureHeader(ctx context.Context, header []string) error
}

// DataRows drops the first headerRows rows.
func DataRows(rows [][]any, headerRows int) [][]any {
	if headerRows <= 0 {
		return rows
	}
	if headerRows >= len(rows) {
		return nil
	}
	return rows[headerRows:]
}

// Column returns the string values of column idx, skipping short rows.
func Column(rows [][]any, idx int) []string {
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if idx < 0 || idx >= len(row) {
			continue
		}
		values = append(values, CellString(row[idx]))
	}
	return values
}

// CleanRow makes every cell storable: nil and NaN become empty strings and
// slices are rendered as text.
func CleanRow(row []any) []any {
	cleaned := make([]any, len(row))
	for i, cell := range row {
		switch v := cell.(type) {
		case nil:
			cleaned[i] = ""
		case float64:
			if math.IsNaN(v) {
				cleaned[i] = ""
			} else {
				cleaned[i] = v
			}
		case float32:
			if math.IsNaN(float64(v)) {
				cleaned[i] = ""
			} else {
				cleaned[i] = v
			}
		case []string:
			cleaned[i] = strings.Join(v, ", ")
		case []any:
			parts := make([]string, 0, len(v))
			for _, p := range v {
				parts = append(parts, CellString(p))
			}
			cleaned[i] = strings.Join(parts, ", ")
		default:
			cleaned[i] = v
		}
	}
	return cleaned
}

// CellString renders a cell the way it is compared for keys.
func CellString(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return fmt.Sprintf("%.0f", v)
		}
		return fmt.Sprintf("%v", v)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// rowKey joins the key column values. It returns false when a key column is
// missing or every key value is blank.
func rowKey(row []any, keyColumns []int) (string, bool) {
	if len(keyColumns) == 0 {
		return "", false
	}

	parts := make([]string, 0, len(keyColumns))
	blank := true
	for _, idx := range keyColumns {
		if idx < 0 || idx >= len(row) {
			return "", false
		}
		v := CellString(row[idx])
		if v != "" {
			blank = false
		}
		parts = append(parts, v)
	}

	if blank {
		return "", false
	}

	return strings.Join(parts, "\x1f"), true
}

func duplicateMessage(key string) string {
	return fmt.Sprintf("record with key %q already exists", strings.ReplaceAll(key, "\x1f", "|"))
}
