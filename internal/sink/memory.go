package sink

import (
	"context"
	"sync"
)

// Memory keeps rows in process. It backs dry runs.
type Memory struct {
	mu   sync.Mutex
	rows [][]any
}

var (
	_ Sink         = (*Memory)(nil)
	_ HeaderWriter = (*Memory)(nil)
)

func NewMemory(rows ...[]any) *Memory {
	return &Memory{rows: rows}
}

func (m *Memory) ReadAll(context.Context) ([][]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([][]any, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *Memory) Append(_ context.Context, row []any, keyColumns []int) (AppendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if key, ok := rowKey(row, keyColumns); ok {
		for _, existing := range m.rows {
			if k, ok := rowKey(existing, keyColumns); ok && k == key {
				return AppendResult{Message: duplicateMessage(key)}, nil
			}
		}
	}

	m.rows = append(m.rows, CleanRow(row))
	return AppendResult{Accepted: true, Message: "appended"}, nil
}

func (m *Memory) EnsureHeader(_ context.Context, header []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.rows) > 0 {
		return nil
	}

	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	m.rows = append(m.rows, row)
	return nil
}
