package feed

import "sync"

// Table is an in-memory Surface. Rows accumulate without limit.
type Table struct {
	mu sync.RWMutex
	// insertion order; the newest insert is last and displays first
	rows []Row
}

// NewTable creates an empty Table
func NewTable() *Table {
	return &Table{}
}

func (t *Table) Prepend(row Row) {
	t.mu.Lock()
	t.rows = append(t.rows, row)
	t.mu.Unlock()
}

// Rows returns a copy of the rows in display order, top first
func (t *Table) Rows() []Row {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Row, len(t.rows))
	for i, row := range t.rows {
		out[len(t.rows)-1-i] = row
	}
	return out
}

// Len returns the number of rows
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}
