package sheet

// Memory is an in-memory workbook. Values are kept in their raw text form
// so reads look the same as from an xlsx file.
// It is not safe for concurrent use.
type Memory struct {
	order  []string
	sheets map[string][][]string
}

func NewMemory() *Memory {
	return &Memory{sheets: make(map[string][][]string)}
}

func (m *Memory) Sheets() []string {
	return append([]string(nil), m.order...)
}

func (m *Memory) Rows(name string) ([][]string, bool, error) {
	rows, ok := m.sheets[name]
	if !ok {
		return nil, false, nil
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, true, nil
}

func (m *Memory) Replace(name string, rows [][]any) error {
	if _, ok := m.sheets[name]; !ok {
		m.order = append(m.order, name)
	}
	grid := make([][]string, len(rows))
	for i, r := range rows {
		grid[i] = make([]string, len(r))
		for j, v := range r {
			grid[i][j] = cellText(v)
		}
	}
	m.sheets[name] = grid
	return nil
}

// Save is a no-op; Memory has nothing to flush.
func (m *Memory) Save() error { return nil }
