package sheet

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	appLog "studiobill/internal/log"
)

// defaultSheet is the sheet excelize puts into a new file.
const defaultSheet = "Sheet1"

// Workbook is an xlsx file used as a tabular sink.
type Workbook struct {
	path    string
	f       *excelize.File
	created bool
	written map[string]bool
}

// Open loads the workbook at path, or starts an empty one if the file does
// not exist yet. Nothing is written until Save.
func Open(path string) (*Workbook, error) {
	if path == "" {
		return nil, errors.New("workbook path is empty")
	}

	w := &Workbook{path: path, written: make(map[string]bool)}

	f, err := excelize.OpenFile(path)
	switch {
	case err == nil:
		w.f = f
	case errors.Is(err, fs.ErrNotExist):
		appLog.Info("workbook not found; starting a new one", "path", path)
		w.f = excelize.NewFile()
		w.created = true
	default:
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return w, nil
}

func (w *Workbook) Sheets() []string {
	return w.f.GetSheetList()
}

// Rows returns the raw (unformatted) cell values of a sheet.
func (w *Workbook) Rows(name string) ([][]string, bool, error) {
	idx, err := w.f.GetSheetIndex(name)
	if err != nil {
		return nil, false, err
	}
	if idx == -1 {
		return nil, false, nil
	}
	rows, err := w.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, true, fmt.Errorf("read sheet %s: %w", name, err)
	}
	return rows, true, nil
}

// Replace clears the named sheet, creating it if needed, writes rows from
// A1 and freezes the first row.
func (w *Workbook) Replace(name string, rows [][]any) error {
	if err := w.clear(name); err != nil {
		return fmt.Errorf("clear sheet %s: %w", name, err)
	}
	w.written[name] = true

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(r))
		for j, v := range r {
			values[j] = cellValue(v)
		}
		if err := w.f.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("write sheet %s row %d: %w", name, i+1, err)
		}
	}

	if len(rows) > 0 {
		if err := w.f.SetPanes(name, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("freeze header %s: %w", name, err)
		}
	}
	return nil
}

// clear empties a sheet in place, creating it if needed. The sheet keeps
// its position in the tab order.
func (w *Workbook) clear(name string) error {
	idx, err := w.f.GetSheetIndex(name)
	if err != nil {
		return err
	}
	if idx == -1 {
		_, err := w.f.NewSheet(name)
		return err
	}

	rows, err := w.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return err
	}
	for r := len(rows); r >= 1; r-- {
		if err := w.f.RemoveRow(name, r); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the workbook atomically: temp file in the same directory,
// then rename. The final file is 0600.
func (w *Workbook) Save() error {
	if w.created && !w.written[defaultSheet] && len(w.f.GetSheetList()) > 1 {
		if err := w.f.DeleteSheet(defaultSheet); err != nil {
			return err
		}
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".studiobill-*.xlsx.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := w.f.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("encode workbook: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		return err
	}

	w.created = false
	appLog.Info("workbook saved", "path", w.path, "sheets", len(w.f.GetSheetList()))
	return nil
}

func (w *Workbook) Close() error {
	return w.f.Close()
}
