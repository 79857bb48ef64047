package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Column names used by the exports.
const (
	ColGameName     = "GameName"
	ColGamerscore   = "Gamerscore"
	ColTAScore      = "TAScore"
	ColTARatio      = "TARatio"
	ColDLCName      = "DLCName"
	ColUnlockDate   = "UnlockDate"
	ColUnachievable = "Unachieveable"
)

// UnlockedColumns are required in the unlocked export.
var UnlockedColumns = []string{ColGameName, ColGamerscore, ColTAScore, ColTARatio, ColDLCName, ColUnlockDate}

// LockedColumns are required in the locked export.
var LockedColumns = []string{ColGameName, ColGamerscore, ColTAScore, ColTARatio, ColDLCName, ColUnachievable}

// titleColumns are checked in order for an achievement title.
var titleColumns = []string{"AchievementName", "AchievementTitle", "Name", "Title"}

// Row maps header names to raw field values.
type Row map[string]string

// Get returns the raw value for a column, or "" when absent.
func (r Row) Get(col string) string {
	return r[col]
}

// Title returns the first non-empty title-like field.
func (r Row) Title() string {
	for _, col := range titleColumns {
		if v := strings.TrimSpace(r[col]); v != "" {
			return v
		}
	}
	return ""
}

// Table is a parsed CSV export.
type Table struct {
	Name   string
	Header []string
	Rows   []Row
}

// MissingColumnsError reports required columns absent from a header.
type MissingColumnsError struct {
	Name    string
	Missing []string
	Found   []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s CSV missing columns: %s. Found: %s",
		e.Name, strings.Join(e.Missing, ", "), strings.Join(e.Found, ", "))
}

// LoadTable opens and reads a CSV export.
func LoadTable(path string, required []string) (Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only export.
			_ = cerr
		}
	}()
	return ReadTable(file, filepath.Base(path), required)
}

// ReadTable reads a CSV export with a header row. A leading byte-order mark is
// dropped. Rows shorter than the header get empty values for the missing fields.
func ReadTable(r io.Reader, name string, required []string) (Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			header = nil
		} else {
			return Table{}, fmt.Errorf("failed to read %s header: %w", name, err)
		}
	}
	if missing := missingColumns(header, required); len(missing) > 0 {
		return Table{}, &MissingColumnsError{Name: name, Missing: missing, Found: header}
	}

	table := Table{Name: name, Header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("failed to read %s: %w", name, err)
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func missingColumns(header, required []string) []string {
	present := make(map[string]struct{}, len(header))
	for _, col := range header {
		present[col] = struct{}{}
	}
	var missing []string
	for _, col := range required {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	sort.Strings(missing)
	return missing
}
