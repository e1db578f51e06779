package catalog

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSX column headers, matched case-insensitively on the first row.
const (
	colWord          = "word"
	colRelatedFields = "related_fields"
	colMeaning       = "meaning"
	colEtymology     = "etymology"
	colDifficulty    = "difficulty"
)

// XLSXOptions configures spreadsheet import.
type XLSXOptions struct {
	Sheet     string // sheet to read; the first sheet when empty
	Version   string // dataset version; spreadsheets carry none
	Separator string // related_fields separator, ";" when empty
}

// LoadXLSX reads a catalog from a spreadsheet whose first row names the
// columns. Only the word column is required.
func LoadXLSX(path string, opts XLSXOptions) (*Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: %s has no sheets", ErrInvalidCatalog, path)
		}
		sheet = sheets[0]
	}
	sep := opts.Separator
	if sep == "" {
		sep = ";"
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", ErrInvalidCatalog, sheet)
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols[colWord]; !ok {
		return nil, fmt.Errorf("%w: sheet %q has no %q column", ErrInvalidCatalog, sheet, colWord)
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		items []Item
		errs  []string
	)
	for n, row := range rows[1:] {
		word := cell(row, colWord)
		if word == "" {
			// Blank rows are common at the end of sheets.
			continue
		}
		it := Item{
			Word:      word,
			Meaning:   cell(row, colMeaning),
			Etymology: cell(row, colEtymology),
		}
		if rf := cell(row, colRelatedFields); rf != "" {
			it.RelatedFields = strings.Split(rf, sep)
		}
		if d := cell(row, colDifficulty); d != "" {
			v, err := strconv.ParseFloat(d, 64)
			if err != nil {
				errs = append(errs, fmt.Sprintf("row %d: difficulty %q is not a number", n+2, d))
				continue
			}
			it.Difficulty = v
		}
		items = append(items, it)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w:\n  %s", ErrInvalidCatalog, strings.Join(errs, "\n  "))
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return New(name, opts.Version, items)
}
