// Package claims loads the input claims table.
package claims

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/kensho/internal/models"
	"github.com/xuri/excelize/v2"
)

// ErrNoHeader is returned when the table lacks one of the required columns.
var ErrNoHeader = errors.New("claims table header must contain id, book_name and content")

// Column names, matched case-insensitively.
const (
	ColumnID       = "id"
	ColumnBookName = "book_name"
	ColumnContent  = "content"
)

// Load reads claims from a .csv or .xlsx file. The first row is the header. Rows with
// an empty id or book name are rejected.
func Load(path string) ([]models.Claim, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("claims file %s: %w", path, err)
	}
	var (
		rows [][]string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		rows, err = readXLSX(path)
	case ".csv", "":
		rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("unsupported claims format %q (supported: .csv, .xlsx)", ext)
	}
	if err != nil {
		return nil, err
	}
	return parseRows(rows)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open claims: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse claims: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open claims workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoHeader
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func parseRows(rows [][]string) ([]models.Claim, error) {
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}
	cols := map[string]int{ColumnID: -1, ColumnBookName: -1, ColumnContent: -1}
	for i, name := range rows[0] {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
		if idx, ok := cols[name]; ok && idx < 0 {
			cols[name] = i
		}
	}
	for _, idx := range cols {
		if idx < 0 {
			return nil, ErrNoHeader
		}
	}

	claims := make([]models.Claim, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}
		c := models.Claim{
			ID:       cell(row, cols[ColumnID]),
			BookName: cell(row, cols[ColumnBookName]),
			Content:  cell(row, cols[ColumnContent]),
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		claims = append(claims, c)
	}
	return claims, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Group is the set of claims that refer to one book.
type Group struct {
	// Key is the lower-cased book name.
	Key string
	// Name is the book name as first written in the table.
	Name   string
	Claims []models.Claim
}

// GroupByBook groups claims by book key in order of first appearance. Claims keep
// their input order inside a group.
func GroupByBook(claims []models.Claim) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, c := range claims {
		key := c.BookKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key, Name: strings.TrimSpace(c.BookName)})
		}
		groups[i].Claims = append(groups[i].Claims, c)
	}
	return groups
}
