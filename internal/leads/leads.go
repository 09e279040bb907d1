// Package leads reads company lead lists.
//
// A lead list is a CSV file or an Excel workbook whose header row contains
// a "company" and a "website" column (case-insensitive). Other columns are
// ignored, so exports from lead-generation tools can be used as they are.
package leads

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/leadcrawl/internal/model"
)

// Column names looked up in the header row.
const (
	ColumnCompany = "company"
	ColumnWebsite = "website"
)

// LeadFilePattern is the glob matched by FindLeadFiles.
const LeadFilePattern = "leads_*"

var (
	// ErrMissingColumn is returned when the header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("unsupported lead file format")

	// ErrEmptyFile is returned for a file without a header row.
	ErrEmptyFile = errors.New("lead file is empty")
)

// Skipped describes a row that could not be turned into a company.
type Skipped struct {
	File   string
	Line   int
	Reason string
}

// Result is the outcome of reading one or more lead files.
type Result struct {
	// Companies are unique by name, in first-seen order.
	Companies []model.Company
	// Duplicates counts rows whose company name was already read.
	Duplicates int
	// Skipped lists rows without a name or website.
	Skipped []Skipped
}

// ReadCSV reads a CSV lead list.
func ReadCSV(r io.Reader) (*Result, error) {
	return readCSV(r, "")
}

func readCSV(r io.Reader, name string) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV %s: %w", name, err)
	}
	return fromRows(records, name)
}

// ReadXLSX reads the first sheet of an Excel workbook.
func ReadXLSX(r io.Reader) (*Result, error) {
	return readXLSX(r, "")
}

func readXLSX(r io.Reader, name string) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, name)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheets[0], name, err)
	}
	return fromRows(rows, name)
}

// ReadFile reads a lead list, choosing the format by file extension.
func ReadFile(path string) (*Result, error) {
	f, err := os.Open(path) //nolint:gosec // lead files are given by the user
	if err != nil {
		return nil, fmt.Errorf("failed to open lead file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(f, path)
	case ".xlsx":
		return readXLSX(f, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// FindLeadFiles returns the leads_*.csv and leads_*.xlsx files in dir,
// sorted by name.
func FindLeadFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, LeadFilePattern))
	if err != nil {
		return nil, err
	}

	var files []string
	for _, m := range matches {
		switch strings.ToLower(filepath.Ext(m)) {
		case ".csv", ".xlsx":
		default:
			continue
		}
		if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	slices.Sort(files)
	return files, nil
}

// Load reads every file in paths plus every lead file found in dir and
// merges them. A company name seen twice keeps its first website.
func Load(paths []string, dir string) (*Result, error) {
	all := slices.Clone(paths)
	if dir != "" {
		found, err := FindLeadFiles(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to search %s for lead files: %w", dir, err)
		}
		all = append(all, found...)
	}

	merged := &Result{}
	seen := make(map[string]struct{})
	for _, p := range all {
		res, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		merged.Duplicates += res.Duplicates
		merged.Skipped = append(merged.Skipped, res.Skipped...)
		for _, c := range res.Companies {
			if _, ok := seen[c.Name]; ok {
				merged.Duplicates++
				continue
			}
			seen[c.Name] = struct{}{}
			merged.Companies = append(merged.Companies, c)
		}
	}
	return merged, nil
}

// fromRows converts a header row plus data rows into companies.
func fromRows(rows [][]string, name string) (*Result, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, name)
	}

	companyCol, websiteCol := -1, -1
	for i, h := range rows[0] {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		switch h {
		case ColumnCompany:
			if companyCol < 0 {
				companyCol = i
			}
		case ColumnWebsite:
			if websiteCol < 0 {
				websiteCol = i
			}
		}
	}
	if companyCol < 0 {
		return nil, fmt.Errorf("%w %q in %s", ErrMissingColumn, ColumnCompany, name)
	}
	if websiteCol < 0 {
		return nil, fmt.Errorf("%w %q in %s", ErrMissingColumn, ColumnWebsite, name)
	}

	res := &Result{}
	seen := make(map[string]struct{})
	for i, row := range rows[1:] {
		line := i + 2
		if isBlank(row) {
			continue
		}
		c := model.NewCompany(cell(row, companyCol), cell(row, websiteCol))
		if !c.Valid() {
			res.Skipped = append(res.Skipped, Skipped{File: name, Line: line, Reason: "missing company or website"})
			continue
		}
		if _, ok := seen[c.Name]; ok {
			res.Duplicates++
			continue
		}
		seen[c.Name] = struct{}{}
		res.Companies = append(res.Companies, c)
	}
	return res, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
