package leads

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/leadcrawl/internal/model"
)

func TestReadCSV(t *testing.T) {
	t.Parallel()

	t.Run("reads company and website among other columns", func(t *testing.T) {
		t.Parallel()

		input := "Product,Company,Technology,Website\n" +
			"CRM,Acme BV,wordpress,acme.nl\n" +
			"ERP, Beta BV ,shopify, https://beta.nl \n"

		res, err := ReadCSV(strings.NewReader(input))
		if err != nil {
			t.Fatalf("ReadCSV() error = %v", err)
		}
		want := []model.Company{
			{Name: "Acme BV", SeedURL: "acme.nl"},
			{Name: "Beta BV", SeedURL: "https://beta.nl"},
		}
		if !slices.Equal(res.Companies, want) {
			t.Errorf("Companies = %+v, want %+v", res.Companies, want)
		}
	})

	t.Run("header with byte order mark", func(t *testing.T) {
		t.Parallel()

		res, err := ReadCSV(strings.NewReader("\ufeffcompany,website\nAcme BV,acme.nl\n"))
		if err != nil {
			t.Fatalf("ReadCSV() error = %v", err)
		}
		if len(res.Companies) != 1 {
			t.Errorf("Companies = %+v", res.Companies)
		}
	})

	t.Run("missing website column", func(t *testing.T) {
		t.Parallel()

		_, err := ReadCSV(strings.NewReader("company,url\nAcme BV,acme.nl\n"))
		if !errors.Is(err, ErrMissingColumn) {
			t.Errorf("expected ErrMissingColumn, got %v", err)
		}
	})

	t.Run("missing company column", func(t *testing.T) {
		t.Parallel()

		_, err := ReadCSV(strings.NewReader("name,website\nAcme BV,acme.nl\n"))
		if !errors.Is(err, ErrMissingColumn) {
			t.Errorf("expected ErrMissingColumn, got %v", err)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		_, err := ReadCSV(strings.NewReader(""))
		if !errors.Is(err, ErrEmptyFile) {
			t.Errorf("expected ErrEmptyFile, got %v", err)
		}
	})

	t.Run("skips incomplete rows and duplicates", func(t *testing.T) {
		t.Parallel()

		input := "company,website\n" +
			"Acme BV,acme.nl\n" +
			",nameless.nl\n" +
			"Siteless BV,\n" +
			"\n" +
			"Acme BV,acme-other.nl\n" +
			"Short Row\n"

		res, err := ReadCSV(strings.NewReader(input))
		if err != nil {
			t.Fatalf("ReadCSV() error = %v", err)
		}
		if len(res.Companies) != 1 || res.Companies[0].SeedURL != "acme.nl" {
			t.Errorf("Companies = %+v", res.Companies)
		}
		if res.Duplicates != 1 {
			t.Errorf("Duplicates = %d, want 1", res.Duplicates)
		}
		if len(res.Skipped) != 3 {
			t.Errorf("Skipped = %+v, want 3 entries", res.Skipped)
		}
	})
}

func TestReadXLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "leads_2024.xlsx")
	writeWorkbook(t, path, [][]string{
		{"Website", "Company"},
		{"acme.nl", "Acme BV"},
		{"beta.nl", "Beta BV"},
	})

	res, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := []model.Company{
		{Name: "Acme BV", SeedURL: "acme.nl"},
		{Name: "Beta BV", SeedURL: "beta.nl"},
	}
	if !slices.Equal(res.Companies, want) {
		t.Errorf("Companies = %+v, want %+v", res.Companies, want)
	}
}

func TestReadFileUnsupported(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "leads.json")
	if err := os.WriteFile(path, []byte("[]"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestFindLeadFilesAndLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "leads_b.csv"), "company,website\nBeta BV,beta.nl\nAcme BV,acme-dup.nl\n")
	writeFile(t, filepath.Join(dir, "leads_a.csv"), "company,website\nAcme BV,acme.nl\n")
	writeFile(t, filepath.Join(dir, "other.csv"), "company,website\nIgnored BV,ignored.nl\n")
	writeFile(t, filepath.Join(dir, "leads_notes.txt"), "not a lead file")
	writeWorkbook(t, filepath.Join(dir, "leads_c.xlsx"), [][]string{
		{"company", "website"},
		{"Gamma BV", "gamma.nl"},
	})

	files, err := FindLeadFiles(dir)
	if err != nil {
		t.Fatalf("FindLeadFiles() error = %v", err)
	}
	wantFiles := []string{
		filepath.Join(dir, "leads_a.csv"),
		filepath.Join(dir, "leads_b.csv"),
		filepath.Join(dir, "leads_c.xlsx"),
	}
	if !slices.Equal(files, wantFiles) {
		t.Errorf("FindLeadFiles() = %v, want %v", files, wantFiles)
	}

	extra := filepath.Join(t.TempDir(), "extra.csv")
	writeFile(t, extra, "Company,Website\nDelta BV,delta.nl\n")

	res, err := Load([]string{extra}, dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	var names []string
	for _, c := range res.Companies {
		names = append(names, c.Name)
	}
	wantNames := []string{"Delta BV", "Acme BV", "Beta BV", "Gamma BV"}
	if !slices.Equal(names, wantNames) {
		t.Errorf("names = %v, want %v", names, wantNames)
	}
	if res.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", res.Duplicates)
	}
}

func TestLoadPropagatesMissingColumn(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.csv")
	writeFile(t, path, "name,url\nx,y\n")
	if _, err := Load([]string{path}, ""); !errors.Is(err, ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func writeWorkbook(t *testing.T, path string, rows [][]string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}
