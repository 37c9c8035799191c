// Package report renders the static HTML dashboard of a results directory.
package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/internal/outwriter"
)

//go:embed dashboard.html.tmpl
var dashboardSource string

var dashboard = template.Must(template.New("dashboard").Parse(dashboardSource))

// Source is a CSV table shown on its own dashboard page.
type Source struct {
	ID     string
	Button string
	Title  string
	Path   string
}

// Table is a loaded Source with a leading row number column.
type Table struct {
	Source
	Header []string
	Rows   [][]string
}

// Page is the data the dashboard template renders.
type Page struct {
	Title  string
	Tables []Table
	Plot   string
}

// Sources lists the dashboard tables of a results layout in display order.
func Sources(l contract.Layout) []Source {
	return []Source{
		{ID: "summary-table", Button: "Summary", Title: "Summary Successful Commits", Path: l.SuccessfulCommits()},
		{ID: "refactoring-table", Button: "Mapping", Title: "Commit Refactoring Mapping", Path: l.RefactoringMapping()},
		{ID: "energy-data", Button: "Energy Data", Title: "Energy Data", Path: l.EnergyData()},
		{ID: "performance-data", Button: "Performance Data", Title: "Performance Data", Path: l.PerfData()},
		{ID: "energy-performance-data", Button: "Energy + Performance", Title: "Energy + Performance Data", Path: l.Combined()},
	}
}

// LoadTable reads a source CSV and numbers its rows from 1.
func LoadTable(src Source) (Table, error) {
	header, rows, err := outwriter.ReadCSVFile(src.Path)
	if err != nil {
		return Table{}, err
	}
	table := Table{Source: src, Header: append([]string{"No."}, header...)}
	for i, row := range rows {
		table.Rows = append(table.Rows, append([]string{strconv.Itoa(i + 1)}, row...))
	}
	return table, nil
}

// Render executes the dashboard template.
func Render(w io.Writer, page Page) error {
	return dashboard.Execute(w, page)
}

// WriteDashboard loads every source and writes the dashboard to path. Nothing
// is written when a source is missing. The plot is referenced relative to path.
func WriteDashboard(path, title string, sources []Source, plotPath string) error {
	page := Page{Title: title, Plot: filepath.Base(plotPath)}
	for _, src := range sources {
		table, err := LoadTable(src)
		if err != nil {
			return fmt.Errorf("dashboard table %q: %w", src.Title, err)
		}
		page.Tables = append(page.Tables, table)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Render(f, page); err != nil {
		_ = f.Close()
		return fmt.Errorf("render dashboard: %w", err)
	}
	return f.Close()
}
