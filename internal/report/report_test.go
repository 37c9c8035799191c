package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/internal/outwriter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSources(t *testing.T, layout contract.Layout) {
	t.Helper()
	tables := map[string][][]string{
		layout.SuccessfulCommits():  {outwriter.CommitsHeader, {"aaaaaaaa1111", "2019-03-04", "2", "13", "2", "25"}},
		layout.RefactoringMapping(): {{"aaaaaaaa1111"}, {"Extract Method"}, {"Rename Class"}},
		layout.EnergyData():         {outwriter.EnergyHeader, {"aaaaaaaa", "7.50", "2", "2019"}},
		layout.PerfData():           {outwriter.PerfHeader, {"aaaaaaaa", "2.0", "2019"}},
		layout.Combined():           {outwriter.CombinedHeader, {"aaaaaaaa", "2.0", "2019", "<b>7.50</b>"}},
	}
	for path, table := range tables {
		require.NoError(t, outwriter.WriteCSVFile(path, table[0], table[1:]))
	}
}

func TestLoadTable(t *testing.T) {
	layout := contract.NewLayout(t.TempDir())
	writeSources(t, layout)

	table, err := LoadTable(Sources(layout)[1])
	require.NoError(t, err)
	assert.Equal(t, []string{"No.", "aaaaaaaa1111"}, table.Header)
	assert.Equal(t, [][]string{{"1", "Extract Method"}, {"2", "Rename Class"}}, table.Rows)

	_, err = LoadTable(Source{Path: filepath.Join(t.TempDir(), "absent.csv")})
	assert.ErrorIs(t, err, contract.ErrMissingInput)
}

func TestWriteDashboard(t *testing.T) {
	layout := contract.NewLayout(t.TempDir())
	writeSources(t, layout)
	require.NoError(t, WriteDashboard(layout.Dashboard(), "XStream", Sources(layout), layout.Plot()))

	f, err := os.Open(layout.Dashboard())
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)

	assert.Contains(t, doc.Find("h1").Text(), "ENTRAN")
	assert.Equal(t, 7, doc.Find(".nav-buttons button").Length())
	assert.Equal(t, 7, doc.Find("div.page").Length())

	summary := doc.Find("#summary-table table")
	assert.Equal(t, "No.", summary.Find("th").First().Text())
	assert.Equal(t, "1", summary.Find("tr").Eq(1).Find("td").First().Text())
	assert.Equal(t, "aaaaaaaa1111", summary.Find("tr").Eq(1).Find("td").Eq(1).Text())

	// cell text is escaped, not interpreted
	combined := doc.Find("#energy-performance-data td")
	assert.Equal(t, "<b>7.50</b>", combined.Last().Text())
	assert.Equal(t, 0, doc.Find("#energy-performance-data b").Length())

	src, ok := doc.Find("#plot-image img").Attr("src")
	assert.True(t, ok)
	assert.Equal(t, "plot-output.png", src)
	assert.Contains(t, doc.Find("script").Text(), "function showPage")
}

func TestWriteDashboard_MissingSource(t *testing.T) {
	layout := contract.NewLayout(t.TempDir())
	writeSources(t, layout)
	require.NoError(t, os.Remove(layout.PerfData()))

	err := WriteDashboard(layout.Dashboard(), "", Sources(layout), layout.Plot())
	assert.ErrorIs(t, err, contract.ErrMissingInput)
	_, statErr := os.Stat(layout.Dashboard())
	assert.True(t, os.IsNotExist(statErr))
}

func TestRender_HomeTitle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Page{Title: "XStream", Plot: "plot-output.png"}))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	assert.Contains(t, doc.Find("#home p").Text(), "XStream")
	assert.Equal(t, 2, doc.Find(".nav-buttons button").Length())
}
