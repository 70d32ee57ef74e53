package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/bookfinder/internal/openlibrary"
	"github.com/lepinkainen/bookfinder/internal/search"
	"github.com/lepinkainen/bookfinder/internal/testutil"
)

func sampleDocument() Document {
	return Document{
		Query:      "dune",
		Page:       1,
		PerPage:    20,
		TotalPages: 3,
		TotalFound: 45,
		Results:    testutil.SampleBooks(),
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "table", want: FormatTable},
		{in: "JSON", want: FormatJSON},
		{in: "yml", want: FormatYAML},
		{in: " toml ", want: FormatTOML},
		{in: "", want: FormatTable},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleDocument(), FormatTable))

	out := buf.String()
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "Dune")
	assert.Contains(t, out, "Frank Herbert")
	assert.Contains(t, out, "1965")
	assert.Contains(t, out, "Foundation: The Foundation Trilogy")
	assert.Contains(t, out, "Unknown author")
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "Page 1 of 3")
	assert.Contains(t, out, "45 found")
}

func TestRenderTableNumbersAcrossPages(t *testing.T) {
	doc := sampleDocument()
	doc.Page = 2

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, doc, FormatTable))
	assert.Contains(t, buf.String(), "21")
	assert.Contains(t, buf.String(), "23")
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Document{Query: "zzz"}, FormatTable))
	assert.Equal(t, "No results for \"zzz\"\n", buf.String())
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleDocument(), FormatJSON))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "dune", decoded["query"])
	assert.EqualValues(t, 45, decoded["total_found"])

	results, ok := decoded["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 3)

	first := results[0].(map[string]any)
	assert.Equal(t, "/works/OL893415W", first["key"])
	assert.EqualValues(t, 1965, first["first_publish_year"])

	bare := results[2].(map[string]any)
	assert.NotContains(t, bare, "cover_id")
	assert.NotContains(t, bare, "first_publish_year")
	assert.Equal(t, []any{}, bare["author_names"])
}

func TestRenderJSONNilResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Document{Query: "x"}, FormatJSON))
	assert.Contains(t, buf.String(), `"results": []`)
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleDocument(), FormatYAML))

	var decoded Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleDocument(), decoded)
}

func TestRenderTOML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleDocument(), FormatTOML))
	assert.Contains(t, buf.String(), "[[results]]")

	var decoded Document
	require.NoError(t, toml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "dune", decoded.Query)
	require.Len(t, decoded.Results, 3)
	assert.Equal(t, "Dune", decoded.Results[0].Title)
	require.NotNil(t, decoded.Results[0].CoverID)
	assert.Equal(t, 11481354, *decoded.Results[0].CoverID)
	assert.Nil(t, decoded.Results[2].CoverID)
}

func TestRenderUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Render(&buf, sampleDocument(), Format("xml")))
}

func TestNewDocument(t *testing.T) {
	c := search.New(20)
	fetch := c.SubmitQuery("dune")
	require.True(t, c.Complete(search.Completion{Seq: fetch.Seq, Page: testutil.SamplePage(45)}))

	doc := NewDocument(c.Snapshot(), search.OrderOldest)
	assert.Equal(t, "dune", doc.Query)
	assert.Equal(t, 3, doc.TotalPages)
	assert.Equal(t, 45, doc.TotalFound)
	require.Len(t, doc.Results, 3)
	assert.Equal(t, "Foundation", doc.Results[0].Title)
	assert.Equal(t, "Dune", doc.Results[1].Title)
	assert.Equal(t, "Untitled", doc.Results[2].Title)
}

func TestRenderDetail(t *testing.T) {
	book := testutil.SampleBooks()[0]

	var buf bytes.Buffer
	require.NoError(t, RenderDetail(&buf, book, "https://covers.openlibrary.org/b/id/11481354-L.jpg"))

	out := buf.String()
	assert.Contains(t, out, "Title:           Dune\n")
	assert.Contains(t, out, "ISBN:            9780441172719\n")
	assert.Contains(t, out, "Subjects:        Science fiction, Arrakis\n")
	assert.Contains(t, out, "https://covers.openlibrary.org/b/id/11481354-L.jpg")
	assert.Contains(t, out, "https://openlibrary.org/works/OL893415W")
}

func TestDetailLinesWithoutCover(t *testing.T) {
	book := openlibrary.Book{Key: "OL1M", Title: "Loose"}
	lines := DetailLines(book, "")

	assert.Contains(t, lines, [2]string{"Cover", "no cover"})
	for _, line := range lines {
		assert.NotEqual(t, "Link", line[0], "non-path keys have no work link")
		assert.NotEqual(t, "ISBN", line[0])
	}
}
