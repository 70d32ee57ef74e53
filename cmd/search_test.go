package cmd

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/bookfinder/internal/config"
	"github.com/lepinkainen/bookfinder/internal/search"
)

func TestSearchCommandPrintsJSONAndRecordsHistory(t *testing.T) {
	_, out := setupCmdTest(t)
	_, calls := newSearchServer(t, http.StatusOK, searchResponse)

	cmd := &SearchCmd{Query: []string{"dune"}, Page: 1, Format: "json", Sort: "relevance", Save: true}
	require.NoError(t, cmd.Run())
	assert.EqualValues(t, 1, calls.Load())

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "dune", doc["query"])
	assert.EqualValues(t, 45, doc["total_found"])
	assert.EqualValues(t, 3, doc["total_pages"])

	out.Reset()
	require.NoError(t, (&HistoryListCmd{}).Run())
	assert.Equal(t, " 1. dune\n", out.String())
}

func TestSearchCommandLaterPage(t *testing.T) {
	_, out := setupCmdTest(t)
	_, calls := newSearchServer(t, http.StatusOK, searchResponse)

	cmd := &SearchCmd{Query: []string{"dune"}, Page: 9, Format: "table", Sort: "oldest"}
	require.NoError(t, cmd.Run())

	assert.EqualValues(t, 2, calls.Load())
	assert.Contains(t, out.String(), "Page 3 of 3")
}

func TestSearchCommandLaterPageReusesOneSearcher(t *testing.T) {
	setupCmdTest(t)
	_, calls := newSearchServer(t, http.StatusOK, searchResponse)

	built := 0
	original := newSearcher
	newSearcher = func(cfg config.Config) search.Searcher {
		built++
		return original(cfg)
	}
	t.Cleanup(func() { newSearcher = original })

	cmd := &SearchCmd{Query: []string{"dune"}, Page: 2, Format: "table", Sort: "relevance"}
	require.NoError(t, cmd.Run())

	assert.Equal(t, 1, built)
	assert.EqualValues(t, 2, calls.Load())
}

func TestSearchCommandFailure(t *testing.T) {
	setupCmdTest(t)
	newSearchServer(t, http.StatusBadGateway, "")

	cmd := &SearchCmd{Query: []string{"xyz"}, Page: 1, Format: "table", Sort: "relevance", Save: true}
	err := cmd.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to fetch results")
}

func TestSearchCommandValidation(t *testing.T) {
	setupCmdTest(t)

	assert.Error(t, (&SearchCmd{Query: []string{"  "}, Format: "table", Sort: "relevance"}).Run())
	assert.Error(t, (&SearchCmd{Query: []string{"dune"}, Format: "xml", Sort: "relevance"}).Run())
	assert.Error(t, (&SearchCmd{Query: []string{"dune"}, Format: "table", Sort: "title"}).Run())
}
