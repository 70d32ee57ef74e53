package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/bookfinder/internal/config"
	"github.com/lepinkainen/bookfinder/internal/repl"
	"github.com/lepinkainen/bookfinder/internal/store"
	"github.com/lepinkainen/bookfinder/internal/testutil"
	"github.com/lepinkainen/bookfinder/internal/tui"
)

func TestTUICommandPassesPreferences(t *testing.T) {
	env, _ := setupCmdTest(t)
	testutil.SetViperValue(t, config.KeyDebounce, "250ms")

	ctx := context.Background()
	st, err := openStore(ctx, config.Load())
	require.NoError(t, err)
	require.NoError(t, st.SetTheme(ctx, store.ThemeLight))
	_, err = st.AddRecent(ctx, "emma")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	orig := runTUI
	t.Cleanup(func() { runTUI = orig })

	var got tui.Options
	runTUI = func(_ context.Context, opts tui.Options) error {
		got = opts
		return nil
	}

	require.NoError(t, (&TUICmd{Query: []string{"dune", "messiah"}}).Run())

	assert.Equal(t, "dune messiah", got.InitialQuery)
	assert.Equal(t, store.ThemeLight, got.Theme)
	assert.Equal(t, []string{"emma"}, got.Recent)
	assert.Equal(t, 20, got.PerPage)
	assert.Equal(t, "250ms", got.Debounce.String())
	assert.NotNil(t, got.Prefs)
	assert.NotNil(t, got.Searcher)

	id := 42
	assert.Equal(t, "https://covers.openlibrary.org/b/id/42-L.jpg", got.CoverURL(&id))
	env.RequireFileExists("bookfinder.log")
}

func TestREPLCommandPassesPreferences(t *testing.T) {
	setupCmdTest(t)

	orig := runREPL
	t.Cleanup(func() { runREPL = orig })

	var got repl.Options
	runREPL = func(_ context.Context, opts repl.Options) error {
		got = opts
		return nil
	}

	require.NoError(t, (&REPLCmd{}).Run())
	assert.NotNil(t, got.Searcher)
	assert.NotNil(t, got.Recorder)
	assert.NotNil(t, got.Out)
	assert.Empty(t, got.Recent)
}
