package prefs_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vented/internal/prefs"
)

func openPrefs(t *testing.T) *prefs.Prefs {
	t.Helper()
	p, err := prefs.Open(filepath.Join(t.TempDir(), "prefs"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestThemeDefaultsAndPersists(t *testing.T) {
	p := openPrefs(t)

	theme, err := p.Theme()
	require.NoError(t, err)
	assert.Equal(t, prefs.DefaultTheme, theme)

	require.NoError(t, p.SetTheme("Ocean"))
	theme, err = p.Theme()
	require.NoError(t, err)
	assert.Equal(t, "Ocean", theme)
}

func TestSessionIDMintedOnce(t *testing.T) {
	p := openPrefs(t)

	first, err := p.SessionID()
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := p.SessionID()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGratitudeNotesAreASet(t *testing.T) {
	p := openPrefs(t)

	require.NoError(t, p.AddGratitudeNote("morning coffee"))
	require.NoError(t, p.AddGratitudeNote("a long walk"))
	require.NoError(t, p.AddGratitudeNote("morning coffee"))

	notes, err := p.GratitudeNotes()
	require.NoError(t, err)
	assert.Equal(t, []string{"a long walk", "morning coffee"}, notes)

	require.NoError(t, p.RemoveGratitudeNote("a long walk"))
	require.NoError(t, p.RemoveGratitudeNote("never stored"))

	notes, err = p.GratitudeNotes()
	require.NoError(t, err)
	assert.Equal(t, []string{"morning coffee"}, notes)
}

func TestNotesSurviveReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prefs")

	p, err := prefs.Open(dir)
	require.NoError(t, err)
	require.NoError(t, p.AddGratitudeNote("rain on the roof"))
	require.NoError(t, p.SetTheme("Forest"))
	require.NoError(t, p.Close())

	p, err = prefs.Open(dir)
	require.NoError(t, err)
	defer p.Close()

	notes, err := p.GratitudeNotes()
	require.NoError(t, err)
	assert.Equal(t, []string{"rain on the roof"}, notes)

	theme, err := p.Theme()
	require.NoError(t, err)
	assert.Equal(t, "Forest", theme)
}
