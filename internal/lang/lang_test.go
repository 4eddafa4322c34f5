package lang

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/puzzo-dev/sitefront/internal/i18n"
	"github.com/puzzo-dev/sitefront/internal/prefs"
)

func newState(t *testing.T, locale string) (*State, *i18n.Localizer, *prefs.MemoryStorage) {
	t.Helper()
	bundle, err := i18n.LoadEmbedded("en", Supported)
	require.NoError(t, err)
	loc := i18n.NewLocalizer(bundle, locale)
	store := prefs.NewMemoryStorage(nil)
	return New(loc, store), loc, store
}

func TestCurrentTruncatesRegion(t *testing.T) {
	s, _, _ := newState(t, "en-US")
	require.Equal(t, "en", s.Current())

	s, _, _ = newState(t, "yo")
	require.Equal(t, "yo", s.Current())
}

func TestSetChangesRuntimeAndPersists(t *testing.T) {
	s, loc, store := newState(t, "en")

	require.NoError(t, s.Set("fr"))
	require.Equal(t, "fr", loc.Locale())
	require.Equal(t, "fr", s.Current())
	v, ok := store.Get(prefs.KeyLanguage)
	require.True(t, ok)
	require.Equal(t, "fr", v)
	require.Equal(t, "Accueil", loc.T("nav.home", ""))
}

func TestSetDoesNotValidate(t *testing.T) {
	s, loc, store := newState(t, "en")

	require.NoError(t, s.Set("de-AT"))
	require.False(t, IsSupported("de"))
	require.Equal(t, "de-AT", loc.Locale())
	require.Equal(t, "de", s.Current())
	v, _ := store.Get(prefs.KeyLanguage)
	require.Equal(t, "de-AT", v)
}

func TestLookup(t *testing.T) {
	require.Equal(t, "Yorùbá", Lookup("yo").NativeName)
	require.Equal(t, "🇫🇷", Lookup("fr").Flag)

	de := Lookup("de")
	require.Equal(t, FallbackFlag, de.Flag)
	require.Equal(t, "German", de.Name)
	require.Equal(t, "Deutsch", de.NativeName)

	bad := Lookup("!!")
	require.Equal(t, FallbackFlag, bad.Flag)
	require.Equal(t, "!!", bad.Name)

	require.Len(t, Options(), len(Supported))
}
