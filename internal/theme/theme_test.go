package theme

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/puzzo-dev/sitefront/internal/clock"
	"github.com/puzzo-dev/sitefront/internal/prefs"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 6, 1, hour, minute, 0, 0, time.UTC)
}

type recorder struct{ applied []Scheme }

func (r *recorder) apply(s Scheme) { r.applied = append(r.applied, s) }

func TestAutoWindowBoundaries(t *testing.T) {
	cases := []struct {
		hour, minute int
		want         Scheme
	}{
		{19, 0, SchemeDark},
		{9, 0, SchemeLight},
		{18, 30, SchemeDark},
		{18, 29, SchemeLight},
		{6, 30, SchemeLight},
		{6, 29, SchemeDark},
		{0, 0, SchemeDark},
	}
	for _, tc := range cases {
		clk := clock.NewManual(at(tc.hour, tc.minute))
		m := New(Options{Clock: clk, Store: prefs.NewMemoryStorage(map[string]string{prefs.KeyTheme: "auto"})})
		m.Mount()
		require.Equal(t, tc.want, m.Actual(), "%02d:%02d", tc.hour, tc.minute)
		m.Unmount()
	}
}

func TestInitialModeReadFromStorage(t *testing.T) {
	m := New(Options{})
	require.Equal(t, ModeSystem, m.Mode())

	m = New(Options{Store: prefs.NewMemoryStorage(map[string]string{prefs.KeyTheme: "dark"})})
	require.Equal(t, ModeDark, m.Mode())
	require.Equal(t, SchemeDark, m.Actual())

	m = New(Options{Store: prefs.NewMemoryStorage(map[string]string{prefs.KeyTheme: "sepia"})})
	require.Equal(t, ModeSystem, m.Mode())
}

func TestSystemFollowsProbeAtEvaluation(t *testing.T) {
	h := http.Header{}
	h.Set("Sec-CH-Prefers-Color-Scheme", "dark")
	rec := &recorder{}
	m := New(Options{Probe: ProbeFromHeader(h), Apply: rec.apply})
	m.Mount()
	require.Equal(t, SchemeDark, m.Actual())

	// No listener: a changed OS preference is only seen on the next transition.
	h.Set("Sec-CH-Prefers-Color-Scheme", "light")
	require.Equal(t, SchemeDark, m.Actual())
	require.NoError(t, m.SetMode(ModeSystem))
	require.Equal(t, SchemeLight, m.Actual())
	require.Equal(t, []Scheme{SchemeDark, SchemeLight}, rec.applied)
}

func TestSetModePersistsModeAndApplies(t *testing.T) {
	store := prefs.NewMemoryStorage(nil)
	rec := &recorder{}
	clk := clock.NewManual(at(20, 0))
	m := New(Options{Clock: clk, Store: store, Apply: rec.apply})
	m.Mount()

	require.NoError(t, m.SetMode(ModeLight))
	require.NoError(t, m.SetMode(ModeAuto))
	v, _ := store.Get(prefs.KeyTheme)
	require.Equal(t, "auto", v)
	require.Equal(t, []Scheme{SchemeLight, SchemeLight, SchemeDark}, rec.applied)

	require.ErrorIs(t, m.SetMode("sepia"), ErrInvalidMode)
	require.Equal(t, ModeAuto, m.Mode())
}

func TestAutoReevaluatesEveryMinute(t *testing.T) {
	clk := clock.NewManual(at(18, 28))
	rec := &recorder{}
	m := New(Options{Clock: clk, Apply: rec.apply})
	m.Mount()
	require.NoError(t, m.SetMode(ModeAuto))
	require.Equal(t, SchemeLight, m.Actual())
	require.Equal(t, 1, clk.Pending())

	clk.Advance(time.Minute)
	require.Equal(t, SchemeLight, m.Actual())
	clk.Advance(time.Minute)
	require.Equal(t, SchemeDark, m.Actual(), "18:30 flips to dark on the next tick")
	require.Equal(t, 1, clk.Pending())
}

func TestTimerTornDown(t *testing.T) {
	clk := clock.NewManual(at(12, 0))
	m := New(Options{Clock: clk})
	m.Mount()
	require.NoError(t, m.SetMode(ModeAuto))
	require.Equal(t, 1, clk.Pending())

	require.NoError(t, m.SetMode(ModeDark))
	require.Equal(t, 0, clk.Pending())

	require.NoError(t, m.SetMode(ModeAuto))
	require.Equal(t, 1, clk.Pending())
	m.Unmount()
	require.Equal(t, 0, clk.Pending())

	clk.Set(at(23, 0))
	clk.Advance(5 * time.Minute)
	require.Equal(t, SchemeLight, m.Actual(), "unmounted machine does not re-evaluate")
}

func TestAutoNotArmedBeforeMount(t *testing.T) {
	clk := clock.NewManual(at(12, 0))
	m := New(Options{Clock: clk})
	require.NoError(t, m.SetMode(ModeAuto))
	require.Equal(t, 0, clk.Pending())
}
