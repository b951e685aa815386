package longpress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/physkey/internal/input/autospace"
	"github.com/dshills/physkey/internal/input/key"
	"github.com/dshills/physkey/internal/input/layout"
	"github.com/dshills/physkey/internal/sink"
	"github.com/dshills/physkey/internal/timer"
)

type recorder struct {
	alt    []rune
	normal []string
}

func (r *recorder) AltCharInserted(c rune)          { r.alt = append(r.alt, c) }
func (r *recorder) NormalCharCommitted(text string) { r.normal = append(r.normal, text) }

type fixture struct {
	clock  *timer.Manual
	sink   *sink.Memory
	spaces *autospace.Tracker
	events *recorder
	lp     *Scheduler
}

func newFixture(t *testing.T, mode Mode, text string) *fixture {
	t.Helper()
	f := &fixture{
		clock:  timer.NewManual(time.Unix(1_700_000_000, 0)),
		sink:   sink.NewMemoryWithText(text),
		spaces: autospace.NewTracker(nil),
		events: &recorder{},
	}
	cfg := DefaultConfig()
	cfg.Mode = mode
	f.lp = NewScheduler(cfg, f.clock, layout.NewStore(nil), f.spaces, f.events, nil)
	return f
}

func TestAltLongPressReplacesShortPress(t *testing.T) {
	f := newFixture(t, ModeAlt, "")

	f.lp.Press(f.sink, key.CodeW, "w", false)
	assert.Equal(t, "w", f.sink.Text())
	assert.True(t, f.lp.Pending(key.CodeW))

	f.clock.Advance(499 * time.Millisecond)
	assert.Equal(t, "w", f.sink.Text())

	f.clock.Advance(time.Millisecond)
	assert.Equal(t, "1", f.sink.Text())
	assert.Equal(t, []rune{'1'}, f.events.alt)

	assert.True(t, f.lp.Release(key.CodeW, false))
	assert.Empty(t, f.events.normal)
	assert.False(t, f.lp.Pending(key.CodeW))
}

func TestReleaseBeforeThresholdKeepsShortPress(t *testing.T) {
	f := newFixture(t, ModeAlt, "")

	f.lp.Press(f.sink, key.CodeW, "w", false)
	f.clock.Advance(200 * time.Millisecond)
	assert.True(t, f.lp.Release(key.CodeW, false))

	f.clock.Advance(time.Second)
	assert.Equal(t, "w", f.sink.Text())
	assert.Equal(t, []string{"w"}, f.events.normal)
	assert.Empty(t, f.events.alt)
	assert.Equal(t, 0, f.clock.Pending())
}

func TestReleaseWithoutPress(t *testing.T) {
	f := newFixture(t, ModeAlt, "")
	assert.False(t, f.lp.Release(key.CodeW, false))
}

func TestUnsupportedKeyIsPendingWithoutTimer(t *testing.T) {
	f := newFixture(t, ModeAlt, "")

	f.lp.Press(f.sink, key.CodeApostrophe, "'", false)
	assert.True(t, f.lp.Pending(key.CodeApostrophe))
	assert.Equal(t, 0, f.clock.Pending())

	assert.True(t, f.lp.Release(key.CodeApostrophe, false))
	assert.Equal(t, []string{"'"}, f.events.normal)
}

func TestShiftMode(t *testing.T) {
	f := newFixture(t, ModeShift, "")

	f.lp.Press(f.sink, key.CodeA, "a", false)
	f.clock.Advance(DefaultThreshold)
	assert.Equal(t, "A", f.sink.Text())

	// Unmapped letters fall back to algorithmic uppercase.
	require.NoError(t, f.sink.CommitText("ü"))
	f.lp.ArmOnly(f.sink, key.CodeUnknown, "ü")
	f.clock.Advance(DefaultThreshold)
	assert.Equal(t, "AÜ", f.sink.Text())
	assert.Equal(t, []rune{'A', 'Ü'}, f.events.alt)
}

func TestVariationsMode(t *testing.T) {
	f := newFixture(t, ModeVariations, "")

	f.lp.Press(f.sink, key.CodeE, "e", false)
	f.clock.Advance(DefaultThreshold)
	assert.Equal(t, "è", f.sink.Text())
	f.lp.Release(key.CodeE, false)

	f.lp.Press(f.sink, key.CodeE, "E", true)
	f.clock.Advance(DefaultThreshold)
	assert.Equal(t, "èÈ", f.sink.Text())
	f.lp.Release(key.CodeE, false)

	f.lp.Press(f.sink, key.CodeQ, "q", false)
	assert.Equal(t, 0, f.clock.Pending(), "q has no variations")
}

func TestSymMode(t *testing.T) {
	f := newFixture(t, ModeSym, "")

	f.lp.Press(f.sink, key.CodeA, "a", false)
	f.clock.Advance(DefaultThreshold)
	f.lp.Release(key.CodeA, false)
	assert.Equal(t, "😢", f.sink.Text())

	f.lp.Press(f.sink, key.CodeA, "A", true)
	f.clock.Advance(DefaultThreshold)
	f.lp.Release(key.CodeA, false)
	assert.Equal(t, "😢😭", f.sink.Text())

	cfg := f.lp.Config()
	cfg.SymPage = 2
	f.lp.SetConfig(cfg)
	f.lp.Press(f.sink, key.CodeA, "A", true)
	f.clock.Advance(DefaultThreshold)
	assert.Equal(t, "😢😭≠", f.sink.Text())
}

func TestLongPressReplacesAutoSpace(t *testing.T) {
	f := newFixture(t, ModeAlt, "word ")
	f.spaces.Mark()

	f.lp.Press(f.sink, key.CodeM, "m", false)
	assert.Equal(t, "word m", f.sink.Text())

	f.clock.Advance(DefaultThreshold)
	assert.Equal(t, "word. ", f.sink.Text())
	assert.Equal(t, []rune{'.'}, f.events.alt)
	assert.False(t, f.spaces.Pending())
}

func TestLongPressWithoutAutoSpaceClearsTracker(t *testing.T) {
	f := newFixture(t, ModeAlt, "word")
	f.spaces.Mark()

	f.lp.Press(f.sink, key.CodeW, "w", false)
	f.clock.Advance(DefaultThreshold)
	assert.Equal(t, "word1", f.sink.Text())
	assert.False(t, f.spaces.Pending())
}

func TestHoldModifierKeepsTimerAlive(t *testing.T) {
	f := newFixture(t, ModeAlt, "")

	f.lp.Press(f.sink, key.CodeW, "w", false)
	f.clock.Advance(100 * time.Millisecond)
	assert.True(t, f.lp.Release(key.CodeW, true))
	assert.False(t, f.lp.Pending(key.CodeW))

	f.clock.Advance(400 * time.Millisecond)
	assert.Equal(t, "1", f.sink.Text())

	// The released press is gone once it fired.
	f.lp.Press(f.sink, key.CodeW, "w", false)
	assert.True(t, f.lp.Release(key.CodeW, false))
}

func TestCancelReleased(t *testing.T) {
	f := newFixture(t, ModeAlt, "")

	f.lp.Press(f.sink, key.CodeW, "w", false)
	f.lp.Release(key.CodeW, true)
	f.lp.CancelReleased()

	f.clock.Advance(time.Second)
	assert.Equal(t, "w", f.sink.Text())
	assert.Equal(t, 0, f.clock.Pending())
}

func TestRepressReplacesTimer(t *testing.T) {
	f := newFixture(t, ModeAlt, "")

	f.lp.Press(f.sink, key.CodeW, "w", false)
	f.clock.Advance(300 * time.Millisecond)
	f.lp.Press(f.sink, key.CodeW, "w", false)
	f.clock.Advance(300 * time.Millisecond)
	assert.Equal(t, "ww", f.sink.Text(), "first timer was cancelled")

	f.clock.Advance(200 * time.Millisecond)
	assert.Equal(t, "w1", f.sink.Text())
}

func TestCancelTimerKeepsPress(t *testing.T) {
	f := newFixture(t, ModeAlt, "")

	f.lp.Press(f.sink, key.CodeW, "w", false)
	f.lp.CancelTimer(key.CodeW)
	f.clock.Advance(time.Second)

	assert.Equal(t, "w", f.sink.Text())
	assert.True(t, f.lp.Pending(key.CodeW))
}

func TestDetachedSinkCommitsNothing(t *testing.T) {
	f := newFixture(t, ModeAlt, "")
	f.sink.SetAvailable(false)

	f.lp.Press(f.sink, key.CodeW, "w", false)
	f.clock.Advance(time.Second)
	assert.True(t, f.lp.Release(key.CodeW, false))

	f.sink.SetAvailable(true)
	assert.Equal(t, "", f.sink.Text())
	assert.Empty(t, f.events.normal)
}

func TestReset(t *testing.T) {
	f := newFixture(t, ModeAlt, "")
	f.lp.Press(f.sink, key.CodeW, "w", false)
	f.lp.Press(f.sink, key.CodeE, "e", false)

	f.lp.Reset()
	assert.False(t, f.lp.Pending(key.CodeW))
	assert.False(t, f.lp.Pending(key.CodeE))
	assert.Equal(t, 0, f.clock.Pending())
}

func TestThresholdClamp(t *testing.T) {
	f := newFixture(t, ModeAlt, "")

	tests := []struct {
		in, want time.Duration
	}{
		{0, DefaultThreshold},
		{10 * time.Millisecond, MinThreshold},
		{5 * time.Second, MaxThreshold},
		{300 * time.Millisecond, 300 * time.Millisecond},
	}
	for _, tt := range tests {
		f.lp.SetConfig(Config{Threshold: tt.in})
		if got := f.lp.Config().Threshold; got != tt.want {
			t.Errorf("threshold %v clamped to %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeAlt, ModeShift, ModeVariations, ModeSym} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("meta")
	assert.Error(t, err)
}
