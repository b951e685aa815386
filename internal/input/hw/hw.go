// Package hw rewrites vendor specific key events into the canonical codes
// and meta bits the rest of the pipeline expects.
//
// All knowledge of particular keyboards lives here. A Remapper describes
// one keyboard family; the Normalizer applies the active one to every
// event before any other component sees it.
package hw

import (
	"strings"

	"github.com/dshills/physkey/internal/input/key"
	"github.com/dshills/physkey/internal/logging"
)

// Remapper rewrites events for one keyboard family.
type Remapper interface {
	// Name identifies the keyboard family, e.g. "q25".
	Name() string

	// NeedsRemapping reports whether this keyboard needs any rewriting.
	NeedsRemapping() bool

	// Remap returns the canonical form of ev. Implementations may keep
	// state across calls; they are called once per event, in order.
	Remap(ev key.Event) key.Event
}

// Identity is the Remapper for keyboards that report canonical events.
type Identity struct{}

// Name implements Remapper.
func (Identity) Name() string { return "none" }

// NeedsRemapping implements Remapper.
func (Identity) NeedsRemapping() bool { return false }

// Remap implements Remapper.
func (Identity) Remap(ev key.Event) key.Event { return ev }

// Profile names accepted by ForProfile.
const (
	ProfileAuto = "auto"
	ProfileNone = "none"
	ProfileQ25  = "q25"
)

// ForProfile returns the remapper for a configured profile name. "auto"
// picks one from deviceName. Unknown names fall back to Identity.
func ForProfile(profile, deviceName string) Remapper {
	switch strings.ToLower(strings.TrimSpace(profile)) {
	case ProfileQ25:
		return NewQ25()
	case ProfileNone:
		return Identity{}
	case ProfileAuto, "":
		return Detect(deviceName)
	}
	return Identity{}
}

// Detect picks a remapper from the host device name.
func Detect(deviceName string) Remapper {
	if strings.EqualFold(strings.TrimSpace(deviceName), "Q25") {
		return NewQ25()
	}
	return Identity{}
}

// KeyboardName returns a display name for the keyboard behind deviceName.
func KeyboardName(deviceName string) string {
	lower := strings.ToLower(deviceName)
	switch {
	case strings.Contains(lower, "titan"):
		return "Unihertz"
	case strings.EqualFold(strings.TrimSpace(deviceName), "Q25"):
		return "Blackberry"
	}
	return "unknown"
}

// Normalizer applies a Remapper to the event stream.
type Normalizer struct {
	remapper Remapper
	logger   *logging.Logger
}

// NewNormalizer creates a normalizer. A nil remapper means Identity.
func NewNormalizer(r Remapper, logger *logging.Logger) *Normalizer {
	if r == nil {
		r = Identity{}
	}
	if logger == nil {
		logger = logging.NullLogger
	}
	return &Normalizer{
		remapper: r,
		logger:   logger.WithComponent("hw").WithField("profile", r.Name()),
	}
}

// Profile returns the active remapper's name.
func (n *Normalizer) Profile() string {
	return n.remapper.Name()
}

// Normalize returns the canonical form of ev.
func (n *Normalizer) Normalize(ev key.Event) key.Event {
	if !n.remapper.NeedsRemapping() {
		return ev
	}
	out := n.remapper.Remap(ev)
	if out.Code != ev.Code || out.Meta != ev.Meta {
		n.logger.Debug("remapped %v (meta %#x) to %v (meta %#x)", ev.Code, ev.Meta, out.Code, out.Meta)
	}
	return out
}
