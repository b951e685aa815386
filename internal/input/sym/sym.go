// Package sym implements the Sym page toggle: one key cycles through the
// enabled pages and back to off, and while a page is open letter keys
// commit that page's glyphs.
package sym

import (
	"fmt"
	"strings"

	"github.com/dshills/physkey/internal/input/key"
	"github.com/dshills/physkey/internal/input/layout"
	"github.com/dshills/physkey/internal/logging"
	"github.com/dshills/physkey/internal/sink"
)

// Page is the open Sym page.
type Page uint8

const (
	Off Page = iota

	// Page1 holds emoji.
	Page1

	// Page2 holds symbols.
	Page2
)

// String returns the page name used in settings.
func (p Page) String() string {
	switch p {
	case Off:
		return "off"
	case Page1:
		return "emoji"
	case Page2:
		return "symbols"
	}
	return fmt.Sprintf("Page(%d)", p)
}

// ParsePage parses "emoji" or "symbols".
func ParsePage(s string) (Page, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "emoji", "1":
		return Page1, nil
	case "symbols", "2":
		return Page2, nil
	case "off", "0":
		return Off, nil
	}
	return Off, fmt.Errorf("unknown sym page %q", s)
}

// Result tells the router how a key was handled while a page is open.
type Result uint8

const (
	// NotHandled lets the router continue with normal processing.
	NotHandled Result = iota

	// Consume means the key was handled and must not reach the host.
	Consume

	// CallHostDefault means the host must run its default handling.
	CallHostDefault
)

// String returns the result name.
func (r Result) String() string {
	switch r {
	case NotHandled:
		return "not-handled"
	case Consume:
		return "consume"
	case CallHostDefault:
		return "call-host-default"
	}
	return fmt.Sprintf("Result(%d)", r)
}

// Config configures a Controller.
type Config struct {
	// Pages lists the pages the toggle cycles through, in order.
	Pages []Page

	// AutoClose closes the page after a glyph is committed or Enter.
	AutoClose bool
}

// DefaultConfig enables both pages, emoji first, without auto close.
func DefaultConfig() Config {
	return Config{Pages: []Page{Page1, Page2}}
}

// TableSource provides the active tables. *layout.Store implements it.
type TableSource interface {
	Tables() *layout.Tables
}

// Controller owns the Sym page state of one input session.
type Controller struct {
	config Config
	tables TableSource
	logger *logging.Logger
	page   Page
}

// NewController creates a controller with every page closed.
func NewController(config Config, tables TableSource, logger *logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NullLogger
	}
	c := &Controller{tables: tables, logger: logger.WithComponent("sym")}
	c.SetConfig(config)
	return c
}

// SetConfig replaces the configuration. Duplicate and unknown pages are
// dropped. An open page that is no longer enabled moves to the first
// enabled page; the symbols page may stay open regardless.
func (c *Controller) SetConfig(config Config) {
	var pages []Page
	seen := map[Page]bool{}
	for _, p := range config.Pages {
		if (p == Page1 || p == Page2) && !seen[p] {
			seen[p] = true
			pages = append(pages, p)
		}
	}
	config.Pages = pages
	c.config = config

	if c.page == Off || c.page == Page2 || c.enabled(c.page) {
		return
	}
	if len(pages) > 0 {
		c.page = pages[0]
	} else {
		c.page = Off
	}
}

// Config returns the active configuration.
func (c *Controller) Config() Config {
	return c.config
}

func (c *Controller) enabled(p Page) bool {
	for _, e := range c.config.Pages {
		if e == p {
			return true
		}
	}
	return false
}

// Page returns the open page.
func (c *Controller) Page() Page {
	return c.page
}

// Active reports whether a page is open.
func (c *Controller) Active() bool {
	return c.page != Off
}

// Toggle advances off, then each enabled page in order, then off again.
func (c *Controller) Toggle() Page {
	cycle := append([]Page{Off}, c.config.Pages...)
	next := 0
	for i, p := range cycle {
		if p == c.page {
			next = (i + 1) % len(cycle)
			break
		}
	}
	c.page = cycle[next]
	c.logger.Debug("toggled to %v", c.page)
	return c.page
}

// Open opens p directly even if it is not enabled for cycling. Opening
// the page that is already open closes it. It reports whether p is open
// afterwards.
func (c *Controller) Open(p Page) bool {
	if p == Off || c.page == p {
		c.Close()
		return false
	}
	c.page = p
	return true
}

// Close closes any open page and reports whether one was open.
func (c *Controller) Close() bool {
	if c.page == Off {
		return false
	}
	c.page = Off
	c.logger.Debug("closed")
	return true
}

// Reset closes any open page.
func (c *Controller) Reset() {
	c.page = Off
}

// HandleKey processes a key-down while a page is open. Back closes the
// page and passes through; Enter does the same when auto close is on; Alt
// closes the page and lets normal processing continue. A key mapped on
// the open page commits its glyph, using the shifted table first when
// shift is set.
func (c *Controller) HandleKey(out sink.TextSink, code key.Code, shift bool) Result {
	if c.page == Off {
		return NotHandled
	}

	switch {
	case code == key.CodeBack:
		c.Close()
		return CallHostDefault
	case code == key.CodeEnter && c.config.AutoClose:
		c.Close()
		return CallHostDefault
	case code.IsAlt():
		c.Close()
		return NotHandled
	}

	glyph, ok := c.tables.Tables().SymFor(int(c.page), code, shift)
	if !ok || out == nil {
		return NotHandled
	}
	if err := out.CommitText(glyph); err != nil {
		c.logger.Debug("commit %q skipped: %v", glyph, err)
		return Consume
	}
	if c.config.AutoClose {
		c.Close()
	}
	return Consume
}

// ResolveChord returns the glyph for a Sym+key chord without opening a
// page. The open page is used if any, otherwise the first enabled page.
func (c *Controller) ResolveChord(code key.Code, shift bool) (string, bool) {
	page := c.page
	if page == Off {
		if len(c.config.Pages) == 0 {
			return "", false
		}
		page = c.config.Pages[0]
	}
	return c.tables.Tables().SymFor(int(page), code, shift)
}

// PreferredPage returns the page long presses in Sym mode use: the first
// enabled page, or Page1.
func (c *Controller) PreferredPage() Page {
	if len(c.config.Pages) > 0 {
		return c.config.Pages[0]
	}
	return Page1
}
