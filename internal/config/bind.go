package config

import (
	"github.com/pkg/errors"

	"github.com/dshills/physkey/internal/config/notify"
	"github.com/dshills/physkey/internal/input"
)

// routerSections feed input.Config.
var routerSections = []string{"keyboard", "sym", "delete", "launcher"}

// Bind applies the current settings to sys and re-applies each section
// when it changes. Unsubscribe the returned subscription to stop.
func (c *Config) Bind(sys *input.System) (*notify.Subscription, error) {
	s := c.Settings()
	for _, section := range []string{"keyboard", "layout", "device"} {
		if err := applySection(sys, s, section); err != nil {
			return nil, err
		}
	}

	sub := c.Subscribe(func(ch notify.Change) {
		if ch.Type != notify.ChangeSet {
			return
		}
		if err := applySection(sys, c.Settings(), ch.Path); err != nil {
			c.logger.Warn("applying %s from %s: %v", ch.Path, ch.Source, err)
			return
		}
		c.logger.Debug("applied %s from %s", ch.Path, ch.Source)
	})
	return sub, nil
}

// applySection pushes one settings section into sys.
func applySection(sys *input.System, s Settings, section string) error {
	switch section {
	case "layout":
		return errors.Wrap(sys.Tables().Load(s.LayoutSource()), "loading layout")
	case "device":
		return sys.SetRemapper(s.Remapper())
	}
	for _, name := range routerSections {
		if name == section {
			cfg, err := s.RouterConfig()
			if err != nil {
				return err
			}
			return sys.SetConfig(cfg)
		}
	}
	return nil
}
