package main

import (
	"github.com/fatih/color"

	"github.com/dshills/physkey/internal/input"
)

var (
	headerColor  = color.New(color.Bold)
	consumeColor = color.New(color.FgGreen)
	hostColor    = color.New(color.FgYellow)
	noteColor    = color.New(color.Faint)
	keyColor     = color.New(color.FgCyan)
	passColor    = color.New(color.FgGreen, color.Bold)
	failColor    = color.New(color.FgRed, color.Bold)
)

func disableColor() {
	color.NoColor = true
}

// decisionColor picks the color a decision is printed in.
func decisionColor(d input.Decision) *color.Color {
	if d == input.Consume {
		return consumeColor
	}
	return hostColor
}
