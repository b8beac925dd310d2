package models

import "strings"

// PresentationMode selects how a computed time cost is rendered next to a price.
type PresentationMode string

const (
	// ModeDefault keeps the price and appends an inline badge.
	ModeDefault PresentationMode = "default"
	// ModeComfortable keeps the price and reveals the cost in a hover tooltip.
	ModeComfortable PresentationMode = "comfortable"
	// ModeCompact replaces the price with the badge.
	ModeCompact PresentationMode = "compact"
)

// Modes lists every presentation mode in display order.
var Modes = []PresentationMode{ModeDefault, ModeComfortable, ModeCompact}

// ParsePresentationMode validates a stored or user supplied mode.
func ParsePresentationMode(s string) (PresentationMode, bool) {
	m := PresentationMode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, true
		}
	}
	return ModeDefault, false
}

// ResolveMode picks the mode for a run: an explicit override wins over the stored setting.
func ResolveMode(override, stored PresentationMode) PresentationMode {
	if override != "" {
		return override
	}
	if stored == "" {
		return ModeDefault // Nothing stored yet
	}
	return stored
}
