// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// TailoringMode controls how much rewriting latitude the model is granted.
type TailoringMode string

const (
	// ModeBasic makes conservative, keyword-level adjustments only.
	ModeBasic TailoringMode = "basic"
	// ModePersonalized balances rewriting against preserving the candidate's voice.
	ModePersonalized TailoringMode = "personalized"
	// ModeAggressive rewrites freely as long as facts are preserved.
	ModeAggressive TailoringMode = "aggressive"
)

// NormalizeMode maps user-facing mode names (including the conservative/
// balanced/aggressive aliases) to a canonical TailoringMode.
// Unknown values fall back to ModePersonalized.
func NormalizeMode(s string) TailoringMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basic", "conservative":
		return ModeBasic
	case "aggressive":
		return ModeAggressive
	case "personalized", "balanced", "":
		return ModePersonalized
	default:
		return ModePersonalized
	}
}

// Temperature returns the recommended sampling temperature for the mode.
func (m TailoringMode) Temperature() float32 {
	switch m {
	case ModeBasic:
		return 0.3
	case ModeAggressive:
		return 0.7
	default:
		return 0.5
	}
}
