// Package router decides which backend serves a prompt.
//
// The decision is a single length threshold: forced modes win, otherwise
// prompts at or above the threshold go to the large backend and everything
// else (including the empty prompt) goes to the small one.
package router

import (
	"unicode/utf8"

	"routerd/pkg/types"
)

// DefaultThreshold is the prompt length, in characters, at which auto mode
// switches to the large backend.
const DefaultThreshold = 160

// Mode is the caller's routing preference.
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeSmall Mode = "small"
	ModeLarge Mode = "large"
)

// Reason tags why a backend was chosen.
type Reason string

const (
	ReasonForcedSmall Reason = "forced_small"
	ReasonForcedLarge Reason = "forced_large"
	ReasonPromptLong  Reason = "prompt_long"
	ReasonSmallOK     Reason = "small_ok"
)

// Decision is the outcome of routing one prompt.
type Decision struct {
	Kind   types.Kind
	Reason Reason
}

// Router holds the routing policy.
type Router struct {
	threshold  int
	permissive bool
}

// New returns a Router. A non-positive threshold selects DefaultThreshold.
// When permissive is true, unknown modes are routed as auto instead of
// being rejected by ParseMode.
func New(threshold int, permissive bool) *Router {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Router{threshold: threshold, permissive: permissive}
}

// Threshold returns the configured length threshold.
func (r *Router) Threshold() int { return r.threshold }

// Permissive reports whether unknown modes fall back to auto.
func (r *Router) Permissive() bool { return r.permissive }

// ParseMode maps a raw mode string to a Mode. Matching is exact: "Large"
// or " small " are unknown modes. Empty means auto. Unknown values return
// an UnknownModeError unless the router is permissive.
func (r *Router) ParseMode(raw string) (Mode, error) {
	switch m := Mode(raw); m {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeSmall, ModeLarge:
		return m, nil
	default:
		if r.permissive {
			return ModeAuto, nil
		}
		return "", &UnknownModeError{Mode: raw}
	}
}

// Route picks the backend for prompt under mode. Any mode other than small
// or large is treated as auto.
func (r *Router) Route(prompt string, mode Mode) Decision {
	switch mode {
	case ModeLarge:
		return Decision{Kind: types.KindLarge, Reason: ReasonForcedLarge}
	case ModeSmall:
		return Decision{Kind: types.KindSmall, Reason: ReasonForcedSmall}
	}
	if utf8.RuneCountInString(prompt) >= r.threshold {
		return Decision{Kind: types.KindLarge, Reason: ReasonPromptLong}
	}
	return Decision{Kind: types.KindSmall, Reason: ReasonSmallOK}
}

// UnknownModeError reports a mode outside {small, large, auto}.
type UnknownModeError struct{ Mode string }

func (e *UnknownModeError) Error() string {
	return "unknown mode: " + e.Mode + " (want small, large or auto)"
}
