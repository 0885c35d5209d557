// Package gesture turns a horizontal pointer drag into a swipe decision.
//
// An Interpreter moves through three states:
//
//	Idle --Begin--> Dragging --Release (|offset| <= threshold) / Cancel--> Idle
//	                Dragging --Release (|offset| > threshold)--> Committing
//	Committing --settle delay elapsed--> Idle (decision delivered)
//
// The decision is fixed the moment Release or Force is called. Only its
// delivery waits for the settle delay, and the returned Commit lets the caller
// await or cancel that delivery. New gestures are refused while a commit is
// settling.
package gesture

import (
	"errors"
	"math"
	"time"
)

var (
	ErrSettling    = errors.New("previous swipe is still settling")
	ErrNoDirection = errors.New("a forced decision needs a direction")
)

type Direction int

const (
	None Direction = iota
	Accept
	Reject
)

func (d Direction) String() string {
	switch d {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	default:
		return "none"
	}
}

// Accepted reports whether d is a right swipe.
func (d Direction) Accepted() bool {
	return d == Accept
}

type State int

const (
	Idle State = iota
	Dragging
	Committing
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Committing:
		return "committing"
	default:
		return "idle"
	}
}

// Immediate as a SettleDelay delivers decisions without waiting.
const Immediate time.Duration = -1

// Config tunes an Interpreter. Zero distances and a zero SettleDelay fall back
// to DefaultConfig.
type Config struct {
	// Threshold is the drag distance in pixels that must be exceeded to commit.
	Threshold float64
	// FadeDistance is the drag distance over which the card fades to MaxFade.
	FadeDistance float64
	MaxFade      float64
	// RotationPerPixel is the card tilt in degrees per pixel of offset. Zero
	// turns tilt off; negative or NaN uses the default.
	RotationPerPixel float64
	// IndicatorDistance is the offset at which the direction badge is opaque.
	IndicatorDistance float64
	// SettleDelay is how long a commit waits before delivery. Use Immediate
	// for none.
	SettleDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		Threshold:         100,
		FadeDistance:      500,
		MaxFade:           0.5,
		RotationPerPixel:  0.05,
		IndicatorDistance: 100,
		SettleDelay:       300 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Threshold <= 0 {
		c.Threshold = defaults.Threshold
	}
	if c.FadeDistance <= 0 {
		c.FadeDistance = defaults.FadeDistance
	}
	if c.MaxFade <= 0 || c.MaxFade > 1 {
		c.MaxFade = defaults.MaxFade
	}
	if c.RotationPerPixel < 0 || math.IsNaN(c.RotationPerPixel) {
		c.RotationPerPixel = defaults.RotationPerPixel
	}
	if c.IndicatorDistance <= 0 {
		c.IndicatorDistance = defaults.IndicatorDistance
	}
	switch {
	case c.SettleDelay == 0:
		c.SettleDelay = defaults.SettleDelay
	case c.SettleDelay < 0:
		c.SettleDelay = 0
	}
	return c
}

// Hint is the live rendering feedback for the current drag offset.
type Hint struct {
	OffsetX     float64
	RotationDeg float64
	Opacity     float64
	// Indicator is the direction the card would go if released now; its
	// badge fades in with IndicatorOpacity.
	Indicator        Direction
	IndicatorOpacity float64
}

// HintFor computes the rendering hint for offset.
func (c Config) HintFor(offset float64) Hint {
	distance := math.Abs(offset)
	hint := Hint{
		OffsetX:     offset,
		RotationDeg: offset * c.RotationPerPixel,
		Opacity:     1 - math.Min(distance/c.FadeDistance, c.MaxFade),
	}
	if offset != 0 {
		hint.Indicator = directionOf(offset)
		hint.IndicatorOpacity = math.Min(distance/c.IndicatorDistance, 1)
	}
	return hint
}

// Decide maps a released offset to a decision. The threshold is exclusive.
func (c Config) Decide(offset float64) Direction {
	if math.Abs(offset) > c.Threshold {
		return directionOf(offset)
	}
	return None
}

func directionOf(offset float64) Direction {
	if offset > 0 {
		return Accept
	}
	return Reject
}
