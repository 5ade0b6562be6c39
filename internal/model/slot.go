package model

import "fmt"

// SlotID identifies one fixed-capacity match bucket
type SlotID int

// SlotStatus represents the lifecycle state of a slot.
// Scheduling decisions are made from this status, never by inspecting
// whether a worker happens to be running.
type SlotStatus string

const (
	SlotIdle    SlotStatus = "idle"    // empty, no band set
	SlotFilling SlotStatus = "filling" // partially occupied, waiting for players
	SlotRunning SlotStatus = "running" // full, engine executing the match
)

// RankBand is the inclusive rank interval a slot currently accepts
// players from. The zero value is the explicit "unset" band.
type RankBand struct {
	Low  int
	High int
	Set  bool
}

// NewRankBand builds a band centered on rank with the given half-width.
// The low side never goes below zero.
func NewRankBand(rank, window int) RankBand {
	low := rank - window
	if low < 0 {
		low = 0
	}
	return RankBand{Low: low, High: rank + window, Set: true}
}

// Contains reports whether the band accepts the given rank.
// An unset band accepts everyone.
func (b RankBand) Contains(rank int) bool {
	if !b.Set {
		return true
	}
	return rank >= b.Low && rank <= b.High
}

// Widen returns the band expanded by window on each side, flooring the
// low side at zero. Widening an unset band is a no-op.
func (b RankBand) Widen(window int) RankBand {
	if !b.Set {
		return b
	}
	low := b.Low - window
	if low < 0 {
		low = 0
	}
	return RankBand{Low: low, High: b.High + window, Set: true}
}

func (b RankBand) String() string {
	if !b.Set {
		return "unset"
	}
	return fmt.Sprintf("[%d, %d]", b.Low, b.High)
}
