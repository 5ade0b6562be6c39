package model

// PlacementKind is where a session currently sits in the matchmaking flow
type PlacementKind string

const (
	PlacementNone    PlacementKind = "unauthenticated"
	PlacementQueued  PlacementKind = "queued"
	PlacementWaiting PlacementKind = "waiting"
	PlacementPlaying PlacementKind = "playing"
)

// Placement records a session's single current position: nowhere, a queue
// position, or a slot it is filling or playing in.
type Placement struct {
	Kind     PlacementKind
	Slot     SlotID // valid for waiting/playing
	Position int    // valid for queued, 1-based
}

// NoPlacement is the placement of a freshly connected session
func NoPlacement() Placement {
	return Placement{Kind: PlacementNone}
}

// QueuedAt places a session at the given 1-based queue position
func QueuedAt(position int) Placement {
	return Placement{Kind: PlacementQueued, Position: position}
}

// WaitingIn places a session in a slot that is still filling
func WaitingIn(slot SlotID) Placement {
	return Placement{Kind: PlacementWaiting, Slot: slot}
}

// PlayingIn places a session in a slot with a running match
func PlayingIn(slot SlotID) Placement {
	return Placement{Kind: PlacementPlaying, Slot: slot}
}
