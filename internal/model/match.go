package model

// Action is one raw in-match input from a player, pending resolution
type Action struct {
	Username Username
	Text     string
}

// PlayerMessage is one narrative line addressed to a single player.
// Score is only meaningful on final (game-over) messages, where it carries
// the player's signed end-of-match score for rank adjustment.
type PlayerMessage struct {
	Username Username
	Text     string
	Score    int
	Final    bool
}

// Update is one batch of outcomes emitted by a game engine for delivery.
// Final marks the game-over batch that ends the match.
type Update struct {
	Slot     SlotID
	Messages []PlayerMessage
	Final    bool
}
