package gateway

import (
	"net"

	"github.com/hexwall/skirmish/internal/model"
)

// Events delivered to the gateway loop. Connection readers, engine
// workers, the relaxation ticker, and status queries all feed the same
// channel, so session and matchmaking state is only ever touched by the
// loop goroutine.
type event interface{}

type connectEvent struct {
	conn net.Conn
}

type lineEvent struct {
	conn net.Conn
	text string
}

type disconnectEvent struct {
	conn net.Conn
}

type updateEvent struct {
	update model.Update
}

type statusEvent struct {
	reply chan Status
}

// SlotInfo is one slot's observable state in a status snapshot
type SlotInfo struct {
	ID        int    `json:"id"`
	Status    string `json:"status"`
	Occupancy int    `json:"occupancy"`
	Capacity  int    `json:"capacity"`
	Band      string `json:"band"`
}

// Status is a point-in-time snapshot of matchmaking state
type Status struct {
	Slots []SlotInfo `json:"slots"`
	Queue []string   `json:"queue"`
}
