package matchmaker

import (
	"log/slog"

	"github.com/hexwall/skirmish/internal/model"
	"github.com/hexwall/skirmish/internal/services/match"
)

// Config holds matchmaker settings
type Config struct {
	// MaxGames is the number of slots (simultaneous matches)
	MaxGames int
	// PlayersPerGame is the fixed slot capacity
	PlayersPerGame int
	// Window is the rank half-width of a new band and the per-relaxation
	// widening amount
	Window int
}

// DefaultConfig returns default matchmaker configuration
func DefaultConfig() Config {
	return Config{
		MaxGames:       10,
		PlayersPerGame: 2,
		Window:         100,
	}
}

// Slot is one fixed-capacity match bucket
type Slot struct {
	ID        model.SlotID
	Status    model.SlotStatus
	Occupancy int
	Band      model.RankBand
	// Members is the slot roster in join order; roster halves for the
	// match score are derived from this ordering
	Members []model.Username
	// Engine is the running match engine, nil unless Status is running
	Engine *match.Engine
}

// JoinKind classifies the result of the join protocol
type JoinKind int

const (
	// JoinRejoined reattached a disconnected player to their in-progress match
	JoinRejoined JoinKind = iota
	// JoinQueued placed the player in the waiting queue
	JoinQueued
	// JoinWaiting placed the player in a slot that is still filling
	JoinWaiting
	// JoinStarting placed the player as the one completing a slot
	JoinStarting
)

// JoinResult is the decision the gateway applies after a join
type JoinResult struct {
	Kind      JoinKind
	Slot      model.SlotID // valid for rejoined/waiting/starting
	Position  int          // valid for queued, 1-based
	Occupancy int          // valid for waiting/starting
}

// Matchmaker assigns users to slots by rank proximity, tracks the waiting
// queue, and preserves slot assignments for mid-match disconnects.
//
// It is not internally synchronized: all methods must be called from the
// gateway's event loop goroutine, which exclusively owns matchmaking state.
type Matchmaker struct {
	cfg    Config
	logger *slog.Logger

	slots      []*Slot
	queue      []model.Username
	leftInGame map[model.Username]model.SlotID
}

// New creates a matchmaker with MaxGames empty slots
func New(cfg Config, logger *slog.Logger) *Matchmaker {
	slots := make([]*Slot, cfg.MaxGames)
	for i := range slots {
		slots[i] = &Slot{ID: model.SlotID(i), Status: model.SlotIdle}
	}
	return &Matchmaker{
		cfg:        cfg,
		logger:     logger,
		slots:      slots,
		leftInGame: make(map[model.Username]model.SlotID),
	}
}

// PlayersPerGame returns the fixed slot capacity
func (m *Matchmaker) PlayersPerGame() int {
	return m.cfg.PlayersPerGame
}

// Slots returns the slot table. Callers must not retain the slice across
// loop iterations.
func (m *Matchmaker) Slots() []*Slot {
	return m.slots
}

// Slot returns the slot with the given ID, or nil
func (m *Matchmaker) Slot(id model.SlotID) *Slot {
	if int(id) < 0 || int(id) >= len(m.slots) {
		return nil
	}
	return m.slots[id]
}

// FindSlot scans for a slot without a running engine whose band is unset or
// contains the rank, preferring the most-filled eligible slot so partially
// filled slots are consolidated.
func (m *Matchmaker) FindSlot(rank int) (model.SlotID, bool) {
	best := -1
	for i, slot := range m.slots {
		if slot.Status == model.SlotRunning {
			continue
		}
		if !slot.Band.Contains(rank) {
			continue
		}
		if best == -1 || slot.Occupancy > m.slots[best].Occupancy {
			best = i
		}
	}
	if best == -1 {
		return 0, false
	}
	return model.SlotID(best), true
}

// Join runs the join protocol for an authenticated user: reconnect into an
// in-progress match, queue when no slot qualifies, fill a slot, or complete
// one. Reconnection bypasses rank matching entirely.
func (m *Matchmaker) Join(username model.Username, rank int) JoinResult {
	if slotID, ok := m.leftInGame[username]; ok {
		delete(m.leftInGame, username)
		m.logger.Info("player rejoined match",
			slog.String("username", string(username)),
			slog.Int("slot", int(slotID)),
		)
		return JoinResult{Kind: JoinRejoined, Slot: slotID}
	}

	slotID, ok := m.FindSlot(rank)
	if !ok {
		position := m.enqueue(username)
		return JoinResult{Kind: JoinQueued, Position: position}
	}

	slot := m.slots[slotID]
	m.removeQueued(username)
	slot.Occupancy++
	slot.Members = append(slot.Members, username)
	if !slot.Band.Set {
		slot.Band = model.NewRankBand(rank, m.cfg.Window)
	}

	if slot.Occupancy < m.cfg.PlayersPerGame {
		slot.Status = model.SlotFilling
		m.logger.Info("player filling slot",
			slog.String("username", string(username)),
			slog.Int("slot", int(slotID)),
			slog.Int("occupancy", slot.Occupancy),
			slog.String("band", slot.Band.String()),
		)
		return JoinResult{Kind: JoinWaiting, Slot: slotID, Occupancy: slot.Occupancy}
	}

	slot.Status = model.SlotRunning
	m.logger.Info("slot filled",
		slog.String("username", string(username)),
		slog.Int("slot", int(slotID)),
	)
	return JoinResult{Kind: JoinStarting, Slot: slotID, Occupancy: slot.Occupancy}
}

// BindEngine attaches the running engine to its slot
func (m *Matchmaker) BindEngine(id model.SlotID, engine *match.Engine) {
	if slot := m.Slot(id); slot != nil {
		slot.Engine = engine
	}
}

// Queue returns a snapshot of the waiting queue in FIFO order
func (m *Matchmaker) Queue() []model.Username {
	queue := make([]model.Username, len(m.queue))
	copy(queue, m.queue)
	return queue
}

// QueuePosition returns a user's 1-based queue position
func (m *Matchmaker) QueuePosition(username model.Username) (int, bool) {
	for i, queued := range m.queue {
		if queued == username {
			return i + 1, true
		}
	}
	return 0, false
}

// RemoveFromQueue drops a user from the queue, reporting whether they were in it
func (m *Matchmaker) RemoveFromQueue(username model.Username) bool {
	return m.removeQueued(username)
}

// MarkLeft records that a playing user disconnected mid-match, preserving
// their slot assignment for reconnection
func (m *Matchmaker) MarkLeft(username model.Username, slot model.SlotID) {
	m.leftInGame[username] = slot
}

// LeftSlot returns the preserved slot for a disconnected player, if any
func (m *Matchmaker) LeftSlot(username model.Username) (model.SlotID, bool) {
	slot, ok := m.leftInGame[username]
	return slot, ok
}

// Abandon removes a user from a slot that has not started (explicit or
// implicit logout mid-fill). Occupancy floors at zero; an emptied slot
// clears its band and returns to idle. Returns the new occupancy.
func (m *Matchmaker) Abandon(username model.Username, id model.SlotID) int {
	slot := m.Slot(id)
	if slot == nil {
		return 0
	}

	for i, member := range slot.Members {
		if member == username {
			slot.Members = append(slot.Members[:i], slot.Members[i+1:]...)
			break
		}
	}
	if slot.Occupancy > 0 {
		slot.Occupancy--
	}
	if slot.Occupancy == 0 {
		slot.Band = model.RankBand{}
		slot.Status = model.SlotIdle
	}

	m.logger.Info("player abandoned slot",
		slog.String("username", string(username)),
		slog.Int("slot", int(id)),
		slog.Int("occupancy", slot.Occupancy),
	)
	return slot.Occupancy
}

// Release resets a slot after its match ends: occupancy zero, band unset,
// idle status. Stale reconnect records for the finished match are dropped.
// The caller then re-offers the queue in FIFO order.
func (m *Matchmaker) Release(id model.SlotID) {
	slot := m.Slot(id)
	if slot == nil {
		return
	}

	slot.Occupancy = 0
	slot.Band = model.RankBand{}
	slot.Status = model.SlotIdle
	slot.Members = nil
	slot.Engine = nil

	for username, left := range m.leftInGame {
		if left == id {
			delete(m.leftInGame, username)
		}
	}

	m.logger.Info("slot released", slog.Int("slot", int(id)))
}

// Relax widens the band of every stalled filling slot by the configured
// window on each side, and clears stale bands on slots that emptied without
// ever starting. The caller then re-offers queued users.
func (m *Matchmaker) Relax() {
	for _, slot := range m.slots {
		if slot.Status == model.SlotRunning || !slot.Band.Set {
			continue
		}
		if slot.Occupancy == 0 {
			slot.Band = model.RankBand{}
			slot.Status = model.SlotIdle
			continue
		}
		slot.Band = slot.Band.Widen(m.cfg.Window)
		m.logger.Info("slot band relaxed",
			slog.Int("slot", int(slot.ID)),
			slog.String("band", slot.Band.String()),
		)
	}
}

// enqueue appends a user to the queue, keeping at-most-one membership.
// Returns the 1-based position.
func (m *Matchmaker) enqueue(username model.Username) int {
	if position, ok := m.QueuePosition(username); ok {
		return position
	}
	m.queue = append(m.queue, username)
	return len(m.queue)
}

func (m *Matchmaker) removeQueued(username model.Username) bool {
	for i, queued := range m.queue {
		if queued == username {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return true
		}
	}
	return false
}
