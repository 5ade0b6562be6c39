package matchmaker

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/hexwall/skirmish/internal/model"
	"github.com/hexwall/skirmish/internal/testutil"
)

type MatchmakerSuite struct {
	suite.Suite
	mm *Matchmaker
}

func TestMatchmakerSuite(t *testing.T) {
	suite.Run(t, new(MatchmakerSuite))
}

func (s *MatchmakerSuite) SetupTest() {
	s.mm = New(Config{
		MaxGames:       2,
		PlayersPerGame: 2,
		Window:         100,
	}, testutil.NopLogger())
}

// fill joins enough users into slots to drive slot 0 to running
func (s *MatchmakerSuite) startMatch(players ...model.Username) model.SlotID {
	var slotID model.SlotID
	for i, player := range players {
		result := s.mm.Join(player, 500)
		slotID = result.Slot
		if i == len(players)-1 {
			s.Require().Equal(JoinStarting, result.Kind)
		}
	}
	return slotID
}

func (s *MatchmakerSuite) TestFirstJoinFillsSlot() {
	result := s.mm.Join("alice", 500)

	s.Equal(JoinWaiting, result.Kind)
	s.Equal(model.SlotID(0), result.Slot)
	s.Equal(1, result.Occupancy)

	slot := s.mm.Slot(result.Slot)
	s.Equal(model.SlotFilling, slot.Status)
	s.Equal([]model.Username{"alice"}, slot.Members)
	s.Equal("[400, 600]", slot.Band.String())
}

func (s *MatchmakerSuite) TestCompletingJoinStartsSlot() {
	s.mm.Join("alice", 500)
	result := s.mm.Join("bob", 480)

	s.Equal(JoinStarting, result.Kind)
	s.Equal(model.SlotID(0), result.Slot)
	s.Equal(2, result.Occupancy)
	s.Equal(model.SlotRunning, s.mm.Slot(result.Slot).Status)
	s.Equal([]model.Username{"alice", "bob"}, s.mm.Slot(result.Slot).Members)
}

func (s *MatchmakerSuite) TestBandIsSetByFirstMemberOnly() {
	s.mm.Join("alice", 500)
	s.mm.Join("bob", 420)

	// bob's rank does not re-center the band
	s.Equal("[400, 600]", s.mm.Slot(0).Band.String())
}

func (s *MatchmakerSuite) TestRankOutsideEveryBandQueues() {
	s.startMatch("alice", "bob")
	s.mm.Join("carol", 900) // slot 1's band is unset, accepts carol
	s.mm.Join("dave", 905)  // slot 1 running too

	result := s.mm.Join("erin", 100)
	s.Equal(JoinQueued, result.Kind)
	s.Equal(1, result.Position)
}

func (s *MatchmakerSuite) TestQueueIsFIFOWithPositions() {
	s.startMatch("alice", "bob")
	s.startMatch("carol", "dave")

	s.Equal(1, s.mm.Join("erin", 500).Position)
	s.Equal(2, s.mm.Join("frank", 500).Position)
	s.Equal([]model.Username{"erin", "frank"}, s.mm.Queue())

	position, ok := s.mm.QueuePosition("frank")
	s.True(ok)
	s.Equal(2, position)
}

func (s *MatchmakerSuite) TestRepeatJoinKeepsQueuePosition() {
	s.startMatch("alice", "bob")
	s.startMatch("carol", "dave")

	s.mm.Join("erin", 500)
	s.mm.Join("frank", 500)

	result := s.mm.Join("erin", 500)
	s.Equal(JoinQueued, result.Kind)
	s.Equal(1, result.Position)
	s.Len(s.mm.Queue(), 2)
}

func (s *MatchmakerSuite) TestRemoveFromQueueRenumbers() {
	s.startMatch("alice", "bob")
	s.startMatch("carol", "dave")
	s.mm.Join("erin", 500)
	s.mm.Join("frank", 500)

	s.True(s.mm.RemoveFromQueue("erin"))
	s.False(s.mm.RemoveFromQueue("erin"))

	position, ok := s.mm.QueuePosition("frank")
	s.True(ok)
	s.Equal(1, position)
}

func (s *MatchmakerSuite) TestFindSlotPrefersMostFilledEligible() {
	mm := New(Config{MaxGames: 3, PlayersPerGame: 3, Window: 100}, testutil.NopLogger())
	mm.Join("alice", 500) // slot 0, occupancy 1
	mm.Join("bob", 500)   // consolidates into slot 0

	slotID, ok := mm.FindSlot(520)
	s.True(ok)
	s.Equal(model.SlotID(0), slotID)
}

func (s *MatchmakerSuite) TestFindSlotSkipsRunningSlots() {
	slotID := s.startMatch("alice", "bob")

	found, ok := s.mm.FindSlot(500)
	s.True(ok)
	s.NotEqual(slotID, found)
}

func (s *MatchmakerSuite) TestJoinFromQueuePrunesQueueEntry() {
	s.startMatch("alice", "bob")
	s.startMatch("carol", "dave")
	s.mm.Join("erin", 500)

	s.mm.Release(0)
	result := s.mm.Join("erin", 500)

	s.Equal(JoinWaiting, result.Kind)
	s.Empty(s.mm.Queue())
}

func (s *MatchmakerSuite) TestMarkLeftAndRejoin() {
	slotID := s.startMatch("alice", "bob")
	s.mm.MarkLeft("alice", slotID)

	left, ok := s.mm.LeftSlot("alice")
	s.True(ok)
	s.Equal(slotID, left)

	result := s.mm.Join("alice", 500)
	s.Equal(JoinRejoined, result.Kind)
	s.Equal(slotID, result.Slot)

	// the reconnect record is consumed
	_, ok = s.mm.LeftSlot("alice")
	s.False(ok)
}

func (s *MatchmakerSuite) TestAbandonRemovesMemberAndFloorsOccupancy() {
	mm := New(Config{MaxGames: 1, PlayersPerGame: 3, Window: 100}, testutil.NopLogger())
	mm.Join("alice", 500)
	mm.Join("bob", 500)

	s.Equal(1, mm.Abandon("alice", 0))
	s.Equal([]model.Username{"bob"}, mm.Slot(0).Members)
	s.Equal(model.SlotFilling, mm.Slot(0).Status)

	s.Equal(0, mm.Abandon("bob", 0))
	s.Equal(model.SlotIdle, mm.Slot(0).Status)
	s.False(mm.Slot(0).Band.Set)

	// abandoning an already-empty slot stays at zero
	s.Equal(0, mm.Abandon("carol", 0))
}

func (s *MatchmakerSuite) TestReleaseResetsSlotAndDropsStaleReconnects() {
	slotID := s.startMatch("alice", "bob")
	s.mm.MarkLeft("alice", slotID)

	s.mm.Release(slotID)

	slot := s.mm.Slot(slotID)
	s.Equal(model.SlotIdle, slot.Status)
	s.Equal(0, slot.Occupancy)
	s.False(slot.Band.Set)
	s.Empty(slot.Members)
	s.Nil(slot.Engine)

	_, ok := s.mm.LeftSlot("alice")
	s.False(ok)
}

func (s *MatchmakerSuite) TestRelaxWidensFillingBands() {
	s.mm.Join("alice", 500)

	s.mm.Relax()
	s.Equal("[300, 700]", s.mm.Slot(0).Band.String())

	s.mm.Relax()
	s.Equal("[200, 800]", s.mm.Slot(0).Band.String())
}

func (s *MatchmakerSuite) TestRelaxFloorsLowBoundAtZero() {
	s.mm.Join("alice", 50)
	s.Equal("[0, 150]", s.mm.Slot(0).Band.String())

	s.mm.Relax()
	s.Equal("[0, 250]", s.mm.Slot(0).Band.String())
}

func (s *MatchmakerSuite) TestRelaxSkipsRunningSlots() {
	slotID := s.startMatch("alice", "bob")
	before := s.mm.Slot(slotID).Band

	s.mm.Relax()
	s.Equal(before, s.mm.Slot(slotID).Band)
}

func (s *MatchmakerSuite) TestRelaxResetsEmptiedSlot() {
	s.mm.Join("alice", 500)
	slot := s.mm.Slot(0)
	// simulate a slot whose only member left but kept its band
	slot.Occupancy = 0
	slot.Members = nil
	slot.Status = model.SlotFilling
	slot.Band = model.NewRankBand(500, 100)

	s.mm.Relax()

	s.Equal(model.SlotIdle, slot.Status)
	s.False(slot.Band.Set)
}

func (s *MatchmakerSuite) TestWidenedBandAdmitsDistantRank() {
	mm := New(Config{MaxGames: 1, PlayersPerGame: 2, Window: 100}, testutil.NopLogger())
	mm.Join("alice", 500)

	s.Equal(JoinQueued, mm.Join("bob", 320).Kind)

	mm.Relax() // band widens to [300, 700]

	result := mm.Join("bob", 320)
	s.Equal(JoinStarting, result.Kind)
	s.Equal(model.SlotID(0), result.Slot)
}
