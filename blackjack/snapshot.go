package blackjack

import "blackjack-lite/card"

type ParticipantSnapshot struct {
	ID        uint64
	Wager     int64
	Status    Status
	HandValue int
	HandCards []card.Card
}

type Snapshot struct {
	SessionID string
	TableKey  uint64
	HostID    uint64
	Phase     Phase
	Pot       int64

	// DealerUpCard is CardInvalid until cards are dealt; the full dealer
	// hand is exposed only once resolved.
	DealerUpCard card.Card
	DealerHand   []card.Card
	DealerValue  int

	ShoeRemaining int

	// Participants includes hand cards; render layers filter per viewer.
	Participants []ParticipantSnapshot
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID:     s.id,
		TableKey:      s.tableKey,
		HostID:        s.hostID,
		Phase:         s.phase,
		Pot:           s.pot,
		DealerUpCard:  card.CardInvalid,
		ShoeRemaining: s.shoe.Remaining(),
	}

	if len(s.dealerHand) > 0 {
		snap.DealerUpCard = s.dealerHand[0]
	}
	if s.phase == PhaseResolved {
		snap.DealerHand = s.dealerHand.Clone()
		snap.DealerValue = HandValue(s.dealerHand)
	}

	snap.Participants = make([]ParticipantSnapshot, 0, len(s.participants))
	for _, p := range s.participants {
		snap.Participants = append(snap.Participants, ParticipantSnapshot{
			ID:        p.ID,
			Wager:     p.wager,
			Status:    p.status,
			HandValue: HandValue(p.hand),
			HandCards: p.hand.Clone(),
		})
	}
	return snap
}
