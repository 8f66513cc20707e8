package blackjack

import "blackjack-lite/card"

// Participant is one seated player within a session. Identity and wager are
// fixed at join time; only the hand and status mutate afterwards.
type Participant struct {
	ID uint64

	wager  int64
	status Status
	hand   card.CardList
}

func (p *Participant) Wager() int64 { return p.wager }
func (p *Participant) Status() Status { return p.status }

// Done reports whether the participant has no further decisions.
func (p *Participant) Done() bool { return p.status != StatusActive }

func (p *Participant) Hand() []card.Card { return p.hand }

func (p *Participant) HandValue() int { return HandValue(p.hand) }

func (p *Participant) addCard(cards ...card.Card) {
	p.hand.Add(cards...)
}

func (p *Participant) setStatus(s Status) { p.status = s }
