package blackjack

import (
	"math/rand"

	"blackjack-lite/card"
)

// Shoe is the single shuffled deck a session draws from. It is owned by
// exactly one session and never refilled.
type Shoe struct {
	cards card.CardList
}

func newShoe(rng *rand.Rand) *Shoe {
	cards := make([]card.Card, len(BlackjackCards))
	copy(cards, BlackjackCards)
	rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	s := &Shoe{}
	s.cards.Init(cards)
	return s
}

// Draw removes and returns the last card. Drawing from an empty shoe is a
// valid, silent outcome (ok == false), never an error.
func (s *Shoe) Draw() (card.Card, bool) {
	c := s.cards.PopCard()
	if c == card.CardInvalid {
		return card.CardInvalid, false
	}
	return c, true
}

// Remaining returns the number of undrawn cards.
func (s *Shoe) Remaining() int {
	return s.cards.Count()
}
