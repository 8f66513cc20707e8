package blackjack

import (
	"testing"

	"blackjack-lite/card"
)

func TestHandValue_SoftAces(t *testing.T) {
	cases := []struct {
		name string
		hand []card.Card
		want int
	}{
		{"ace king", []card.Card{card.CardSpadeA, card.CardHeartK}, 21},
		{"two aces", []card.Card{card.CardSpadeA, card.CardHeartA}, 12},
		{"two aces and nine", []card.Card{card.CardSpadeA, card.CardHeartA, card.CardClub9}, 21},
		{"faces bust", []card.Card{card.CardSpadeK, card.CardHeartQ, card.CardClub2}, 22},
		{"empty", nil, 0},
		{"hard twenty", []card.Card{card.CardHeartT, card.CardDiamondQ}, 20},
		{"four aces", []card.Card{card.CardSpadeA, card.CardHeartA, card.CardClubA, card.CardDiamondA}, 14},
	}
	for _, tc := range cases {
		if got := HandValue(tc.hand); got != tc.want {
			t.Fatalf("%s: HandValue = %d, want %d", tc.name, got, tc.want)
		}
	}
}

// The reduction may never subtract more than 10 per ace present, and never
// more than needed to get at or below 21.
func TestHandValue_ReductionBound(t *testing.T) {
	for a := 0; a < len(BlackjackCards); a++ {
		for b := a + 1; b < len(BlackjackCards); b++ {
			for c := b + 1; c < len(BlackjackCards); c++ {
				hand := []card.Card{BlackjackCards[a], BlackjackCards[b], BlackjackCards[c]}
				raw := 0
				aces := 0
				for _, cc := range hand {
					raw += cc.PipValue()
					if cc.IsAce() {
						aces++
					}
				}
				got := HandValue(hand)
				if got > raw {
					t.Fatalf("hand %v: value %d above raw %d", hand, got, raw)
				}
				if raw-got > 10*aces {
					t.Fatalf("hand %v: reduced by %d with only %d aces", hand, raw-got, aces)
				}
				if raw <= blackjackTarget && got != raw {
					t.Fatalf("hand %v: reduced a non-busting hand (%d -> %d)", hand, raw, got)
				}
			}
		}
	}
}

func TestIsBust(t *testing.T) {
	if IsBust([]card.Card{card.CardSpadeA, card.CardHeartK}) {
		t.Fatalf("21 is not a bust")
	}
	if !IsBust([]card.Card{card.CardSpadeK, card.CardHeartQ, card.CardClub2}) {
		t.Fatalf("22 is a bust")
	}
}
