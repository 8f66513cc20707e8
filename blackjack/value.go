package blackjack

import "blackjack-lite/card"

// HandValue returns the blackjack value of a hand. Aces count 11 until the
// total busts, then demote to 1 one at a time.
func HandValue(hand []card.Card) int {
	sum := 0
	aces := 0
	for _, c := range hand {
		sum += c.PipValue()
		if c.IsAce() {
			aces++
		}
	}
	for sum > blackjackTarget && aces > 0 {
		sum -= 10
		aces--
	}
	return sum
}

// IsBust reports whether a hand is dead.
func IsBust(hand []card.Card) bool {
	return HandValue(hand) > blackjackTarget
}
