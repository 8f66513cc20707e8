package blackjack

import "fmt"

type Config struct {
	// Wager limits (inclusive)
	MinWager int64
	MaxWager int64

	// DealerStand is the hand value the dealer stands at.
	DealerStand int

	// RNG seed (0 => time-based)
	Seed int64
}

func DefaultConfig() Config {
	return Config{
		MinWager:    10,
		MaxWager:    500,
		DealerStand: 17,
	}
}

func (c Config) validate() error {
	if c.MinWager <= 0 {
		return fmt.Errorf("MinWager must be > 0")
	}
	if c.MaxWager < c.MinWager {
		return fmt.Errorf("MaxWager must be >= MinWager")
	}
	if c.DealerStand <= 0 || c.DealerStand > blackjackTarget {
		return fmt.Errorf("invalid DealerStand: %d", c.DealerStand)
	}
	return nil
}
