package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"blackjack-lite/blackjack"
)

// Config is the full server configuration, loaded from a TOML file
// overlaid on defaults. Every key is optional.
type Config struct {
	ListenAddr string `toml:"listen_addr"`

	Game   GameConfig   `toml:"game"`
	Ledger LedgerConfig `toml:"ledger"`
}

type GameConfig struct {
	MinWager    int64 `toml:"min_wager"`
	MaxWager    int64 `toml:"max_wager"`
	DealerStand int   `toml:"dealer_stand"`
	Seed        int64 `toml:"seed"`

	// IdleTimeoutSec ends sessions with no activity for this long.
	// Zero disables the sweep.
	IdleTimeoutSec int `toml:"idle_timeout_sec"`
}

type LedgerConfig struct {
	// Mode selects the snapshot store: file, memory, sqlite or postgres.
	Mode string `toml:"mode"`
	Path string `toml:"path"`
	DSN  string `toml:"dsn"`

	DefaultBalance  int64 `toml:"default_balance"`
	FlushDebounceMs int   `toml:"flush_debounce_ms"`
}

func Default() Config {
	game := blackjack.DefaultConfig()
	return Config{
		ListenAddr: ":8090",
		Game: GameConfig{
			MinWager:       game.MinWager,
			MaxWager:       game.MaxWager,
			DealerStand:    game.DealerStand,
			IdleTimeoutSec: 600,
		},
		Ledger: LedgerConfig{
			Mode:            "file",
			Path:            "data/balances.json",
			FlushDebounceMs: 500,
		},
	}
}

// Load reads the TOML file at path over the defaults. An empty path
// returns the defaults untouched.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, cfg.validate()
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("load config: listen_addr is empty")
	}
	if c.Game.MinWager <= 0 || c.Game.MaxWager < c.Game.MinWager {
		return fmt.Errorf("load config: invalid wager range %d..%d", c.Game.MinWager, c.Game.MaxWager)
	}
	if c.Game.DealerStand < 2 || c.Game.DealerStand > 21 {
		return fmt.Errorf("load config: invalid dealer_stand %d", c.Game.DealerStand)
	}
	if c.Ledger.FlushDebounceMs < 0 {
		return fmt.Errorf("load config: negative flush_debounce_ms")
	}
	mode := strings.ToLower(strings.TrimSpace(c.Ledger.Mode))
	if mode == "postgres" && strings.TrimSpace(c.Ledger.DSN) == "" {
		return fmt.Errorf("load config: ledger dsn is required for postgres mode")
	}
	return nil
}

// GameRules converts the game section to the session package's config.
func (c Config) GameRules() blackjack.Config {
	return blackjack.Config{
		MinWager:    c.Game.MinWager,
		MaxWager:    c.Game.MaxWager,
		DealerStand: c.Game.DealerStand,
		Seed:        c.Game.Seed,
	}
}

func (c Config) IdleTimeout() time.Duration {
	return time.Duration(c.Game.IdleTimeoutSec) * time.Second
}

func (c Config) FlushDebounce() time.Duration {
	return time.Duration(c.Ledger.FlushDebounceMs) * time.Millisecond
}
