package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type Entry struct {
	ID      uint64
	Balance int64
}

// Snapshot is the wholesale durable form of the ledger: a single JSON
// object mapping decimal player IDs to non-negative balances. Key order is
// the first-seen order, which leaderboard tie-breaking depends on, so the
// codec preserves it instead of going through a Go map.
type Snapshot struct {
	entries []Entry
}

func (s *Snapshot) Append(id uint64, balance int64) {
	s.entries = append(s.entries, Entry{ID: id, Balance: balance})
}

func (s *Snapshot) Entries() []Entry { return s.entries }

func (s *Snapshot) Len() int { return len(s.entries) }

func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `"%d":%d`, e.ID, e.Balance)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected top-level object, got %v", tok)
	}

	var entries []Entry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid player id %q", key)
		}

		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		num, ok := valTok.(json.Number)
		if !ok {
			return fmt.Errorf("invalid balance for player %q", key)
		}
		bal, err := num.Int64()
		if err != nil {
			return fmt.Errorf("invalid balance for player %q: %v", key, err)
		}
		if bal < 0 {
			return fmt.Errorf("negative balance for player %q", key)
		}
		entries = append(entries, Entry{ID: id, Balance: bal})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	s.entries = entries
	return nil
}
