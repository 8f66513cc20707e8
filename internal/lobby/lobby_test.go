package lobby

import (
	"errors"
	"sync"
	"testing"
	"time"

	"blackjack-lite/blackjack"
)

type fakeAccounts struct {
	mu       sync.Mutex
	balances map[uint64]int64
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{balances: make(map[uint64]int64)}
}

func (f *fakeAccounts) Balance(id uint64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.balances[id]; ok {
		return b
	}
	f.balances[id] = 1000
	return 1000
}

func (f *fakeAccounts) Credit(id uint64, amount int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[id] += amount
}

func (f *fakeAccounts) Debit(id uint64, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.balances[id]
	if !ok {
		cur = 1000
	}
	if cur < amount {
		return errors.New("insufficient")
	}
	f.balances[id] = cur - amount
	return nil
}

func newTestLobby() (*Lobby, *fakeAccounts) {
	acct := newFakeAccounts()
	return New(blackjack.DefaultConfig(), acct), acct
}

func TestCreateSessionOnePerTable(t *testing.T) {
	l, _ := newTestLobby()

	s, err := l.CreateSession(555, 1, 100)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if s.TableKey() != 555 || s.HostID() != 1 {
		t.Fatalf("unexpected session %d %d", s.TableKey(), s.HostID())
	}

	if _, err := l.CreateSession(555, 2, 100); !errors.Is(err, ErrSessionAlreadyActive) {
		t.Fatalf("expected ErrSessionAlreadyActive, got %v", err)
	}

	// a different table is unaffected
	if _, err := l.CreateSession(556, 2, 100); err != nil {
		t.Fatalf("create at second table failed: %v", err)
	}
	if l.ActiveCount() != 2 {
		t.Fatalf("expected 2 active sessions, got %d", l.ActiveCount())
	}
}

func TestCreateSessionRejectsBadWagerWithoutRegistering(t *testing.T) {
	l, _ := newTestLobby()
	if _, err := l.CreateSession(555, 1, 5); !errors.Is(err, blackjack.ErrInvalidWager) {
		t.Fatalf("expected ErrInvalidWager, got %v", err)
	}
	// the failed create must not occupy the table
	if _, err := l.CreateSession(555, 1, 100); err != nil {
		t.Fatalf("create after failed create: %v", err)
	}
}

func TestSessionLookup(t *testing.T) {
	l, _ := newTestLobby()
	if _, err := l.Session(555); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}

	created, err := l.CreateSession(555, 1, 100)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	got, err := l.Session(555)
	if err != nil || got != created {
		t.Fatalf("expected created session back, got %v %v", got, err)
	}
}

func TestRemoveFreesTable(t *testing.T) {
	l, _ := newTestLobby()
	s, err := l.CreateSession(555, 1, 100)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	l.Remove(555, s)
	if _, err := l.Session(555); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected table freed, got %v", err)
	}

	// removing a stale pointer must not evict the newer session
	s2, err := l.CreateSession(555, 2, 100)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	l.Remove(555, s)
	if got, err := l.Session(555); err != nil || got != s2 {
		t.Fatalf("stale remove evicted live session: %v %v", got, err)
	}
}

func TestExpireIdleAbortsLobbySessions(t *testing.T) {
	l, acct := newTestLobby()
	if _, err := l.CreateSession(555, 1, 100); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if got := acct.Balance(1); got != 900 {
		t.Fatalf("expected wager debited, got %d", got)
	}

	time.Sleep(5 * time.Millisecond)
	resolutions := l.ExpireIdle(time.Millisecond)
	if len(resolutions) != 0 {
		t.Fatalf("lobby abort produces no resolutions, got %d", len(resolutions))
	}
	if l.ActiveCount() != 0 {
		t.Fatalf("expected session removed")
	}
	if got := acct.Balance(1); got != 1000 {
		t.Fatalf("expected wager refunded, got %d", got)
	}
}

func TestExpireIdleResolvesDealtSessions(t *testing.T) {
	l, _ := newTestLobby()
	s, err := l.CreateSession(555, 1, 100)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := s.Deal(1); err != nil {
		t.Fatalf("deal failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	resolutions := l.ExpireIdle(time.Millisecond)
	if len(resolutions) != 1 {
		t.Fatalf("expected one resolution, got %d", len(resolutions))
	}
	if l.ActiveCount() != 0 {
		t.Fatalf("expected session removed")
	}
	if s.Phase() != blackjack.PhaseResolved {
		t.Fatalf("expected resolved phase, got %v", s.Phase())
	}
}

func TestExpireIdleSkipsFreshSessions(t *testing.T) {
	l, _ := newTestLobby()
	if _, err := l.CreateSession(555, 1, 100); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	l.ExpireIdle(time.Hour)
	if l.ActiveCount() != 1 {
		t.Fatalf("fresh session must survive the sweep")
	}
}
