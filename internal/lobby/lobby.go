package lobby

import (
	"errors"
	"log"
	"sync"
	"time"

	"blackjack-lite/blackjack"
)

var (
	ErrSessionAlreadyActive = errors.New("table already has an active session")
	ErrNoActiveSession      = errors.New("no active session at this table")
)

// Lobby is the session registry. Each table key holds at most one live
// session; a session leaves the registry the moment it resolves or
// aborts, freeing the key for the next game.
type Lobby struct {
	mu       sync.RWMutex
	sessions map[uint64]*blackjack.Session
	cfg      blackjack.Config
	acct     blackjack.Accounts
}

func New(cfg blackjack.Config, acct blackjack.Accounts) *Lobby {
	return &Lobby{
		sessions: make(map[uint64]*blackjack.Session),
		cfg:      cfg,
		acct:     acct,
	}
}

// CreateSession starts a new session at the table, hosted and joined by
// the creator.
func (l *Lobby) CreateSession(tableKey, hostID uint64, wager int64) (*blackjack.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.sessions[tableKey]; exists {
		return nil, ErrSessionAlreadyActive
	}

	s, err := blackjack.NewSession(tableKey, hostID, wager, l.cfg, l.acct)
	if err != nil {
		return nil, err
	}
	l.sessions[tableKey] = s
	log.Printf("[Lobby] session %s opened at table %d by player %d", s.ID(), tableKey, hostID)
	return s, nil
}

// Session returns the live session at the table.
func (l *Lobby) Session(tableKey uint64) (*blackjack.Session, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.sessions[tableKey]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return s, nil
}

// Remove drops the table's session from the registry if it is the given
// one. Callers remove a session after it resolves or aborts; the guard
// keeps a racing removal from evicting a newer session at the same key.
func (l *Lobby) Remove(tableKey uint64, s *blackjack.Session) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cur, ok := l.sessions[tableKey]; ok && cur == s {
		delete(l.sessions, tableKey)
		log.Printf("[Lobby] session %s closed at table %d", s.ID(), tableKey)
	}
}

// ActiveCount returns the number of live sessions.
func (l *Lobby) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sessions)
}

// ExpireIdle ends every session idle for longer than maxIdle: lobby
// sessions are aborted with wagers refunded, dealt sessions are resolved
// as if the host ended them. It returns the resolutions of the dealt
// sessions it ended.
func (l *Lobby) ExpireIdle(maxIdle time.Duration) []*blackjack.ResolutionResult {
	if maxIdle <= 0 {
		return nil
	}
	cutoff := time.Now().Add(-maxIdle)

	l.mu.RLock()
	stale := make([]*blackjack.Session, 0)
	for _, s := range l.sessions {
		if s.LastActivity().Before(cutoff) {
			stale = append(stale, s)
		}
	}
	l.mu.RUnlock()

	var resolutions []*blackjack.ResolutionResult
	for _, s := range stale {
		switch s.Phase() {
		case blackjack.PhaseLobby:
			if err := s.Abort(); err == nil {
				log.Printf("[Lobby] aborted idle session %s at table %d", s.ID(), s.TableKey())
				l.Remove(s.TableKey(), s)
			}
		case blackjack.PhaseDealt:
			res, err := s.ForceEnd(s.HostID())
			if err != nil {
				continue
			}
			log.Printf("[Lobby] resolved idle session %s at table %d", s.ID(), s.TableKey())
			l.Remove(s.TableKey(), s)
			resolutions = append(resolutions, res)
		default:
			// already resolved, just drop it
			l.Remove(s.TableKey(), s)
		}
	}
	return resolutions
}
