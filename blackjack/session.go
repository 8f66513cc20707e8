package blackjack

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"blackjack-lite/card"

	"github.com/google/uuid"
)

// Accounts is the slice of the chip ledger a session needs: wager debits at
// join time and payout credits at resolution. Implementations must be safe
// for concurrent use across sessions.
type Accounts interface {
	Balance(id uint64) int64
	Credit(id uint64, amount int64)
	// Debit fails when the balance cannot cover the amount; the debit is the
	// authoritative sufficiency check, not a prior Balance read.
	Debit(id uint64, amount int64) error
}

type Session struct {
	id       string
	tableKey uint64
	hostID   uint64

	cfg  Config
	acct Accounts
	rng  *rand.Rand

	mu           sync.Mutex
	phase        Phase
	participants []*Participant
	dealerHand   card.CardList
	shoe         *Shoe
	pot          int64
	lastActivity time.Time
	resolution   *ResolutionResult
}

type DealResult struct {
	DealerUpCard  card.Card
	DealerUpValue int
	Participants  int
}

type ActResult struct {
	ParticipantID uint64
	Action        ActionType
	// Drawn is CardInvalid for a stand, and also for a hit against an empty
	// shoe (a documented no-op).
	Drawn     card.Card
	HandValue int
	Status    Status
	// Resolution is non-nil when this action completed the session.
	Resolution *ResolutionResult
}

type ParticipantResult struct {
	ID        uint64
	HandValue int
	Wager     int64
	Outcome   Outcome
	Payout    int64
}

type ResolutionResult struct {
	SessionID   string
	TableKey    uint64
	DealerHand  []card.Card
	DealerValue int
	Results     []ParticipantResult
}

// NewSession validates the host wager, debits it, and opens a lobby with
// the host as the first participant.
func NewSession(tableKey, hostID uint64, wager int64, cfg Config, acct Accounts) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrInvalidState("accounts required")
	}
	if wager < cfg.MinWager || wager > cfg.MaxWager {
		return nil, ErrInvalidWager
	}
	if err := acct.Debit(hostID, wager); err != nil {
		return nil, ErrInsufficientBalance
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	s := &Session{
		id:           uuid.NewString(),
		tableKey:     tableKey,
		hostID:       hostID,
		cfg:          cfg,
		acct:         acct,
		rng:          rng,
		phase:        PhaseLobby,
		shoe:         newShoe(rng),
		lastActivity: time.Now(),
	}
	s.participants = append(s.participants, &Participant{ID: hostID, wager: wager})
	s.pot = wager
	return s, nil
}

func (s *Session) ID() string       { return s.id }
func (s *Session) TableKey() uint64 { return s.tableKey }
func (s *Session) HostID() uint64   { return s.hostID }

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Pot is the sum of all wagers. It is set at join time and never touched by
// resolution: payouts flow through the ledger, not the pot.
func (s *Session) Pot() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pot
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Resolution returns the settlement result, or nil before resolution.
func (s *Session) Resolution() *ResolutionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolution
}

// ParticipantIDs lists the seated participants in join order.
func (s *Session) ParticipantIDs() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint64, 0, len(s.participants))
	for _, p := range s.participants {
		ids = append(ids, p.ID)
	}
	return ids
}

// Hand returns a copy of one participant's hand and its value, for private
// rendering by the caller.
func (s *Session) Hand(id uint64) ([]card.Card, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findLocked(id)
	if p == nil {
		return nil, 0, ErrParticipantNotFound
	}
	return p.hand.Clone(), HandValue(p.hand), nil
}

// Join seats an additional participant. Valid only in the lobby.
func (s *Session) Join(id uint64, wager int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	if s.phase == PhaseDealt {
		return ErrCardsAlreadyDealt
	}
	if s.phase != PhaseLobby {
		return ErrWrongPhase
	}
	if s.findLocked(id) != nil {
		return ErrDuplicateParticipant
	}
	if wager < s.cfg.MinWager || wager > s.cfg.MaxWager {
		return ErrInvalidWager
	}
	if err := s.acct.Debit(id, wager); err != nil {
		return ErrInsufficientBalance
	}

	s.participants = append(s.participants, &Participant{ID: id, wager: wager})
	s.pot += wager
	return nil
}

// Deal is the one-way gate out of the lobby: two passes over the
// participants in join order, then two dealer cards.
func (s *Session) Deal(requesterID uint64) (*DealResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	if s.phase == PhaseDealt {
		return nil, ErrCardsAlreadyDealt
	}
	if s.phase != PhaseLobby {
		return nil, ErrWrongPhase
	}
	if requesterID != s.hostID {
		return nil, ErrNotHost
	}
	// The host auto-joins at creation, so this should not occur.
	if len(s.participants) == 0 {
		return nil, ErrEmptyLobby
	}

	for pass := 0; pass < 2; pass++ {
		for _, p := range s.participants {
			if c, ok := s.shoe.Draw(); ok {
				p.addCard(c)
			}
		}
	}
	if c, ok := s.shoe.Draw(); ok {
		s.dealerHand.Add(c)
	}
	if c, ok := s.shoe.Draw(); ok {
		s.dealerHand.Add(c)
	}

	s.phase = PhaseDealt

	res := &DealResult{Participants: len(s.participants), DealerUpCard: card.CardInvalid}
	if len(s.dealerHand) > 0 {
		res.DealerUpCard = s.dealerHand[0]
		res.DealerUpValue = HandValue(s.dealerHand[:1])
	}
	return res, nil
}

// Act applies a hit or stand for one participant. When the action leaves
// every participant done, resolution fires exactly once and its result is
// attached to the returned ActResult.
func (s *Session) Act(id uint64, action ActionType) (*ActResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	switch s.phase {
	case PhaseDealt:
	case PhaseLobby:
		return nil, ErrWrongPhase
	default:
		return nil, ErrAlreadyResolved
	}

	p := s.findLocked(id)
	if p == nil {
		return nil, ErrParticipantNotFound
	}
	if p.Done() {
		return nil, ErrAlreadyDone
	}

	res := &ActResult{ParticipantID: id, Action: action, Drawn: card.CardInvalid}

	switch action {
	case ActionHit:
		if c, ok := s.shoe.Draw(); ok {
			p.addCard(c)
			res.Drawn = c
		}
		res.HandValue = HandValue(p.hand)
		if res.HandValue > blackjackTarget {
			p.setStatus(StatusBusted)
		}
	case ActionStand:
		p.setStatus(StatusStood)
		res.HandValue = HandValue(p.hand)
	default:
		return nil, fmt.Errorf("invalid action %s", ActionTypeDictionary[action])
	}
	res.Status = p.status

	if s.allDoneLocked() {
		r, err := s.resolveLocked()
		if err != nil {
			return nil, err
		}
		res.Resolution = r
	}
	return res, nil
}

// ForceEnd resolves a session before all participants are done. Callable by
// the host or any participant, only once cards are dealt.
func (s *Session) ForceEnd(requesterID uint64) (*ResolutionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	switch s.phase {
	case PhaseDealt:
	case PhaseLobby:
		return nil, ErrWrongPhase
	default:
		return nil, ErrAlreadyResolved
	}

	if requesterID != s.hostID && s.findLocked(requesterID) == nil {
		return nil, ErrNotHost
	}
	return s.resolveLocked()
}

// Abort cancels a lobby that never dealt, refunding every wager. The
// session enters Resolved so the registry invariant holds.
func (s *Session) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseLobby {
		return ErrWrongPhase
	}
	s.phase = PhaseResolving
	for _, p := range s.participants {
		s.acct.Credit(p.ID, p.wager)
	}
	s.phase = PhaseResolved
	return nil
}

// resolveLocked runs dealer draws and payouts. The Dealt -> Resolving
// check-and-set is the idempotence barrier: with the session mutex held,
// exactly one caller can pass it, and redundant callers get
// ErrAlreadyResolved without any ledger mutation.
func (s *Session) resolveLocked() (*ResolutionResult, error) {
	if s.phase != PhaseDealt {
		return nil, ErrAlreadyResolved
	}
	s.phase = PhaseResolving

	for HandValue(s.dealerHand) < s.cfg.DealerStand {
		c, ok := s.shoe.Draw()
		if !ok {
			break
		}
		s.dealerHand.Add(c)
	}
	dealerVal := HandValue(s.dealerHand)

	out := &ResolutionResult{
		SessionID:   s.id,
		TableKey:    s.tableKey,
		DealerHand:  s.dealerHand.Clone(),
		DealerValue: dealerVal,
		Results:     make([]ParticipantResult, 0, len(s.participants)),
	}

	for _, p := range s.participants {
		pv := HandValue(p.hand)
		var outcome Outcome
		var payout int64
		switch {
		case p.status == StatusBusted:
			// Wager was forfeited at join time.
			outcome = OutcomeBusted
		case dealerVal > blackjackTarget || pv > dealerVal:
			outcome = OutcomeWin
			payout = 2 * p.wager
		case pv == dealerVal:
			outcome = OutcomePush
			payout = p.wager
		default:
			outcome = OutcomeLoss
		}
		if payout > 0 {
			s.acct.Credit(p.ID, payout)
		}
		out.Results = append(out.Results, ParticipantResult{
			ID:        p.ID,
			HandValue: pv,
			Wager:     p.wager,
			Outcome:   outcome,
			Payout:    payout,
		})
	}

	s.resolution = out
	s.phase = PhaseResolved
	return out, nil
}

func (s *Session) findLocked(id uint64) *Participant {
	for _, p := range s.participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Session) allDoneLocked() bool {
	for _, p := range s.participants {
		if !p.Done() {
			return false
		}
	}
	return true
}

func (s *Session) touchLocked() {
	s.lastActivity = time.Now()
}
