package ledger

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"
)

const (
	// DefaultBalance is granted to a player the first time the ledger
	// sees them.
	DefaultBalance = 1000
	// ReplenishBalance is what a fully broke player gets back.
	ReplenishBalance = 100

	defaultFlushDebounce = 500 * time.Millisecond
	closeFlushTimeout    = 5 * time.Second
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrStillSolvent        = errors.New("balance is not empty")
)

type Options struct {
	// DefaultBalance overrides DefaultBalance when positive.
	DefaultBalance int64
	// FlushDebounce is how long the flusher waits after a write signal
	// before persisting, letting a burst of writes coalesce into one
	// physical write.
	FlushDebounce time.Duration
}

// Ledger holds every player's chip balance in memory and persists the
// whole table through a Store. Reads and writes are served from memory,
// so a read immediately after a write always sees the new value even
// while the flush is still pending. A dedicated goroutine performs all
// physical writes; mutations only signal it.
type Ledger struct {
	store    Store
	defaults int64
	debounce time.Duration

	mu       sync.Mutex
	balances map[uint64]int64
	order    []uint64 // first-seen order, leaderboard tie-break

	flushCh   chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New loads the snapshot from the store and starts the flush worker.
// A missing snapshot starts an empty ledger and persists it right away;
// a corrupt one is logged and likewise treated as empty.
func New(store Store, opts Options) (*Ledger, error) {
	if store == nil {
		store = NewMemoryStore()
	}
	if opts.DefaultBalance <= 0 {
		opts.DefaultBalance = DefaultBalance
	}
	if opts.FlushDebounce <= 0 {
		opts.FlushDebounce = defaultFlushDebounce
	}

	l := &Ledger{
		store:    store,
		defaults: opts.DefaultBalance,
		debounce: opts.FlushDebounce,
		balances: make(map[uint64]int64),
		flushCh:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap, err := store.Load(ctx)
	switch {
	case errors.Is(err, ErrCorruptSnapshot):
		log.Printf("[Ledger] snapshot unreadable, starting empty: %v", err)
		if err := store.Save(ctx, &Snapshot{}); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case snap == nil:
		if err := store.Save(ctx, &Snapshot{}); err != nil {
			return nil, err
		}
	default:
		for _, e := range snap.Entries() {
			l.balances[e.ID] = e.Balance
			l.order = append(l.order, e.ID)
		}
	}

	l.wg.Add(1)
	go l.flushLoop()
	return l, nil
}

// Balance returns the player's current balance. A player the ledger has
// never seen is granted the default balance, and that grant is recorded
// like any other write.
func (l *Ledger) Balance(id uint64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balanceLocked(id)
}

// Credit adds amount to the player's balance. A credit that leaves the
// balance unchanged schedules no flush.
func (l *Ledger) Credit(id uint64, amount int64) {
	if amount < 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	cur := l.balanceLocked(id)
	if amount == 0 {
		return
	}
	l.balances[id] = cur + amount
	l.scheduleFlushLocked()
}

// Debit removes amount from the player's balance, failing without any
// change when the balance does not cover it. Debit is the authoritative
// sufficiency check: callers should attempt it rather than pre-check
// with Balance.
func (l *Ledger) Debit(id uint64, amount int64) error {
	if amount < 0 {
		return ErrInsufficientBalance
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	cur := l.balanceLocked(id)
	if cur < amount {
		return ErrInsufficientBalance
	}
	if amount == 0 {
		return nil
	}
	l.balances[id] = cur - amount
	l.scheduleFlushLocked()
	return nil
}

// Replenish grants the broke player a fresh small balance. It fails
// with ErrStillSolvent unless the balance is exactly zero.
func (l *Ledger) Replenish(id uint64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balanceLocked(id) != 0 {
		return 0, ErrStillSolvent
	}
	l.balances[id] = ReplenishBalance
	l.scheduleFlushLocked()
	return ReplenishBalance, nil
}

// Leaderboard returns up to n players ordered by balance descending.
// Players with equal balances keep their first-seen order.
func (l *Ledger) Leaderboard(n int) []Entry {
	l.mu.Lock()
	entries := make([]Entry, 0, len(l.order))
	for _, id := range l.order {
		entries = append(entries, Entry{ID: id, Balance: l.balances[id]})
	}
	l.mu.Unlock()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Balance > entries[j].Balance
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Flush persists the current snapshot synchronously.
func (l *Ledger) Flush(ctx context.Context) error {
	l.mu.Lock()
	snap := l.snapshotLocked()
	l.mu.Unlock()
	return l.store.Save(ctx, snap)
}

// Close stops the flush worker, performs a final synchronous flush and
// closes the store.
func (l *Ledger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.done)
		l.wg.Wait()

		ctx, cancel := context.WithTimeout(context.Background(), closeFlushTimeout)
		defer cancel()
		if ferr := l.Flush(ctx); ferr != nil {
			log.Printf("[Ledger] final flush failed: %v", ferr)
			err = ferr
		}
		if cerr := l.store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	})
	return err
}

func (l *Ledger) balanceLocked(id uint64) int64 {
	if b, ok := l.balances[id]; ok {
		return b
	}
	l.balances[id] = l.defaults
	l.order = append(l.order, id)
	l.scheduleFlushLocked()
	return l.defaults
}

func (l *Ledger) snapshotLocked() *Snapshot {
	snap := &Snapshot{}
	for _, id := range l.order {
		snap.Append(id, l.balances[id])
	}
	return snap
}

func (l *Ledger) scheduleFlushLocked() {
	select {
	case l.flushCh <- struct{}{}:
	default:
	}
}

func (l *Ledger) flushLoop() {
	defer l.wg.Done()
	for {
		select {
		case <-l.done:
			return
		case <-l.flushCh:
		}

		timer := time.NewTimer(l.debounce)
		select {
		case <-l.done:
			timer.Stop()
			// Close takes over with the final flush.
			return
		case <-timer.C:
		}

		if err := l.Flush(context.Background()); err != nil {
			log.Printf("[Ledger] flush failed: %v", err)
		}
	}
}
