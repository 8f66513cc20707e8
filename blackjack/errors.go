package blackjack

import "errors"

var (
	ErrInvalidWager         = errors.New("wager out of range")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrDuplicateParticipant = errors.New("participant already joined")
	ErrNotHost              = errors.New("requester not authorized")
	ErrEmptyLobby           = errors.New("no participants to deal to")
	ErrCardsAlreadyDealt    = errors.New("cards already dealt")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrAlreadyDone          = errors.New("participant already busted or stood")
	ErrWrongPhase           = errors.New("operation not valid in this phase")
	ErrAlreadyResolved      = errors.New("session already resolved")
)

type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }
