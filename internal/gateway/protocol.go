package gateway

import (
	"errors"

	"blackjack-lite/blackjack"
	"blackjack-lite/card"
	"blackjack-lite/internal/ledger"
	"blackjack-lite/internal/lobby"
)

// clientMessage is the single command envelope clients send. Cmd selects
// the operation; the remaining fields are read per command.
type clientMessage struct {
	Cmd string `json:"cmd"`

	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`

	TableKey uint64 `json:"table_key,omitempty"`
	Wager    int64  `json:"wager,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type serverMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`

	PlayerID uint64 `json:"player_id,omitempty"`
	Username string `json:"username,omitempty"`
	Token    string `json:"token,omitempty"`
	Balance  *int64 `json:"balance,omitempty"`

	TableKey  uint64 `json:"table_key,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	HostID    uint64 `json:"host_id,omitempty"`
	Pot       int64  `json:"pot,omitempty"`

	Action    string   `json:"action,omitempty"`
	Drawn     string   `json:"drawn,omitempty"`
	Hand      []string `json:"hand,omitempty"`
	HandValue int      `json:"hand_value,omitempty"`
	Status    string   `json:"status,omitempty"`

	DealerUpCard string   `json:"dealer_up_card,omitempty"`
	DealerValue  int      `json:"dealer_value,omitempty"`
	DealerHand   []string `json:"dealer_hand,omitempty"`

	Participants []participantView `json:"participants,omitempty"`
	Results      []resultView      `json:"results,omitempty"`
	Leaderboard  []leaderboardView `json:"leaderboard,omitempty"`

	Phase         string `json:"phase,omitempty"`
	ShoeRemaining int    `json:"shoe_remaining,omitempty"`
}

type participantView struct {
	PlayerID  uint64   `json:"player_id"`
	Wager     int64    `json:"wager"`
	Status    string   `json:"status"`
	Hand      []string `json:"hand,omitempty"`
	HandValue int      `json:"hand_value"`
}

type resultView struct {
	PlayerID  uint64 `json:"player_id"`
	HandValue int    `json:"hand_value"`
	Wager     int64  `json:"wager"`
	Outcome   string `json:"outcome"`
	Payout    int64  `json:"payout"`
}

type leaderboardView struct {
	Rank     int    `json:"rank"`
	PlayerID uint64 `json:"player_id"`
	Balance  int64  `json:"balance"`
}

func cardString(c card.Card) string {
	if c == card.CardInvalid {
		return ""
	}
	return c.String()
}

func snapshotMessage(snap blackjack.Snapshot) serverMessage {
	msg := serverMessage{
		Type:          "snapshot",
		SessionID:     snap.SessionID,
		TableKey:      snap.TableKey,
		HostID:        snap.HostID,
		Phase:         blackjack.PhaseDictionary[snap.Phase],
		Pot:           snap.Pot,
		DealerUpCard:  cardString(snap.DealerUpCard),
		DealerValue:   snap.DealerValue,
		ShoeRemaining: snap.ShoeRemaining,
	}
	if len(snap.DealerHand) > 0 {
		msg.DealerHand = card.Strings(snap.DealerHand)
	}
	for _, p := range snap.Participants {
		msg.Participants = append(msg.Participants, participantView{
			PlayerID:  p.ID,
			Wager:     p.Wager,
			Status:    blackjack.StatusDictionary[p.Status],
			Hand:      card.Strings(p.HandCards),
			HandValue: p.HandValue,
		})
	}
	return msg
}

func resolutionMessage(res *blackjack.ResolutionResult) serverMessage {
	msg := serverMessage{
		Type:        "resolved",
		SessionID:   res.SessionID,
		TableKey:    res.TableKey,
		DealerHand:  card.Strings(res.DealerHand),
		DealerValue: res.DealerValue,
	}
	for _, r := range res.Results {
		msg.Results = append(msg.Results, resultView{
			PlayerID:  r.ID,
			HandValue: r.HandValue,
			Wager:     r.Wager,
			Outcome:   blackjack.OutcomeDictionary[r.Outcome],
			Payout:    r.Payout,
		})
	}
	return msg
}

// errorCode maps domain errors to stable protocol identifiers.
func errorCode(err error) string {
	switch {
	case errors.Is(err, blackjack.ErrInvalidWager):
		return "invalid_wager"
	case errors.Is(err, blackjack.ErrInsufficientBalance), errors.Is(err, ledger.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, blackjack.ErrDuplicateParticipant):
		return "duplicate_participant"
	case errors.Is(err, blackjack.ErrNotHost):
		return "not_host"
	case errors.Is(err, blackjack.ErrEmptyLobby):
		return "empty_lobby"
	case errors.Is(err, blackjack.ErrCardsAlreadyDealt):
		return "cards_already_dealt"
	case errors.Is(err, blackjack.ErrParticipantNotFound):
		return "participant_not_found"
	case errors.Is(err, blackjack.ErrAlreadyDone):
		return "already_done"
	case errors.Is(err, blackjack.ErrWrongPhase):
		return "wrong_phase"
	case errors.Is(err, blackjack.ErrAlreadyResolved):
		return "already_resolved"
	case errors.Is(err, lobby.ErrSessionAlreadyActive):
		return "session_already_active"
	case errors.Is(err, lobby.ErrNoActiveSession):
		return "no_active_session"
	case errors.Is(err, ledger.ErrStillSolvent):
		return "still_solvent"
	default:
		return "internal"
	}
}
