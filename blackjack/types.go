package blackjack

import "blackjack-lite/card"

// blackjackTarget is the bust boundary: a hand above it is dead.
const blackjackTarget = 21

// Phase is the session lifecycle stage.
type Phase byte

const (
	PhaseLobby     Phase = 0
	PhaseDealt     Phase = 1
	PhaseResolving Phase = 2
	PhaseResolved  Phase = 3
)

var PhaseDictionary = map[Phase]string{
	PhaseLobby:     "lobby",
	PhaseDealt:     "dealt",
	PhaseResolving: "resolving",
	PhaseResolved:  "resolved",
}

// ActionType is a participant decision: 1-HIT 2-STAND
type ActionType byte

const (
	ActionNone  ActionType = 0
	ActionHit   ActionType = 1
	ActionStand ActionType = 2
)

var ActionTypeDictionary = map[ActionType]string{
	ActionNone:  "NONE",
	ActionHit:   "HIT",
	ActionStand: "STAND",
}

// Status tracks a participant within one session. A participant is done
// iff the status is not Active.
type Status byte

const (
	StatusActive Status = 0
	StatusBusted Status = 1
	StatusStood  Status = 2
)

var StatusDictionary = map[Status]string{
	StatusActive: "active",
	StatusBusted: "busted",
	StatusStood:  "stood",
}

// Outcome is a participant's result at resolution.
type Outcome byte

const (
	OutcomeBusted Outcome = 0
	OutcomeWin    Outcome = 1
	OutcomePush   Outcome = 2
	OutcomeLoss   Outcome = 3
)

var OutcomeDictionary = map[Outcome]string{
	OutcomeBusted: "busted",
	OutcomeWin:    "win",
	OutcomePush:   "push",
	OutcomeLoss:   "loss",
}

var BlackjackCards = []card.Card{
	card.CardSpadeA, card.CardSpade2, card.CardSpade3, card.CardSpade4, card.CardSpade5, card.CardSpade6,
	card.CardSpade7, card.CardSpade8, card.CardSpade9, card.CardSpadeT, card.CardSpadeJ, card.CardSpadeQ, card.CardSpadeK,
	card.CardHeartA, card.CardHeart2, card.CardHeart3, card.CardHeart4, card.CardHeart5, card.CardHeart6,
	card.CardHeart7, card.CardHeart8, card.CardHeart9, card.CardHeartT, card.CardHeartJ, card.CardHeartQ, card.CardHeartK,
	card.CardClubA, card.CardClub2, card.CardClub3, card.CardClub4, card.CardClub5, card.CardClub6,
	card.CardClub7, card.CardClub8, card.CardClub9, card.CardClubT, card.CardClubJ, card.CardClubQ, card.CardClubK,
	card.CardDiamondA, card.CardDiamond2, card.CardDiamond3, card.CardDiamond4, card.CardDiamond5, card.CardDiamond6,
	card.CardDiamond7, card.CardDiamond8, card.CardDiamond9, card.CardDiamondT, card.CardDiamondJ, card.CardDiamondQ, card.CardDiamondK,
}
