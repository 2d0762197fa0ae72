package game

import (
	"errors"

	"github.com/tatianab/mahardika/internal/models"
)

// Action names a request made to the Controller. Used for logging.
type Action string

const (
	ActionRoll    Action = "roll"
	ActionMove    Action = "move"
	ActionAnswer  Action = "answer"
	ActionBuy     Action = "buy"
	ActionEndTurn Action = "end_turn"
)

// Rejections. State is untouched when one of these is returned.
var (
	ErrBusy              = errors.New("a turn is already being processed")
	ErrChallengePending  = errors.New("a challenge is waiting for an answer")
	ErrWrongPhase        = errors.New("action not allowed in this phase")
	ErrNoChallenge       = errors.New("no challenge is outstanding")
	ErrNotPurchasable    = errors.New("region is not for sale")
	ErrInsufficientFunds = errors.New("not enough kepeng")
	ErrUnknownRegion     = errors.New("unknown region")
	ErrNoHistory         = errors.New("region has no history")
)

// EventType identifies events emitted by the Controller.
type EventType string

const (
	EventRolled            EventType = "rolled"
	EventPassedStart       EventType = "passed_start"
	EventAbility           EventType = "ability"
	EventLanded            EventType = "landed"
	EventChallenge         EventType = "challenge"
	EventChallengeAnswered EventType = "challenge_answered"
	EventRentPaid          EventType = "rent_paid"
	EventPurchased         EventType = "purchased"
	EventTurnPassed        EventType = "turn_passed"
)

// Event is emitted after a state change.
type Event struct {
	Type     EventType
	Player   string // acting player ID
	Target   string // other player or region ID, depending on Type
	Amount   int
	Effect   models.AbilityEffect
	Correct  bool
	Position int
}
