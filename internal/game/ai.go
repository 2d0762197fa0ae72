package game

import (
	"math/rand"

	"github.com/tatianab/mahardika/internal/models"
)

// Reserves the medium and hard tiers keep after buying.
const (
	mediumReserve = 300
	hardReserve   = 100
)

var accuracy = map[models.Difficulty]float64{
	models.Easy:   0.3,
	models.Medium: 0.6,
	models.Hard:   0.9,
}

// ShouldBuy decides whether an AI of tier d buys a region at price.
// draw is a uniform value in [0,1) and only matters for the easy tier.
func ShouldBuy(d models.Difficulty, balance, price int, draw float64) bool {
	if balance < price {
		return false
	}
	switch d {
	case models.Easy:
		return draw > 0.5
	case models.Medium:
		return balance >= price+mediumReserve
	default:
		return balance >= price+hardReserve
	}
}

// AnswersCorrectly decides whether an AI of tier d gets a challenge right.
func AnswersCorrectly(d models.Difficulty, draw float64) bool {
	a, ok := accuracy[d]
	if !ok {
		a = accuracy[models.Easy]
	}
	return draw < a
}

// Policy turns the decision rules into choices using a random source.
type Policy struct {
	rng *rand.Rand
}

func NewPolicy(rng *rand.Rand) *Policy {
	return &Policy{rng: rng}
}

// WantsToBuy reports whether p buys r. Owned or special regions are never
// considered.
func (pol *Policy) WantsToBuy(p models.Player, r models.Region) bool {
	if !r.Purchasable() {
		return false
	}
	return ShouldBuy(p.Difficulty, p.Balance, r.Price, pol.rng.Float64())
}

// Answer samples whether p answers correctly. The question is never read.
func (pol *Policy) Answer(p models.Player) bool {
	return AnswersCorrectly(p.Difficulty, pol.rng.Float64())
}

// AIStep is the next thing a computer-controlled player does.
type AIStep int

const (
	AINone AIStep = iota
	AIRoll
	AIAnswer
	AIBuy
	AIEnd
)

func (s AIStep) String() string {
	switch s {
	case AIRoll:
		return "roll"
	case AIAnswer:
		return "answer"
	case AIBuy:
		return "buy"
	case AIEnd:
		return "end"
	}
	return "none"
}
