package game

import "math/rand"

// Dice holds the outcome of one roll of two six-sided dice.
type Dice [2]int

// Total is the number of steps the roll moves.
func (d Dice) Total() int {
	return d[0] + d[1]
}

// Roller produces dice rolls.
type Roller interface {
	Roll() Dice
}

// RandRoller rolls with a pseudo-random source. It is not safe for
// concurrent use; the Controller only calls it under its lock.
type RandRoller struct {
	rng *rand.Rand
}

func NewRandRoller(rng *rand.Rand) *RandRoller {
	return &RandRoller{rng: rng}
}

func (r *RandRoller) Roll() Dice {
	return Dice{rollDie(r.rng), rollDie(r.rng)}
}

func rollDie(rng *rand.Rand) int {
	return rng.Intn(6) + 1
}
