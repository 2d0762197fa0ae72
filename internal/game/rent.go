package game

import "github.com/tatianab/mahardika/internal/models"

// SettleRent computes what a payer owes on an opponent's region of group g
// with base rent. The first rule that applies wins:
//
//   - the payer's ability waives rent on g: 0, waived is true
//   - the challenge was answered correctly: half the rent, rounded down
//   - otherwise: the rent plus a 10% surcharge, rounded down
func SettleRent(base int, payer models.Character, g models.Group, correct bool) (amount int, waived bool) {
	if AbilityOf(payer).WaivesRent(g) {
		return 0, true
	}
	if correct {
		return base / 2, false
	}
	return base * 11 / 10, false
}

// transferRent moves amount from payer to owner. Balances may go negative.
func transferRent(payer, owner *models.Player, amount int) {
	payer.Balance -= amount
	owner.Balance += amount
}
