package game

import "github.com/tatianab/mahardika/internal/models"

// AbilityKind is the rule a character modifies.
type AbilityKind int

const (
	AbilityNone AbilityKind = iota
	AbilityPassStartBonus
	AbilityRentWaiver
	// The two kinds below only exist in the character descriptions. No rule
	// reads them.
	AbilityPurchaseDiscount
	AbilityMortgageDiscount
)

// Ability is the rule modifier a character carries.
type Ability struct {
	Kind        AbilityKind
	Group       models.Group // AbilityRentWaiver: group where rent is waived
	Amount      int          // AbilityPassStartBonus: extra kepeng
	Percent     int          // discount kinds
	Effect      models.AbilityEffect
	Title       string
	Description string
}

var abilities = map[models.Character]Ability{
	models.GajahMada: {
		Kind:        AbilityPurchaseDiscount,
		Percent:     20,
		Title:       "Mahapatih",
		Description: `Diskon 20% saat membangun "Benteng Pertahanan".`,
	},
	models.Malahayati: {
		Kind:        AbilityRentWaiver,
		Group:       models.GroupTransport,
		Effect:      models.EffectShip,
		Title:       "Laskar Inong Balee",
		Description: `Bebas biaya sewa jika berhenti di petak "Dermaga/Pelabuhan".`,
	},
	models.Tunggadewi: {
		Kind:        AbilityPassStartBonus,
		Amount:      50,
		Effect:      models.EffectCrown,
		Title:       "Ratu",
		Description: "Mendapat tambahan 50 Kepeng setiap kali melewati petak GO.",
	},
	models.Baabullah: {
		Kind:        AbilityMortgageDiscount,
		Percent:     50,
		Title:       "Penguasa 72 Pulau",
		Description: "Biaya menebus properti yang digadaikan lebih murah 50%.",
	},
}

// AbilityOf returns the ability of c. Unknown characters have none.
func AbilityOf(c models.Character) Ability {
	return abilities[c]
}

// PassStartBonus returns the extra kepeng c earns on passing the start cell.
func (a Ability) PassStartBonus() int {
	if a.Kind != AbilityPassStartBonus {
		return 0
	}
	return a.Amount
}

// WaivesRent reports whether a waives rent on a region of group g.
func (a Ability) WaivesRent(g models.Group) bool {
	return a.Kind == AbilityRentWaiver && a.Group == g
}
