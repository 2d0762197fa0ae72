package models

import (
	"errors"
	"fmt"
	"time"
)

// BoardSize is the number of cells on the track.
const BoardSize = 24

// StartingBalance is credited to every player when the game begins.
const StartingBalance = 1500

// Group is the thematic cluster a region belongs to.
type Group string

const (
	GroupSumatera  Group = "Sumatera"
	GroupJawa      Group = "Jawa"
	GroupSulawesi  Group = "Sulawesi"
	GroupMaluku    Group = "Maluku"
	GroupTransport Group = "Transportasi"
	GroupResource  Group = "Sumber Daya"
	GroupSpecial   Group = "Spesial"
)

// Character is the historical figure a player plays as.
type Character string

const (
	GajahMada  Character = "Gajah Mada"
	Malahayati Character = "Laksamana Malahayati"
	Tunggadewi Character = "Tribhuwana Tunggadewi"
	Baabullah  Character = "Sultan Baabullah"
)

// Characters lists every playable character in roster order.
var Characters = []Character{GajahMada, Malahayati, Tunggadewi, Baabullah}

// Difficulty is the skill tier of a computer-controlled player.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Region is one cell of the track.
type Region struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Group     Group  `yaml:"group"`
	Price     int    `yaml:"price"` // 0 means the region can't be bought
	Rent      int    `yaml:"rent"`
	OwnerID   string `yaml:"owner_id,omitempty"`
	Mortgaged bool   `yaml:"mortgaged,omitempty"`
	History   string `yaml:"history,omitempty"` // cached once fetched
}

// Purchasable reports whether the region is for sale right now.
func (r Region) Purchasable() bool {
	return r.Price > 0 && r.OwnerID == ""
}

// Player is one seat at the table.
type Player struct {
	ID         string     `yaml:"id"`
	Name       string     `yaml:"name"`
	Character  Character  `yaml:"character"`
	Balance    int        `yaml:"balance"`
	Position   int        `yaml:"position"`
	Properties []string   `yaml:"properties"`
	Bankrupt   bool       `yaml:"bankrupt"`
	AI         bool       `yaml:"ai"`
	Difficulty Difficulty `yaml:"difficulty,omitempty"`
}

// Owns reports whether the player holds the region.
func (p *Player) Owns(regionID string) bool {
	for _, id := range p.Properties {
		if id == regionID {
			return true
		}
	}
	return false
}

// GameState is the mutable snapshot of one game.
type GameState struct {
	Players  []Player `yaml:"players"`
	Current  int      `yaml:"current"`
	Regions  []Region `yaml:"regions"`
	Logs     []string `yaml:"logs"` // newest first
	GameOver bool     `yaml:"game_over"`
	Winner   string   `yaml:"winner,omitempty"`
}

// CurrentPlayer returns the active player.
func (s *GameState) CurrentPlayer() *Player {
	return &s.Players[s.Current]
}

// Player returns the player with the given ID, or nil.
func (s *GameState) Player(id string) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// Region returns the region with the given ID, or nil.
func (s *GameState) Region(id string) *Region {
	for i := range s.Regions {
		if s.Regions[i].ID == id {
			return &s.Regions[i]
		}
	}
	return nil
}

// Log prepends an entry to the event log.
func (s *GameState) Log(entry string) {
	s.Logs = append([]string{entry}, s.Logs...)
}

// Clone returns a deep copy of the state.
func (s *GameState) Clone() GameState {
	out := *s
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		p.Properties = append([]string(nil), p.Properties...)
		out.Players[i] = p
	}
	out.Regions = append([]Region(nil), s.Regions...)
	out.Logs = append([]string(nil), s.Logs...)
	return out
}

// Challenge is a multiple-choice trivia prompt.
type Challenge struct {
	Question string   `yaml:"question" json:"question"`
	Answer   string   `yaml:"answer" json:"answer"`
	Options  []string `yaml:"options" json:"options"`
}

// IsCorrect reports whether option matches the correct answer.
func (c Challenge) IsCorrect(option string) bool {
	return option == c.Answer
}

// PendingChallenge links an outstanding challenge to the rent it gates.
type PendingChallenge struct {
	Challenge Challenge
	Rent      int
	OwnerID   string
}

// AbilityEffect tags the visual hint shown when an ability fires.
type AbilityEffect string

const (
	EffectCrown AbilityEffect = "crown" // pass-start bonus
	EffectShip  AbilityEffect = "ship"  // rent waiver
)

// AbilityMarker is a display-only record of a recently fired ability.
type AbilityMarker struct {
	PlayerID  string
	Effect    AbilityEffect
	ExpiresAt time.Time
}

// Active reports whether the marker should still be shown at now.
func (m *AbilityMarker) Active(now time.Time) bool {
	return m != nil && now.Before(m.ExpiresAt)
}

// Validate checks that the challenge can be asked.
func (c Challenge) Validate() error {
	if c.Question == "" || c.Answer == "" {
		return errors.New("challenge has no question or answer")
	}
	for _, o := range c.Options {
		if o == c.Answer {
			return nil
		}
	}
	return fmt.Errorf("challenge options %v do not include answer %q", c.Options, c.Answer)
}
