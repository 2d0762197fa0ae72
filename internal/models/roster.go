package models

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MinPlayers = 2
	MaxPlayers = 4
)

// WelcomeLog is the first entry of every game log.
const WelcomeLog = "Permainan dimulai. Selamat datang di Nusantara!"

var ErrPlayerCount = errors.New("a game needs between 2 and 4 players")

// Seat describes one player before the game starts.
type Seat struct {
	Name       string
	Character  Character
	AI         bool
	Difficulty Difficulty
}

// DefaultRoster is one human against a medium AI.
func DefaultRoster() []Seat {
	return []Seat{
		{Character: GajahMada, Difficulty: Medium},
		{Name: "AI Kerajaan", Character: Malahayati, AI: true, Difficulty: Medium},
	}
}

// ParseRoster reads seats written as "name:character:human|ai:difficulty",
// separated by commas. Trailing fields may be omitted.
func ParseRoster(s string) ([]Seat, error) {
	var seats []Seat
	for _, raw := range strings.Split(s, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		fields := strings.Split(raw, ":")
		seat := Seat{Character: GajahMada, Difficulty: Medium}
		seat.Name = strings.TrimSpace(fields[0])
		if len(fields) > 1 && strings.TrimSpace(fields[1]) != "" {
			c, err := ParseCharacter(fields[1])
			if err != nil {
				return nil, err
			}
			seat.Character = c
		}
		if len(fields) > 2 {
			switch strings.ToLower(strings.TrimSpace(fields[2])) {
			case "ai", "cpu":
				seat.AI = true
			case "", "human":
			default:
				return nil, fmt.Errorf("unknown seat kind %q", fields[2])
			}
		}
		if len(fields) > 3 && strings.TrimSpace(fields[3]) != "" {
			d, err := ParseDifficulty(fields[3])
			if err != nil {
				return nil, err
			}
			seat.Difficulty = d
		}
		seats = append(seats, seat)
	}
	if len(seats) < MinPlayers || len(seats) > MaxPlayers {
		return nil, fmt.Errorf("roster %q: %w", s, ErrPlayerCount)
	}
	return seats, nil
}

// ParseCharacter accepts a full character name, its first word or its last.
func ParseCharacter(s string) (Character, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Characters {
		full := strings.ToLower(string(c))
		if s == full || s == strings.Fields(full)[0] {
			return c, nil
		}
	}
	for _, c := range Characters {
		if fields := strings.Fields(strings.ToLower(string(c))); s == fields[len(fields)-1] {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown character %q", s)
}

func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Easy, Medium, Hard:
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// NewGameState seats the roster on a fresh copy of the catalog.
func NewGameState(seats []Seat) (*GameState, error) {
	if len(seats) < MinPlayers || len(seats) > MaxPlayers {
		return nil, ErrPlayerCount
	}
	regions, err := Catalog()
	if err != nil {
		return nil, err
	}

	players := make([]Player, len(seats))
	for i, seat := range seats {
		name := seat.Name
		if name == "" {
			if seat.AI {
				name = fmt.Sprintf("AI %s %d", strings.ToUpper(string(seat.Difficulty)), i+1)
			} else {
				name = fmt.Sprintf("Pemain %d", i+1)
			}
		}
		difficulty := seat.Difficulty
		if difficulty == "" {
			difficulty = Medium
		}
		players[i] = Player{
			ID:         fmt.Sprintf("p%d", i),
			Name:       name,
			Character:  seat.Character,
			Balance:    StartingBalance,
			AI:         seat.AI,
			Difficulty: difficulty,
		}
	}

	return &GameState{
		Players: players,
		Regions: regions,
		Logs:    []string{WelcomeLog},
	}, nil
}

// CheckInvariants verifies ownership back-references and positions.
func (s *GameState) CheckInvariants() error {
	if len(s.Players) < MinPlayers || len(s.Players) > MaxPlayers {
		return ErrPlayerCount
	}
	if s.Current < 0 || s.Current >= len(s.Players) {
		return fmt.Errorf("current player index %d out of range", s.Current)
	}
	for _, r := range s.Regions {
		if r.OwnerID == "" {
			continue
		}
		if r.Price == 0 {
			return fmt.Errorf("region %q can't be bought but has owner %q", r.ID, r.OwnerID)
		}
		owner := s.Player(r.OwnerID)
		if owner == nil {
			return fmt.Errorf("region %q owned by unknown player %q", r.ID, r.OwnerID)
		}
		if owner.Bankrupt {
			return fmt.Errorf("region %q owned by bankrupt player %q", r.ID, r.OwnerID)
		}
		if !owner.Owns(r.ID) {
			return fmt.Errorf("player %q missing region %q", owner.ID, r.ID)
		}
	}
	for _, p := range s.Players {
		if p.Position < 0 || p.Position >= BoardSize {
			return fmt.Errorf("player %q at position %d", p.ID, p.Position)
		}
		for _, id := range p.Properties {
			r := s.Region(id)
			if r == nil || r.OwnerID != p.ID {
				return fmt.Errorf("player %q lists region %q it does not own", p.ID, id)
			}
		}
	}
	return nil
}

// FormatRoster writes seats in the form ParseRoster reads.
func FormatRoster(seats []Seat) string {
	parts := make([]string, len(seats))
	for i, s := range seats {
		kind := "human"
		if s.AI {
			kind = "ai"
		}
		first := strings.ToLower(strings.Fields(string(s.Character))[0])
		parts[i] = fmt.Sprintf("%s:%s:%s:%s", s.Name, first, kind, s.Difficulty)
	}
	return strings.Join(parts, ", ")
}
