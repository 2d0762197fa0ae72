package game

import (
	"context"

	"github.com/tatianab/mahardika/internal/models"
)

// Fixed values used whenever a collaborator fails.
const (
	FallbackNarration = "Kejadian ini akan dicatat dalam sejarah."
	FallbackHistory   = "Sejarah wilayah ini tersimpan rapat dalam prasasti kuno."
)

// FallbackChallenge is asked when no challenge could be generated.
func FallbackChallenge() models.Challenge {
	return models.Challenge{
		Question: "Siapa raja yang membawa Majapahit ke puncak kejayaan?",
		Answer:   "Hayam Wuruk",
		Options:  []string{"Hayam Wuruk", "Raden Wijaya", "Gajah Mada", "Ken Arok"},
	}
}

// Lines spoken at fixed moments of the game.
const (
	greetingLine = "Salam dari kerajaan kami."
	turnLine     = "Giliran saya untuk melangkah."
)

// NarrationRequest describes the landing to narrate.
type NarrationRequest struct {
	Player    string
	Character models.Character
	Region    string
	Event     string
}

// Content generates the text the game shows. Any method may fail; the
// Controller falls back to fixed values.
type Content interface {
	Narrate(ctx context.Context, req NarrationRequest) (string, error)
	Challenge(ctx context.Context) (models.Challenge, error)
	RegionHistory(ctx context.Context, region string) (string, error)
}

// Speaker synthesizes speech for a line. Returning nil audio is fine.
type Speaker interface {
	Speak(ctx context.Context, text string, c models.Character) ([]byte, error)
}

// SpeechSink receives synthesized audio.
type SpeechSink func(audio []byte, c models.Character)
