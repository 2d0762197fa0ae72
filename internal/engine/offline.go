package engine

import (
	"context"
	"errors"

	"github.com/tatianab/mahardika/internal/game"
	"github.com/tatianab/mahardika/internal/models"
)

// ErrOffline is returned by every Offline method.
var ErrOffline = errors.New("content generation is disabled")

// Offline generates nothing, so the game plays on its fixed fallbacks.
type Offline struct{}

func (Offline) Narrate(context.Context, game.NarrationRequest) (string, error) {
	return "", ErrOffline
}

func (Offline) Challenge(context.Context) (models.Challenge, error) {
	return models.Challenge{}, ErrOffline
}

func (Offline) RegionHistory(context.Context, string) (string, error) {
	return "", ErrOffline
}

func (Offline) Speak(context.Context, string, models.Character) ([]byte, error) {
	return nil, ErrOffline
}
