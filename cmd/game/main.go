package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/tatianab/mahardika/internal/config"
	"github.com/tatianab/mahardika/internal/engine"
	"github.com/tatianab/mahardika/internal/game"
	"github.com/tatianab/mahardika/internal/logs"
	"github.com/tatianab/mahardika/internal/models"
	"github.com/tatianab/mahardika/internal/tui"
)

type backend interface {
	game.Content
	game.Speaker
}

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger := logs.New("mahardika", cfg.Log)
	defer logger.Sync()

	var content backend = engine.Offline{}
	if !cfg.Offline {
		eng, err := engine.NewEngine(ctx, cfg.GeminiAPIKey, engine.Models{Text: cfg.TextModel, Speech: cfg.SpeechModel})
		if err != nil {
			fmt.Printf("Error creating engine: %v\n", err)
			os.Exit(1)
		}
		defer eng.Close()
		content = eng
	}

	roster := models.DefaultRoster()
	if cfg.Roster != "" {
		roster, err = models.ParseRoster(cfg.Roster)
		if err != nil {
			fmt.Printf("Error parsing roster: %v\n", err)
			os.Exit(1)
		}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("starting", zap.Bool("offline", cfg.Offline), zap.Int64("seed", seed))

	newGame := func(seats []models.Seat) (*game.Controller, error) {
		state, err := models.NewGameState(seats)
		if err != nil {
			return nil, err
		}
		opts := []game.Option{
			game.WithLogger(logger),
			game.WithRand(rand.New(rand.NewSource(seed))),
			game.WithMarkerTTL(cfg.MarkerTTL),
		}
		if cfg.Speech {
			opts = append(opts, game.WithSpeaker(content, func(audio []byte, c models.Character) {
				// No audio device; the clip is only recorded.
				logger.Debug("speech received", zap.String("character", string(c)), zap.Int("bytes", len(audio)))
			}))
		}
		return game.New(state, content, opts...), nil
	}

	err = tui.Run(tui.Options{
		Roster:  roster,
		NewGame: newGame,
		Delays: tui.Delays{
			Dice:   cfg.DiceDelay,
			Think:  cfg.ThinkDelay,
			Answer: cfg.AnswerDelay,
			Buy:    cfg.BuyDelay,
			Marker: cfg.MarkerTTL,
		},
	})
	if err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
