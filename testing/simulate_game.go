package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/tatianab/mahardika/internal/config"
	"github.com/tatianab/mahardika/internal/engine"
	"github.com/tatianab/mahardika/internal/game"
	"github.com/tatianab/mahardika/internal/logs"
	"github.com/tatianab/mahardika/internal/models"
)

// simulate_game plays a full game between AI seats without the UI.
func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := logs.New("simulate", cfg.Log)
	defer logger.Sync()

	var content game.Content = engine.Offline{}
	if !cfg.Offline {
		eng, err := engine.NewEngine(ctx, cfg.GeminiAPIKey, engine.Models{Text: cfg.TextModel, Speech: cfg.SpeechModel})
		if err != nil {
			log.Fatalf("Failed to create engine: %v", err)
		}
		defer eng.Close()
		content = eng
	}

	seats := []models.Seat{
		{Character: models.GajahMada, AI: true, Difficulty: models.Easy},
		{Character: models.Malahayati, AI: true, Difficulty: models.Medium},
		{Character: models.Tunggadewi, AI: true, Difficulty: models.Hard},
		{Character: models.Baabullah, AI: true, Difficulty: models.Medium},
	}
	if cfg.Roster != "" {
		if seats, err = models.ParseRoster(cfg.Roster); err != nil {
			log.Fatalf("Failed to parse roster: %v", err)
		}
		for i := range seats {
			seats[i].AI = true
		}
	}

	state, err := models.NewGameState(seats)
	if err != nil {
		log.Fatalf("Failed to create game: %v", err)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	ctrl := game.New(state, content,
		game.WithLogger(logger),
		game.WithRand(rand.New(rand.NewSource(seed))),
	)
	ctrl.Start()
	fmt.Printf("--- Game %s (seed %d) ---\n", ctrl.ID(), seed)

	for turn := 1; turn <= cfg.SimTurns; turn++ {
		snap := ctrl.Snapshot()
		p := snap.State.CurrentPlayer()
		fmt.Printf("\n--- Turn %d: %s (%s) ---\n", turn, p.Name, p.Character)
		if err := playTurn(ctx, ctrl); err != nil {
			logger.Error("turn failed", zap.Int("turn", turn), zap.Error(err))
			fmt.Printf("Error playing turn: %v\n", err)
			break
		}
	}

	final := ctrl.Snapshot().State
	if err := final.CheckInvariants(); err != nil {
		fmt.Printf("INVARIANT VIOLATED: %v\n", err)
	}
	fmt.Println("\n--- Final standings ---")
	for _, p := range final.Players {
		fmt.Printf("%-16s %6d Kepeng  %d wilayah  %v\n", p.Name, p.Balance, len(p.Properties), p.Properties)
	}
}

// playTurn drives the current seat until its turn passes.
func playTurn(ctx context.Context, ctrl *game.Controller) error {
	for {
		var events []game.Event
		var err error

		step := ctrl.PlanAI()
		switch step {
		case game.AIRoll:
			var d game.Dice
			if d, err = ctrl.Roll(); err != nil {
				return err
			}
			fmt.Printf("Dadu: %d + %d\n", d[0], d[1])
			events, err = ctrl.Move(ctx)
			if err == nil {
				fmt.Printf("Narasi: %s\n", ctrl.Snapshot().Narration)
			}
		case game.AIAnswer:
			events, err = ctrl.AutoAnswer()
		case game.AIBuy:
			events, err = ctrl.Buy()
		case game.AIEnd:
			_, err = ctrl.EndTurn()
			return err
		default:
			return fmt.Errorf("no AI step available in phase %s", ctrl.Snapshot().Phase)
		}
		if err != nil {
			return err
		}
		for _, e := range events {
			printEvent(e)
		}
	}
}

func printEvent(e game.Event) {
	switch e.Type {
	case game.EventPassedStart:
		fmt.Printf("Melewati Gerbang Nusantara: +%d\n", e.Amount)
	case game.EventAbility:
		fmt.Printf("Kemampuan aktif (%s): %d\n", e.Effect, e.Amount)
	case game.EventLanded:
		fmt.Printf("Mendarat di petak %d (%s)\n", e.Position, e.Target)
	case game.EventChallenge:
		fmt.Printf("Tantangan! Sewa %d milik %s\n", e.Amount, e.Target)
	case game.EventChallengeAnswered:
		fmt.Printf("Jawaban benar: %v\n", e.Correct)
	case game.EventRentPaid:
		fmt.Printf("Sewa dibayar: %d kepada %s\n", e.Amount, e.Target)
	case game.EventPurchased:
		fmt.Printf("MEMBELI: %s seharga %d\n", e.Target, e.Amount)
	}
}
