package game_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tatianab/mahardika/internal/game"
	"github.com/tatianab/mahardika/internal/models"
)

type fixedRoller struct {
	rolls []game.Dice
}

func (r *fixedRoller) Roll() game.Dice {
	d := r.rolls[0]
	if len(r.rolls) > 1 {
		r.rolls = r.rolls[1:]
	}
	return d
}

type fakeContent struct {
	mu         sync.Mutex
	fail       bool
	challenge  models.Challenge
	narrations []game.NarrationRequest
	histories  int
}

func (f *fakeContent) Narrate(ctx context.Context, req game.NarrationRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.narrations = append(f.narrations, req)
	if f.fail {
		return "", errors.New("quota exceeded")
	}
	return "Sang pemberani tiba di " + req.Region, nil
}

func (f *fakeContent) Challenge(ctx context.Context) (models.Challenge, error) {
	if f.fail {
		return models.Challenge{}, errors.New("quota exceeded")
	}
	return f.challenge, nil
}

func (f *fakeContent) RegionHistory(ctx context.Context, region string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histories++
	if f.fail {
		return "", errors.New("quota exceeded")
	}
	return region + " adalah kerajaan besar.", nil
}

var testChallenge = models.Challenge{
	Question: "Di mana pusat Kerajaan Sriwijaya?",
	Answer:   "Palembang",
	Options:  []string{"Palembang", "Jambi", "Kutai", "Banten"},
}

func newTestGame(t *testing.T, seats []models.Seat, rolls ...game.Dice) (*game.Controller, *models.GameState, *fakeContent) {
	t.Helper()
	state, err := models.NewGameState(seats)
	if err != nil {
		t.Fatalf("failed to create game state: %v", err)
	}
	content := &fakeContent{challenge: testChallenge}
	c := game.New(state, content, game.WithRoller(&fixedRoller{rolls: rolls}))
	return c, state, content
}

func twoHumans(a, b models.Character) []models.Seat {
	return []models.Seat{{Name: "Arya", Character: a}, {Name: "Sekar", Character: b}}
}

// give hands region id to the player, keeping back-references consistent.
func give(state *models.GameState, playerID, regionID string) {
	state.Region(regionID).OwnerID = playerID
	p := state.Player(playerID)
	p.Properties = append(p.Properties, regionID)
}

func rollAndMove(t *testing.T, c *game.Controller) []game.Event {
	t.Helper()
	if _, err := c.Roll(); err != nil {
		t.Fatalf("Roll() error = %v", err)
	}
	events, err := c.Move(context.Background())
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	return events
}

func hasEvent(events []game.Event, typ game.EventType) bool {
	for _, e := range events {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func TestMoveWrapsAroundStart(t *testing.T) {
	c, state, _ := newTestGame(t, twoHumans(models.GajahMada, models.Malahayati), game.Dice{1, 3})
	state.Players[0].Position = 22

	events := rollAndMove(t, c)

	p := state.Players[0]
	if p.Position != 2 {
		t.Errorf("position = %d, want 2", p.Position)
	}
	if p.Balance != models.StartingBalance+200 {
		t.Errorf("balance = %d, want %d", p.Balance, models.StartingBalance+200)
	}
	if !hasEvent(events, game.EventPassedStart) || hasEvent(events, game.EventAbility) {
		t.Errorf("unexpected events %+v", events)
	}
}

func TestMovePositions(t *testing.T) {
	tests := []struct {
		name      string
		character models.Character
		from      int
		dice      game.Dice
		wantPos   int
		wantBonus int
	}{
		{"no wrap", models.GajahMada, 0, game.Dice{3, 4}, 7, 0},
		{"exact last cell", models.GajahMada, 11, game.Dice{6, 6}, 23, 0},
		{"wrap to start", models.GajahMada, 12, game.Dice{6, 6}, 0, 200},
		{"wrap with crown", models.Tunggadewi, 20, game.Dice{2, 3}, 1, 250},
		{"crown without wrap", models.Tunggadewi, 0, game.Dice{1, 1}, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, state, _ := newTestGame(t, twoHumans(tt.character, models.Baabullah), tt.dice)
			state.Players[0].Position = tt.from

			rollAndMove(t, c)

			p := state.Players[0]
			if p.Position != tt.wantPos {
				t.Errorf("position = %d, want %d", p.Position, tt.wantPos)
			}
			if got := p.Balance - models.StartingBalance; got != tt.wantBonus {
				t.Errorf("bonus = %d, want %d", got, tt.wantBonus)
			}
		})
	}
}

func TestCrownMarkerExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	state, _ := models.NewGameState(twoHumans(models.Tunggadewi, models.GajahMada))
	state.Players[0].Position = 23
	c := game.New(state, &fakeContent{challenge: testChallenge},
		game.WithRoller(&fixedRoller{rolls: []game.Dice{{1, 1}}}),
		game.WithClock(func() time.Time { return now }),
		game.WithMarkerTTL(2*time.Second))

	events := rollAndMove(t, c)
	if !hasEvent(events, game.EventAbility) {
		t.Fatalf("expected ability event, got %+v", events)
	}
	m := c.Snapshot().Marker
	if m == nil || m.Effect != models.EffectCrown || m.PlayerID != "p0" {
		t.Fatalf("marker = %+v, want crown for p0", m)
	}

	now = now.Add(3 * time.Second)
	if m := c.Snapshot().Marker; m != nil {
		t.Errorf("marker still shown after expiry: %+v", m)
	}
}

func TestLandingPhases(t *testing.T) {
	tests := []struct {
		name    string
		target  int
		setup   func(*models.GameState)
		balance int
		want    game.Phase
	}{
		{"unowned affordable", 2, nil, 1500, game.PhaseAwaitingPlayerAction},
		{"unowned unaffordable", 2, nil, 50, game.PhaseTurnComplete},
		{"special", 8, nil, 1500, game.PhaseTurnComplete},
		{"own region", 2, func(s *models.GameState) { give(s, "p0", "samudera_pasai") }, 1500, game.PhaseTurnComplete},
		{"opponent region", 2, func(s *models.GameState) { give(s, "p1", "samudera_pasai") }, 1500, game.PhaseAwaitingChallengeAnswer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, state, _ := newTestGame(t, twoHumans(models.GajahMada, models.Baabullah), game.Dice{tt.target / 2, tt.target - tt.target/2})
			state.Players[0].Balance = tt.balance
			if tt.setup != nil {
				tt.setup(state)
			}

			rollAndMove(t, c)

			snap := c.Snapshot()
			if snap.Phase != tt.want {
				t.Errorf("phase = %s, want %s", snap.Phase, tt.want)
			}
			wantProcessing := tt.want == game.PhaseAwaitingChallengeAnswer
			if snap.Processing != wantProcessing {
				t.Errorf("processing = %v, want %v", snap.Processing, wantProcessing)
			}
			if (snap.Pending != nil) != wantProcessing {
				t.Errorf("pending = %+v", snap.Pending)
			}
			if snap.Narration == "" {
				t.Error("expected narration")
			}
		})
	}
}

func TestRentScenarios(t *testing.T) {
	tests := []struct {
		name      string
		character models.Character
		regionID  string
		target    int
		correct   bool
		want      int
	}{
		{"correct halves rent", models.GajahMada, "tidore", 14, true, 25},
		{"wrong adds surcharge", models.GajahMada, "tidore", 14, false, 55},
		{"transport waiver", models.Malahayati, "sunda_kelapa", 15, false, 0},
		{"waiver only on transport", models.Malahayati, "tidore", 14, true, 25},
		{"transport without waiver", models.Tunggadewi, "sunda_kelapa", 15, false, 27},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, state, _ := newTestGame(t, twoHumans(tt.character, models.Baabullah), game.Dice{6, 6})
			state.Players[0].Position = tt.target - 12
			give(state, "p1", tt.regionID)

			rollAndMove(t, c)
			if c.Snapshot().Pending == nil {
				t.Fatal("expected a pending challenge")
			}
			payerBefore, ownerBefore := state.Players[0].Balance, state.Players[1].Balance

			events, err := c.Answer(tt.correct)
			if err != nil {
				t.Fatalf("Answer() error = %v", err)
			}

			paid := payerBefore - state.Players[0].Balance
			got := state.Players[1].Balance - ownerBefore
			if paid != tt.want || got != tt.want {
				t.Errorf("payer paid %d, owner got %d, want %d", paid, got, tt.want)
			}
			if hasEvent(events, game.EventAbility) != (tt.want == 0) {
				t.Errorf("ability event mismatch in %+v", events)
			}
			snap := c.Snapshot()
			if snap.Pending != nil || snap.Processing || snap.Phase != game.PhaseTurnComplete {
				t.Errorf("challenge not cleared: %+v", snap)
			}
			if tt.want == 0 && (snap.Marker == nil || snap.Marker.Effect != models.EffectShip) {
				t.Errorf("marker = %+v, want ship", snap.Marker)
			}
		})
	}
}

func TestSettleRent(t *testing.T) {
	tests := []struct {
		base       int
		character  models.Character
		group      models.Group
		correct    bool
		want       int
		wantWaived bool
	}{
		{50, models.GajahMada, models.GroupMaluku, true, 25, false},
		{50, models.GajahMada, models.GroupMaluku, false, 55, false},
		{25, models.GajahMada, models.GroupTransport, true, 12, false},
		{25, models.GajahMada, models.GroupTransport, false, 27, false},
		{25, models.Malahayati, models.GroupTransport, false, 0, true},
		{25, models.Malahayati, models.GroupTransport, true, 0, true},
		{2, models.Baabullah, models.GroupSumatera, false, 2, false},
		{0, models.Tunggadewi, models.GroupResource, false, 0, false},
	}
	for _, tt := range tests {
		got, waived := game.SettleRent(tt.base, tt.character, tt.group, tt.correct)
		if got != tt.want || waived != tt.wantWaived {
			t.Errorf("SettleRent(%d, %s, %s, %v) = (%d, %v), want (%d, %v)",
				tt.base, tt.character, tt.group, tt.correct, got, waived, tt.want, tt.wantWaived)
		}
	}
}

func TestChooseOption(t *testing.T) {
	c, state, _ := newTestGame(t, twoHumans(models.GajahMada, models.Baabullah), game.Dice{6, 6})
	state.Players[0].Position = 2
	give(state, "p1", "tidore")
	rollAndMove(t, c)

	if _, err := c.Choose("Jambi"); err != nil {
		t.Fatalf("Choose() error = %v", err)
	}
	if got := state.Players[1].Balance - models.StartingBalance; got != 55 {
		t.Errorf("owner got %d, want 55", got)
	}
	if state.Logs[0] != "Arya membayar sewa 55 Kepeng kepada Sekar" {
		t.Errorf("log = %q", state.Logs[0])
	}
	if _, err := c.Choose("Palembang"); !errors.Is(err, game.ErrNoChallenge) {
		t.Errorf("second Choose() error = %v, want ErrNoChallenge", err)
	}
}

func TestBuy(t *testing.T) {
	c, state, _ := newTestGame(t, twoHumans(models.GajahMada, models.Baabullah), game.Dice{1, 1})
	if _, err := c.Buy(); !errors.Is(err, game.ErrWrongPhase) {
		t.Errorf("Buy() before rolling error = %v, want ErrWrongPhase", err)
	}

	rollAndMove(t, c)
	events, err := c.Buy()
	if err != nil {
		t.Fatalf("Buy() error = %v", err)
	}
	if !hasEvent(events, game.EventPurchased) {
		t.Errorf("expected purchase event, got %+v", events)
	}
	p := state.Players[0]
	r := state.Region("samudera_pasai")
	if p.Balance != models.StartingBalance-100 || r.OwnerID != "p0" || !p.Owns("samudera_pasai") {
		t.Errorf("purchase not applied: balance %d owner %q properties %v", p.Balance, r.OwnerID, p.Properties)
	}
	if err := state.CheckInvariants(); err != nil {
		t.Errorf("invariants: %v", err)
	}
	if _, err := c.Buy(); !errors.Is(err, game.ErrWrongPhase) {
		t.Errorf("second Buy() error = %v, want ErrWrongPhase", err)
	}
}

func TestBuyUnaffordableOrSpecial(t *testing.T) {
	c, state, _ := newTestGame(t, twoHumans(models.GajahMada, models.Baabullah), game.Dice{4, 4})
	rollAndMove(t, c)
	if _, err := c.Buy(); err == nil {
		t.Error("expected special region purchase to fail")
	}
	if state.Players[0].Balance != models.StartingBalance {
		t.Errorf("balance changed to %d", state.Players[0].Balance)
	}

	c, state, _ = newTestGame(t, twoHumans(models.GajahMada, models.Baabullah), game.Dice{6, 6})
	state.Players[0].Position = 2
	state.Players[0].Balance = 399
	rollAndMove(t, c)
	if _, err := c.Buy(); err == nil {
		t.Error("expected unaffordable purchase to fail")
	}
	if state.Region("tidore").OwnerID != "" || state.Players[0].Balance != 399 {
		t.Error("failed purchase mutated state")
	}
}

func TestGuardRejectsInterleavedActions(t *testing.T) {
	c, state, _ := newTestGame(t, twoHumans(models.GajahMada, models.Baabullah), game.Dice{6, 6})
	state.Players[0].Position = 2
	give(state, "p1", "tidore")

	if _, err := c.EndTurn(); !errors.Is(err, game.ErrWrongPhase) {
		t.Errorf("EndTurn() before roll error = %v, want ErrWrongPhase", err)
	}
	if _, err := c.Roll(); err != nil {
		t.Fatal(err)
	}
	for name, act := range map[string]func() error{
		"roll":   func() error { _, err := c.Roll(); return err },
		"buy":    func() error { _, err := c.Buy(); return err },
		"end":    func() error { _, err := c.EndTurn(); return err },
		"answer": func() error { _, err := c.Answer(true); return err },
	} {
		if err := act(); err == nil {
			t.Errorf("%s accepted while rolling", name)
		}
	}

	if _, err := c.Move(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Move(context.Background()); !errors.Is(err, game.ErrWrongPhase) {
		t.Errorf("second Move() error = %v, want ErrWrongPhase", err)
	}
	before := state.Clone()
	for name, act := range map[string]func() error{
		"roll": func() error { _, err := c.Roll(); return err },
		"buy":  func() error { _, err := c.Buy(); return err },
		"end":  func() error { _, err := c.EndTurn(); return err },
	} {
		if err := act(); !errors.Is(err, game.ErrBusy) {
			t.Errorf("%s during challenge error = %v, want ErrBusy", name, err)
		}
	}
	if state.Current != before.Current || state.Players[0].Balance != before.Players[0].Balance {
		t.Error("rejected actions mutated state")
	}

	if _, err := c.Answer(true); err != nil {
		t.Fatal(err)
	}
	if _, err := c.EndTurn(); err != nil {
		t.Errorf("EndTurn() after settlement error = %v", err)
	}
}

func TestEndTurnRotates(t *testing.T) {
	seats := []models.Seat{{Character: models.GajahMada}, {Character: models.Malahayati}, {Character: models.Tunggadewi}}
	c, state, _ := newTestGame(t, seats, game.Dice{4, 4})

	for turn := 0; turn < 4; turn++ {
		if state.Current != turn%3 {
			t.Fatalf("turn %d: current = %d", turn, state.Current)
		}
		rollAndMove(t, c)
		if _, err := c.EndTurn(); err != nil {
			t.Fatalf("EndTurn() error = %v", err)
		}
		snap := c.Snapshot()
		if snap.Phase != game.PhaseAwaitingRoll || snap.Narration != "" {
			t.Errorf("after EndTurn: phase %s narration %q", snap.Phase, snap.Narration)
		}
	}
}

func TestCollaboratorFailuresFallBack(t *testing.T) {
	c, state, content := newTestGame(t, twoHumans(models.GajahMada, models.Baabullah), game.Dice{6, 6})
	state.Players[0].Position = 2
	content.fail = true
	give(state, "p1", "tidore")

	rollAndMove(t, c)

	snap := c.Snapshot()
	if snap.Narration != game.FallbackNarration {
		t.Errorf("narration = %q, want fallback", snap.Narration)
	}
	if snap.Pending == nil || snap.Pending.Challenge.Question != game.FallbackChallenge().Question {
		t.Fatalf("pending = %+v, want fallback challenge", snap.Pending)
	}
	if snap.Pending.Rent != 50 || snap.Pending.OwnerID != "p1" {
		t.Errorf("pending = %+v", snap.Pending)
	}
}

func TestInvalidChallengeFallsBack(t *testing.T) {
	c, state, content := newTestGame(t, twoHumans(models.GajahMada, models.Baabullah), game.Dice{6, 6})
	state.Players[0].Position = 2
	content.challenge = models.Challenge{Question: "?", Answer: "x", Options: []string{"a", "b"}}
	give(state, "p1", "tidore")

	rollAndMove(t, c)

	if q := c.Snapshot().Pending.Challenge.Question; q != game.FallbackChallenge().Question {
		t.Errorf("question = %q, want fallback", q)
	}
}

func TestNarrationRequest(t *testing.T) {
	c, state, content := newTestGame(t, twoHumans(models.GajahMada, models.Baabullah), game.Dice{6, 6}, game.Dice{1, 1})
	state.Players[0].Position = 2
	give(state, "p1", "tidore")

	rollAndMove(t, c)
	if len(content.narrations) != 1 {
		t.Fatalf("narrations = %d, want 1", len(content.narrations))
	}
	req := content.narrations[0]
	if req.Player != "Arya" || req.Region != "Tidore" || req.Event != "Mendarat di wilayah milik Sekar" {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestRegionHistoryFetchedOnce(t *testing.T) {
	c, _, content := newTestGame(t, twoHumans(models.GajahMada, models.Baabullah), game.Dice{1, 1})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		text, err := c.RegionHistory(ctx, "majapahit")
		if err != nil {
			t.Fatalf("RegionHistory() error = %v", err)
		}
		if text != "Majapahit adalah kerajaan besar." {
			t.Errorf("text = %q", text)
		}
	}
	if content.histories != 1 {
		t.Errorf("history fetched %d times, want 1", content.histories)
	}
	if _, err := c.RegionHistory(ctx, "go"); !errors.Is(err, game.ErrNoHistory) {
		t.Errorf("special region error = %v, want ErrNoHistory", err)
	}
	if _, err := c.RegionHistory(ctx, "atlantis"); !errors.Is(err, game.ErrUnknownRegion) {
		t.Errorf("unknown region error = %v, want ErrUnknownRegion", err)
	}
}

func TestRegionHistoryFallbackIsCached(t *testing.T) {
	c, state, content := newTestGame(t, twoHumans(models.GajahMada, models.Baabullah), game.Dice{1, 1})
	content.fail = true

	text, err := c.RegionHistory(context.Background(), "gowa")
	if err != nil || text != game.FallbackHistory {
		t.Fatalf("RegionHistory() = %q, %v", text, err)
	}
	if state.Region("gowa").History != game.FallbackHistory {
		t.Error("fallback not cached on the region")
	}
}

type recordingSpeaker struct {
	lines chan string
}

func (s *recordingSpeaker) Speak(ctx context.Context, text string, c models.Character) ([]byte, error) {
	s.lines <- text
	return []byte("RIFF"), nil
}

func TestSpeechIsFireAndForget(t *testing.T) {
	state, _ := models.NewGameState(twoHumans(models.GajahMada, models.Baabullah))
	speaker := &recordingSpeaker{lines: make(chan string, 8)}
	got := make(chan models.Character, 8)
	c := game.New(state, &fakeContent{challenge: testChallenge},
		game.WithRoller(&fixedRoller{rolls: []game.Dice{{1, 1}}}),
		game.WithSpeaker(speaker, func(audio []byte, ch models.Character) { got <- ch }))

	c.Start()
	select {
	case line := <-speaker.lines:
		if line != "Salam dari kerajaan kami." {
			t.Errorf("greeting = %q", line)
		}
	case <-time.After(time.Second):
		t.Fatal("greeting never spoken")
	}
	select {
	case ch := <-got:
		if ch != models.GajahMada {
			t.Errorf("sink character = %s", ch)
		}
	case <-time.After(time.Second):
		t.Fatal("audio never reached the sink")
	}
}
