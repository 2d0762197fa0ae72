package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/tatianab/mahardika/internal/models"
)

// Fixed economy of the start cell.
const PassStartReward = 200

const defaultMarkerTTL = 2 * time.Second

// Controller runs the turn machine of one game. It owns the GameState; all
// reads from other goroutines go through Snapshot.
//
// At most one turn operation is in flight: Roll sets the processing guard
// and only landing settlement or a challenge answer clears it.
type Controller struct {
	mu         sync.Mutex
	state      *models.GameState
	phase      Phase
	processing bool
	dice       Dice
	narration  string
	pending    *models.PendingChallenge
	marker     *models.AbilityMarker

	content   Content
	speaker   Speaker
	sink      SpeechSink
	roller    Roller
	policy    *Policy
	log       *zap.Logger
	now       func() time.Time
	markerTTL time.Duration
	history   singleflight.Group
	id        string
}

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithRand seeds both the dice and the AI policy from rng.
func WithRand(rng *rand.Rand) Option {
	return func(c *Controller) {
		c.roller = NewRandRoller(rng)
		c.policy = NewPolicy(rng)
	}
}

func WithRoller(r Roller) Option {
	return func(c *Controller) { c.roller = r }
}

func WithPolicy(p *Policy) Option {
	return func(c *Controller) { c.policy = p }
}

// WithSpeaker enables best-effort speech; audio is handed to sink.
func WithSpeaker(s Speaker, sink SpeechSink) Option {
	return func(c *Controller) {
		c.speaker = s
		c.sink = sink
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithMarkerTTL(d time.Duration) Option {
	return func(c *Controller) { c.markerTTL = d }
}

// New creates a Controller for state. The first player is active and has
// not rolled.
func New(state *models.GameState, content Content, opts ...Option) *Controller {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	c := &Controller{
		state:     state,
		phase:     PhaseAwaitingRoll,
		content:   content,
		roller:    NewRandRoller(rng),
		policy:    NewPolicy(rng),
		log:       zap.NewNop(),
		now:       time.Now,
		markerTTL: defaultMarkerTTL,
		id:        uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(zap.String("game_id", c.id))
	return c
}

// ID identifies this game in logs.
func (c *Controller) ID() string {
	return c.id
}

// Start greets the table in the voice of the first player.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	first := c.state.Players[0]
	c.log.Info("game started", zap.Int("players", len(c.state.Players)), zap.String("first", first.Name))
	c.speak(greetingLine, first.Character)
}

// Roll throws the dice for the active player and sets the processing
// guard. Move must follow.
func (c *Controller) Roll() (Dice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkGuard(ActionRoll); err != nil {
		return Dice{}, err
	}
	if c.phase != PhaseAwaitingRoll {
		return Dice{}, c.reject(ActionRoll, ErrWrongPhase)
	}

	c.processing = true
	c.dice = c.roller.Roll()
	c.phase = PhaseMoving
	c.log.Debug("dice rolled",
		zap.String("player", c.state.CurrentPlayer().ID),
		zap.Int("d1", c.dice[0]), zap.Int("d2", c.dice[1]))
	return c.dice, nil
}

// Move advances the active player by the rolled dice and resolves the
// landing. It blocks on the narration and, on an opponent's region, on the
// challenge request. Collaborator failures fall back to fixed values.
func (c *Controller) Move(ctx context.Context) ([]Event, error) {
	c.mu.Lock()
	if c.phase != PhaseMoving {
		defer c.mu.Unlock()
		return nil, c.reject(ActionMove, ErrWrongPhase)
	}

	p := c.state.CurrentPlayer()
	steps := c.dice.Total()
	events := []Event{{Type: EventRolled, Player: p.ID, Amount: steps}}

	old := p.Position
	p.Position = (old + steps) % models.BoardSize
	if p.Position < old {
		bonus := PassStartReward
		events = append(events, Event{Type: EventPassedStart, Player: p.ID, Amount: PassStartReward})
		if extra := AbilityOf(p.Character).PassStartBonus(); extra > 0 {
			bonus += extra
			c.setMarker(p.ID, models.EffectCrown)
			events = append(events, Event{Type: EventAbility, Player: p.ID, Amount: extra, Effect: models.EffectCrown})
		}
		p.Balance += bonus
	}

	region := c.state.Regions[p.Position]
	c.phase = PhaseLandingResolution
	events = append(events, Event{Type: EventLanded, Player: p.ID, Target: region.ID, Position: p.Position})

	var owner *models.Player
	req := NarrationRequest{Player: p.Name, Character: p.Character, Region: region.Name, Event: "Mendarat di wilayah baru"}
	if region.OwnerID != "" {
		owner = c.state.Player(region.OwnerID)
		if owner != nil {
			req.Event = "Mendarat di wilayah milik " + owner.Name
		}
	}
	contested := owner != nil && owner.ID != p.ID && !owner.Bankrupt
	c.mu.Unlock()

	narration := c.narrate(ctx, req)
	var challenge models.Challenge
	if contested {
		challenge = c.challenge(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	p = c.state.CurrentPlayer()
	c.narration = narration
	c.speak(narration, p.Character)

	if contested {
		c.pending = &models.PendingChallenge{
			Challenge: challenge,
			Rent:      region.Rent,
			OwnerID:   owner.ID,
		}
		c.phase = PhaseAwaitingChallengeAnswer
		events = append(events, Event{Type: EventChallenge, Player: p.ID, Target: owner.ID, Amount: region.Rent})
		c.log.Info("challenge issued",
			zap.String("player", p.ID), zap.String("owner", owner.ID),
			zap.String("region", region.ID), zap.Int("rent", region.Rent))
		return events, nil
	}

	c.state.Log(fmt.Sprintf("%s mendarat di %s", p.Name, region.Name))
	c.processing = false
	if region.Purchasable() && p.Balance >= region.Price {
		c.phase = PhaseAwaitingPlayerAction
	} else {
		c.phase = PhaseTurnComplete
	}
	c.log.Debug("landed",
		zap.String("player", p.ID), zap.String("region", region.ID),
		zap.Stringer("phase", c.phase))
	return events, nil
}

// Answer settles the outstanding challenge. correct says whether the
// active player answered it right.
func (c *Controller) Answer(correct bool) ([]Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.answer(correct)
}

// Choose answers the outstanding challenge with one of its options.
func (c *Controller) Choose(option string) ([]Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return nil, c.reject(ActionAnswer, ErrNoChallenge)
	}
	return c.answer(c.pending.Challenge.IsCorrect(option))
}

// AutoAnswer answers the outstanding challenge with the AI policy of the
// active player.
func (c *Controller) AutoAnswer() ([]Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return nil, c.reject(ActionAnswer, ErrNoChallenge)
	}
	return c.answer(c.policy.Answer(*c.state.CurrentPlayer()))
}

func (c *Controller) answer(correct bool) ([]Event, error) {
	if c.pending == nil || c.phase != PhaseAwaitingChallengeAnswer {
		return nil, c.reject(ActionAnswer, ErrNoChallenge)
	}

	payer := c.state.CurrentPlayer()
	owner := c.state.Player(c.pending.OwnerID)
	region := c.state.Regions[payer.Position]
	events := []Event{{Type: EventChallengeAnswered, Player: payer.ID, Correct: correct}}

	amount, waived := SettleRent(c.pending.Rent, payer.Character, region.Group, correct)
	if waived {
		c.setMarker(payer.ID, models.EffectShip)
		events = append(events, Event{Type: EventAbility, Player: payer.ID, Effect: models.EffectShip})
	}
	transferRent(payer, owner, amount)
	c.state.Log(fmt.Sprintf("%s membayar sewa %d Kepeng kepada %s", payer.Name, amount, owner.Name))
	events = append(events, Event{Type: EventRentPaid, Player: payer.ID, Target: owner.ID, Amount: amount})

	c.log.Info("rent settled",
		zap.String("player", payer.ID), zap.String("owner", owner.ID),
		zap.Bool("correct", correct), zap.Bool("waived", waived), zap.Int("amount", amount))

	c.pending = nil
	c.processing = false
	c.phase = PhaseTurnComplete
	return events, nil
}

// Buy purchases the region the active player stands on.
func (c *Controller) Buy() ([]Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkGuard(ActionBuy); err != nil {
		return nil, err
	}
	if c.phase != PhaseAwaitingPlayerAction {
		return nil, c.reject(ActionBuy, ErrWrongPhase)
	}
	p := c.state.CurrentPlayer()
	r := &c.state.Regions[p.Position]
	if !r.Purchasable() {
		return nil, c.reject(ActionBuy, ErrNotPurchasable)
	}
	if p.Balance < r.Price {
		return nil, c.reject(ActionBuy, ErrInsufficientFunds)
	}

	p.Balance -= r.Price
	r.OwnerID = p.ID
	p.Properties = append(p.Properties, r.ID)
	c.state.Log(fmt.Sprintf("%s membeli %s", p.Name, r.Name))
	c.phase = PhaseTurnComplete
	c.log.Info("region bought", zap.String("player", p.ID), zap.String("region", r.ID), zap.Int("price", r.Price))
	return []Event{{Type: EventPurchased, Player: p.ID, Target: r.ID, Amount: r.Price}}, nil
}

// EndTurn hands the turn to the next player.
func (c *Controller) EndTurn() ([]Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkGuard(ActionEndTurn); err != nil {
		return nil, err
	}
	if c.phase != PhaseTurnComplete && c.phase != PhaseAwaitingPlayerAction {
		return nil, c.reject(ActionEndTurn, ErrWrongPhase)
	}

	prev := c.state.CurrentPlayer().ID
	c.state.Current = (c.state.Current + 1) % len(c.state.Players)
	c.narration = ""
	c.phase = PhaseAwaitingRoll
	next := c.state.CurrentPlayer()
	c.speak(turnLine, next.Character)
	c.log.Debug("turn passed", zap.String("from", prev), zap.String("to", next.ID))
	return []Event{{Type: EventTurnPassed, Player: prev, Target: next.ID}}, nil
}

// PlanAI returns what the active player does next if it is an AI. AIBuy
// is only returned when the policy decides to buy; the caller ends the
// turn on the following step.
func (c *Controller) PlanAI() AIStep {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.state.CurrentPlayer()
	if !p.AI {
		return AINone
	}
	switch c.phase {
	case PhaseAwaitingRoll:
		if c.processing || c.pending != nil {
			return AINone
		}
		return AIRoll
	case PhaseAwaitingChallengeAnswer:
		return AIAnswer
	case PhaseAwaitingPlayerAction, PhaseTurnComplete:
		if c.processing {
			return AINone
		}
		if c.phase == PhaseAwaitingPlayerAction && c.policy.WantsToBuy(*p, c.state.Regions[p.Position]) {
			return AIBuy
		}
		return AIEnd
	}
	return AINone
}

// RegionHistory returns the history text of a region, fetching it on first
// use. Concurrent requests for one region share a single fetch.
func (c *Controller) RegionHistory(ctx context.Context, id string) (string, error) {
	c.mu.Lock()
	r := c.state.Region(id)
	if r == nil {
		c.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrUnknownRegion, id)
	}
	if r.Group == models.GroupSpecial {
		c.mu.Unlock()
		return "", ErrNoHistory
	}
	if r.History != "" {
		defer c.mu.Unlock()
		return r.History, nil
	}
	name := r.Name
	c.mu.Unlock()

	v, _, _ := c.history.Do(id, func() (any, error) {
		text, err := c.content.RegionHistory(ctx, name)
		if err != nil || text == "" {
			c.log.Warn("region history failed, using fallback", zap.String("region", id), zap.Error(err))
			text = FallbackHistory
		}
		c.mu.Lock()
		c.state.Region(id).History = text
		c.mu.Unlock()
		return text, nil
	})
	return v.(string), nil
}

// Snapshot is a copy of the game safe to read without the Controller lock.
type Snapshot struct {
	State      models.GameState
	Phase      Phase
	Processing bool
	Dice       Dice
	Narration  string
	Pending    *models.PendingChallenge
	Marker     *models.AbilityMarker // nil once expired
}

// CanBuy reports whether a purchase would be accepted now.
func (s Snapshot) CanBuy() bool {
	if s.Processing || s.Pending != nil || s.Phase != PhaseAwaitingPlayerAction {
		return false
	}
	p := s.State.Players[s.State.Current]
	r := s.State.Regions[p.Position]
	return r.Purchasable() && p.Balance >= r.Price
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		State:      c.state.Clone(),
		Phase:      c.phase,
		Processing: c.processing,
		Dice:       c.dice,
		Narration:  c.narration,
	}
	if c.pending != nil {
		pending := *c.pending
		pending.Challenge.Options = append([]string(nil), c.pending.Challenge.Options...)
		s.Pending = &pending
	}
	if c.marker.Active(c.now()) {
		marker := *c.marker
		s.Marker = &marker
	}
	return s
}

// checkGuard rejects mutating requests while a turn is in flight.
func (c *Controller) checkGuard(a Action) error {
	if c.processing {
		return c.reject(a, ErrBusy)
	}
	if c.pending != nil {
		return c.reject(a, ErrChallengePending)
	}
	return nil
}

func (c *Controller) reject(a Action, err error) error {
	c.log.Debug("action ignored",
		zap.String("action", string(a)),
		zap.Stringer("phase", c.phase),
		zap.String("player", c.state.CurrentPlayer().ID),
		zap.Error(err))
	return err
}

func (c *Controller) setMarker(playerID string, effect models.AbilityEffect) {
	c.marker = &models.AbilityMarker{
		PlayerID:  playerID,
		Effect:    effect,
		ExpiresAt: c.now().Add(c.markerTTL),
	}
}

func (c *Controller) narrate(ctx context.Context, req NarrationRequest) string {
	text, err := c.content.Narrate(ctx, req)
	if err != nil || text == "" {
		c.log.Warn("narration failed, using fallback", zap.String("region", req.Region), zap.Error(err))
		return FallbackNarration
	}
	return text
}

func (c *Controller) challenge(ctx context.Context) models.Challenge {
	ch, err := c.content.Challenge(ctx)
	if err == nil {
		err = ch.Validate()
	}
	if err != nil {
		c.log.Warn("challenge failed, using fallback", zap.Error(err))
		return FallbackChallenge()
	}
	return ch
}

// speak must not block: speech never affects the game.
func (c *Controller) speak(text string, ch models.Character) {
	if c.speaker == nil {
		return
	}
	speaker, sink, log := c.speaker, c.sink, c.log
	go func() {
		audio, err := speaker.Speak(context.Background(), text, ch)
		if err != nil {
			log.Debug("speech skipped", zap.Error(err))
			return
		}
		if len(audio) > 0 && sink != nil {
			sink(audio, ch)
		}
	}()
}
