package game

// Phase is the state of the turn machine.
type Phase int

const (
	PhaseAwaitingRoll            Phase = iota // active player has not rolled
	PhaseMoving                               // dice rolled, token not moved yet
	PhaseLandingResolution                    // token moved, landing being resolved
	PhaseAwaitingChallengeAnswer              // landed on an opponent's region
	PhaseAwaitingPlayerAction                 // may buy the landed region or end the turn
	PhaseTurnComplete                         // only the turn hand-off is left
)

var phaseNames = map[Phase]string{
	PhaseAwaitingRoll:            "AwaitingRoll",
	PhaseMoving:                  "Moving",
	PhaseLandingResolution:       "LandingResolution",
	PhaseAwaitingChallengeAnswer: "AwaitingChallengeAnswer",
	PhaseAwaitingPlayerAction:    "AwaitingPlayerAction",
	PhaseTurnComplete:            "TurnComplete",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "Unknown"
}
