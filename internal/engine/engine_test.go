package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tatianab/mahardika/internal/game"
	"github.com/tatianab/mahardika/internal/models"
)

var (
	_ game.Content = (*Engine)(nil)
	_ game.Speaker = (*Engine)(nil)
	_ game.Content = Offline{}
	_ game.Speaker = Offline{}
)

func TestParseChallenge(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"json", `{"question": "Siapa pendiri Majapahit?", "answer": "Raden Wijaya", "options": ["Ken Arok", "Raden Wijaya", "Hayam Wuruk", "Airlangga"]}`},
		{"fenced json", "```json\n{\"question\": \"Siapa pendiri Majapahit?\", \"answer\": \"Raden Wijaya\", \"options\": [\"Raden Wijaya\", \"Airlangga\"]}\n```"},
		{"yaml", "question: Siapa pendiri Majapahit?\nanswer: Raden Wijaya\noptions:\n  - Raden Wijaya\n  - Ken Arok\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := parseChallenge(tt.in)
			if err != nil {
				t.Fatalf("parseChallenge() error = %v", err)
			}
			if c.Question != "Siapa pendiri Majapahit?" || c.Answer != "Raden Wijaya" {
				t.Errorf("unexpected challenge %+v", c)
			}
			if !c.IsCorrect("Raden Wijaya") {
				t.Error("answer not among options")
			}
		})
	}
}

func TestParseChallengeRejectsBadOutput(t *testing.T) {
	tests := []string{
		"not: [valid",
		`{"question": "Q", "answer": "A", "options": ["B", "C"]}`,
		`{"question": "", "answer": "A", "options": ["A"]}`,
	}
	for _, in := range tests {
		if _, err := parseChallenge(in); err == nil {
			t.Errorf("parseChallenge(%q) expected error", in)
		}
	}
}

func TestRenderPrompts(t *testing.T) {
	out, err := render("narrate", game.NarrationRequest{
		Player:    "Arya",
		Character: models.GajahMada,
		Region:    "Majapahit",
		Event:     "Mendarat di wilayah baru",
	})
	if err != nil {
		t.Fatalf("render() error = %v", err)
	}
	for _, want := range []string{"Arya (Gajah Mada)", "Lokasi: Majapahit", "Kejadian: Mendarat di wilayah baru"} {
		if !strings.Contains(out, want) {
			t.Errorf("narration prompt missing %q:\n%s", want, out)
		}
	}

	out, err = render("history", struct{ Region string }{"Tidore"})
	if err != nil || !strings.Contains(out, `"Tidore"`) {
		t.Errorf("history prompt = %q, %v", out, err)
	}

	out, err = render("speak", struct{ Voice, Text string }{VoiceFor(models.Malahayati), "Salam"})
	if err != nil || !strings.Contains(out, "Kore") || !strings.Contains(out, "Salam") {
		t.Errorf("speech prompt = %q, %v", out, err)
	}
}

func TestVoiceFor(t *testing.T) {
	tests := map[models.Character]string{
		models.GajahMada:  "Charon",
		models.Malahayati: "Kore",
		models.Tunggadewi: "Zephyr",
		models.Baabullah:  "Puck",
		"Unknown":         "Fenrir",
	}
	for c, want := range tests {
		if got := VoiceFor(c); got != want {
			t.Errorf("VoiceFor(%q) = %q, want %q", c, got, want)
		}
	}
}

func TestOffline(t *testing.T) {
	ctx := context.Background()
	var o Offline
	if _, err := o.Narrate(ctx, game.NarrationRequest{}); !errors.Is(err, ErrOffline) {
		t.Errorf("Narrate() error = %v", err)
	}
	if _, err := o.Challenge(ctx); !errors.Is(err, ErrOffline) {
		t.Errorf("Challenge() error = %v", err)
	}
	if _, err := o.RegionHistory(ctx, "Gowa"); !errors.Is(err, ErrOffline) {
		t.Errorf("RegionHistory() error = %v", err)
	}
	if audio, err := o.Speak(ctx, "Salam", models.Baabullah); audio != nil || !errors.Is(err, ErrOffline) {
		t.Errorf("Speak() = %v, %v", audio, err)
	}
}
