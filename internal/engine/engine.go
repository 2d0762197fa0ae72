package engine

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/mahardika/internal/game"
	"github.com/tatianab/mahardika/internal/models"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/narrate.txt
var narratePrompt string

//go:embed prompts/challenge.txt
var challengePrompt string

//go:embed prompts/history.txt
var historyPrompt string

//go:embed prompts/speak.txt
var speakPrompt string

var prompts = template.Must(template.New("narrate").Parse(narratePrompt))

func init() {
	template.Must(prompts.New("challenge").Parse(challengePrompt))
	template.Must(prompts.New("history").Parse(historyPrompt))
	template.Must(prompts.New("speak").Parse(speakPrompt))
}

const challengeOptions = 4

var errEmpty = errors.New("no content returned from Gemini")

// Models names the Gemini models the engine talks to.
type Models struct {
	Text   string
	Speech string
}

// Engine generates narration, challenges, region history and speech with
// Gemini. It implements game.Content and game.Speaker.
type Engine struct {
	client    *genai.Client
	narrator  *genai.GenerativeModel
	quizzer   *genai.GenerativeModel
	historian *genai.GenerativeModel
	voice     *genai.GenerativeModel
}

func NewEngine(ctx context.Context, apiKey string, m Models) (*Engine, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	narrator := client.GenerativeModel(m.Text)
	narrator.SystemInstruction = instruction("Gunakan gaya bahasa formal, puitis, dan kolosal seperti babad atau hikayat Nusantara kuno. Jangan gunakan markdown, berikan teks polos saja.")

	quizzer := client.GenerativeModel(m.Text)
	quizzer.ResponseMIMEType = "application/json"
	quizzer.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"question": {Type: genai.TypeString},
			"answer":   {Type: genai.TypeString},
			"options": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Berikan 4 pilihan jawaban termasuk jawaban yang benar.",
			},
		},
		Required: []string{"question", "answer", "options"},
	}

	historian := client.GenerativeModel(m.Text)
	historian.SystemInstruction = instruction("Berikan teks polos saja tanpa markdown.")

	return &Engine{
		client:    client,
		narrator:  narrator,
		quizzer:   quizzer,
		historian: historian,
		voice:     client.GenerativeModel(m.Speech),
	}, nil
}

func (e *Engine) Close() {
	e.client.Close()
}

func (e *Engine) Narrate(ctx context.Context, req game.NarrationRequest) (string, error) {
	prompt, err := render("narrate", req)
	if err != nil {
		return "", err
	}
	text, err := generateText(ctx, e.narrator, prompt)
	if err != nil {
		return "", fmt.Errorf("narration: %w", err)
	}
	return text, nil
}

func (e *Engine) Challenge(ctx context.Context) (models.Challenge, error) {
	prompt, err := render("challenge", struct{ Options int }{challengeOptions})
	if err != nil {
		return models.Challenge{}, err
	}
	text, err := generateText(ctx, e.quizzer, prompt)
	if err != nil {
		return models.Challenge{}, fmt.Errorf("challenge: %w", err)
	}
	return parseChallenge(text)
}

func (e *Engine) RegionHistory(ctx context.Context, region string) (string, error) {
	prompt, err := render("history", struct{ Region string }{region})
	if err != nil {
		return "", err
	}
	text, err := generateText(ctx, e.historian, prompt)
	if err != nil {
		return "", fmt.Errorf("history of %s: %w", region, err)
	}
	return text, nil
}

// Speak asks the speech model to read text in the character's voice and
// returns the first audio part of the response.
func (e *Engine) Speak(ctx context.Context, text string, c models.Character) ([]byte, error) {
	prompt, err := render("speak", struct{ Voice, Text string }{VoiceFor(c), text})
	if err != nil {
		return nil, err
	}
	resp, err := e.voice.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("speech: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errEmpty
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if blob, ok := part.(genai.Blob); ok && strings.HasPrefix(blob.MIMEType, "audio/") {
			return blob.Data, nil
		}
	}
	return nil, nil
}

var voices = map[models.Character]string{
	models.GajahMada:  "Charon",
	models.Malahayati: "Kore",
	models.Tunggadewi: "Zephyr",
	models.Baabullah:  "Puck",
}

// VoiceFor returns the prebuilt voice a character speaks with.
func VoiceFor(c models.Character) string {
	if v, ok := voices[c]; ok {
		return v
	}
	return "Fenrir"
}

func instruction(text string) *genai.Content {
	return &genai.Content{Parts: []genai.Part{genai.Text(text)}}
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func generateText(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errEmpty
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("unexpected response type from Gemini")
	}
	return out, nil
}

// parseChallenge decodes a challenge from model output. JSON is valid
// YAML, so fenced or bare output of either kind is accepted.
func parseChallenge(text string) (models.Challenge, error) {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```yaml")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")

	var c models.Challenge
	if err := yaml.Unmarshal([]byte(clean), &c); err != nil {
		return models.Challenge{}, fmt.Errorf("failed to parse challenge: %v\nOutput was: %s", err, clean)
	}
	c.Question = strings.TrimSpace(c.Question)
	c.Answer = strings.TrimSpace(c.Answer)
	for i := range c.Options {
		c.Options[i] = strings.TrimSpace(c.Options[i])
	}
	if err := c.Validate(); err != nil {
		return models.Challenge{}, err
	}
	return c, nil
}
