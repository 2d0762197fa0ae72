package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tatianab/mahardika/internal/game"
	"github.com/tatianab/mahardika/internal/models"
)

type sessionState int

const (
	stateSetup sessionState = iota
	statePlaying
	stateError
)

// Delays paces the game so AI turns can be followed.
type Delays struct {
	Dice   time.Duration
	Think  time.Duration
	Answer time.Duration
	Buy    time.Duration
	Marker time.Duration
}

// Options configures the program.
type Options struct {
	Roster  []models.Seat
	NewGame func([]models.Seat) (*game.Controller, error)
	Delays  Delays
}

type model struct {
	state     sessionState
	opts      Options
	ctrl      *game.Controller
	textInput textinput.Model
	viewport  viewport.Model
	err       error
	width     int
	height    int

	rolling    bool
	aiPending  bool
	justBought bool
	selected   int // board cell shown in the history panel
	history    string
	loading    bool
}

func NewModel(opts Options) model {
	ti := textinput.New()
	ti.Placeholder = models.FormatRoster(opts.Roster)
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 80

	return model{
		state:     stateSetup,
		opts:      opts,
		textInput: ti,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

type movedMsg struct {
	events []game.Event
	err    error
}

type moveMsg struct{}

type aiStepMsg struct {
	step game.AIStep
}

type historyMsg struct {
	cell int
	text string
	err  error
}

type refreshMsg struct{}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		}
		if m.state == stateSetup {
			if msg.Type == tea.KeyEnter {
				return m.startGame()
			}
			break
		}
		if m.state == statePlaying {
			return m.handleKey(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = logWidth(msg.Width)
		m.viewport.Height = max(3, msg.Height/4)
		if m.state == statePlaying {
			m.viewport.SetContent(m.renderLog())
		}

	case moveMsg:
		return m, m.move()

	case movedMsg:
		m.rolling = false
		if msg.err != nil {
			cmd = m.scheduleAI()
			return m, cmd
		}
		snap := m.ctrl.Snapshot()
		m.selected = snap.State.Players[snap.State.Current].Position
		m.history = ""
		m.refreshLog()
		cmd = tea.Batch(m.scheduleAI(), m.markerRefresh(msg.events))
		return m, cmd

	case aiStepMsg:
		m.aiPending = false
		return m.applyAI(msg.step)

	case historyMsg:
		m.loading = false
		if msg.cell == m.selected {
			if msg.err != nil {
				m.history = "Petak ini tidak memiliki catatan sejarah."
			} else {
				m.history = msg.text
			}
		}
		return m, nil

	case refreshMsg:
		return m, nil
	}

	if m.state == stateSetup {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) startGame() (tea.Model, tea.Cmd) {
	seats := m.opts.Roster
	if v := strings.TrimSpace(m.textInput.Value()); v != "" {
		parsed, err := models.ParseRoster(v)
		if err != nil {
			m.textInput.Reset()
			m.textInput.Placeholder = err.Error()
			return m, nil
		}
		seats = parsed
	}
	ctrl, err := m.opts.NewGame(seats)
	if err != nil {
		m.err = err
		m.state = stateError
		return m, nil
	}
	m.ctrl = ctrl
	m.state = statePlaying
	m.viewport = viewport.New(logWidth(m.width), max(3, m.height/4))
	m.refreshLog()
	ctrl.Start()
	cmd := m.scheduleAI()
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyLeft:
		m.selected = (m.selected + models.BoardSize - 1) % models.BoardSize
		m.history = ""
		return m, nil
	case tea.KeyRight:
		m.selected = (m.selected + 1) % models.BoardSize
		m.history = ""
		return m, nil
	}

	key := msg.String()
	if key == "q" {
		return m, tea.Quit
	}
	if key == "h" {
		cmd := m.fetchHistory()
		return m, cmd
	}

	snap := m.ctrl.Snapshot()
	if snap.State.Players[snap.State.Current].AI {
		return m, nil
	}

	switch key {
	case "r", " ":
		if _, err := m.ctrl.Roll(); err != nil {
			return m, nil
		}
		m.rolling = true
		return m, tea.Tick(m.opts.Delays.Dice, func(time.Time) tea.Msg { return moveMsg{} })
	case "b":
		if _, err := m.ctrl.Buy(); err == nil {
			m.refreshLog()
		}
		return m, nil
	case "e", "enter":
		if _, err := m.ctrl.EndTurn(); err == nil {
			m.afterTurn()
		}
		cmd := m.scheduleAI()
		return m, cmd
	case "1", "2", "3", "4":
		if snap.Pending == nil {
			return m, nil
		}
		i := int(key[0] - '1')
		if i >= len(snap.Pending.Challenge.Options) {
			return m, nil
		}
		events, err := m.ctrl.Choose(snap.Pending.Challenge.Options[i])
		if err == nil {
			m.refreshLog()
		}
		return m, m.markerRefresh(events)
	}
	return m, nil
}

// scheduleAI queues the next step of an AI player after its delay.
func (m *model) scheduleAI() tea.Cmd {
	if m.ctrl == nil || m.aiPending || m.rolling {
		return nil
	}
	step := m.ctrl.PlanAI()
	var delay time.Duration
	switch step {
	case game.AINone:
		return nil
	case game.AIAnswer:
		delay = m.opts.Delays.Answer
	case game.AIEnd:
		delay = m.opts.Delays.Think
		if m.justBought {
			delay = m.opts.Delays.Buy
		}
	default:
		delay = m.opts.Delays.Think
	}
	m.aiPending = true
	return tea.Tick(delay, func(time.Time) tea.Msg { return aiStepMsg{step: step} })
}

func (m model) applyAI(step game.AIStep) (tea.Model, tea.Cmd) {
	switch step {
	case game.AIRoll:
		if _, err := m.ctrl.Roll(); err != nil {
			cmd := m.scheduleAI()
			return m, cmd
		}
		m.rolling = true
		return m, tea.Tick(m.opts.Delays.Dice, func(time.Time) tea.Msg { return moveMsg{} })
	case game.AIAnswer:
		events, _ := m.ctrl.AutoAnswer()
		m.refreshLog()
		cmd := tea.Batch(m.scheduleAI(), m.markerRefresh(events))
		return m, cmd
	case game.AIBuy:
		if _, err := m.ctrl.Buy(); err == nil {
			m.justBought = true
			m.refreshLog()
		}
	case game.AIEnd:
		if _, err := m.ctrl.EndTurn(); err == nil {
			m.afterTurn()
		}
	}
	cmd := m.scheduleAI()
	return m, cmd
}

func (m *model) afterTurn() {
	m.justBought = false
	m.history = ""
	snap := m.ctrl.Snapshot()
	m.selected = snap.State.Players[snap.State.Current].Position
	m.refreshLog()
}

func (m model) move() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		events, err := ctrl.Move(context.Background())
		return movedMsg{events: events, err: err}
	}
}

func (m *model) fetchHistory() tea.Cmd {
	snap := m.ctrl.Snapshot()
	r := snap.State.Regions[m.selected]
	if r.Group == models.GroupSpecial {
		m.history = "Petak ini tidak memiliki catatan sejarah."
		return nil
	}
	if r.History != "" {
		m.history = r.History
		return nil
	}
	m.loading = true
	ctrl, cell := m.ctrl, m.selected
	return func() tea.Msg {
		text, err := ctrl.RegionHistory(context.Background(), r.ID)
		return historyMsg{cell: cell, text: text, err: err}
	}
}

// markerRefresh redraws once an ability marker has expired.
func (m model) markerRefresh(events []game.Event) tea.Cmd {
	for _, e := range events {
		if e.Type == game.EventAbility {
			return tea.Tick(m.opts.Delays.Marker, func(time.Time) tea.Msg { return refreshMsg{} })
		}
	}
	return nil
}

func (m *model) refreshLog() {
	m.viewport.SetContent(m.renderLog())
	m.viewport.GotoTop()
}

func (m model) View() string {
	var s string

	switch m.state {
	case stateSetup:
		s = fmt.Sprintf(
			"%s\n\n%s\n%s\n\n%s\n\n%s",
			titleStyle.Render("MAHARDIKA: Kejayaan Kepulauan Nusantara"),
			"Atur utusan kerajaan (nama:tokoh:human|ai:easy|medium|hard, dipisah koma).",
			helpStyle.Render("Tekan Enter tanpa isian untuk memakai susunan bawaan."),
			m.textInput.View(),
			helpStyle.Render("Tokoh: gajah, laksamana, tribhuwana, sultan"),
		)

	case statePlaying:
		snap := m.ctrl.Snapshot()
		side := lipgloss.JoinVertical(lipgloss.Left,
			m.renderPlayers(snap),
			m.renderTurn(snap),
			m.renderHistory(snap),
		)
		s = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, m.renderBoard(snap), "  ", side),
			logStyle.Width(logWidth(m.width)).Render(m.viewport.View()),
			helpStyle.Render(m.renderHelp(snap)),
		)

	case stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.", m.err)
	}

	return "\n" + s + "\n"
}

func (m model) renderLog() string {
	if m.ctrl == nil {
		return ""
	}
	return strings.Join(m.ctrl.Snapshot().State.Logs, "\n")
}

func logWidth(width int) int {
	return max(40, width-4)
}

// Run starts the interactive program.
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
