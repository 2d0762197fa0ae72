package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/tatianab/mahardika/internal/game"
	"github.com/tatianab/mahardika/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(1).
			Foreground(lipgloss.Color("#AAAAAA"))

	logStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			Foreground(lipgloss.Color("#EEEEEE"))

	narrationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Italic(true).
			Width(48)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#FFA500")).
			Padding(0, 1).
			Width(48)

	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	selectedStyle = cellStyle.Foreground(lipgloss.Color("#FFA500")).Bold(true)
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EEEEEE")).Background(lipgloss.Color("#5F5F87"))
)

var playerColors = []lipgloss.Color{"#E06C75", "#61AFEF", "#98C379", "#E5C07B"}

const boardCols = 6

func (m model) renderBoard(snap game.Snapshot) string {
	tokens := make(map[int][]string)
	for i, p := range snap.State.Players {
		token := lipgloss.NewStyle().Foreground(playerColors[i%len(playerColors)]).Render(fmt.Sprintf("P%d", i+1))
		tokens[p.Position] = append(tokens[p.Position], token)
	}

	var rows [][]string
	for start := 0; start < models.BoardSize; start += boardCols {
		row := make([]string, 0, boardCols)
		for i := start; i < start+boardCols && i < models.BoardSize; i++ {
			r := snap.State.Regions[i]
			line := owner(snap.State, r)
			if t := tokens[i]; len(t) > 0 {
				line += " " + strings.Join(t, "")
			}
			row = append(row, truncate(r.Name, 14)+"\n"+line)
		}
		rows = append(rows, row)
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#3C3C3C"))).
		BorderRow(true).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row*boardCols+col == m.selected {
				return selectedStyle
			}
			return cellStyle
		}).
		String()
}

func owner(s models.GameState, r models.Region) string {
	if r.Group == models.GroupSpecial {
		return "-"
	}
	if r.OwnerID == "" {
		return fmt.Sprintf("%d", r.Price)
	}
	for i, p := range s.Players {
		if p.ID == r.OwnerID {
			return lipgloss.NewStyle().Foreground(playerColors[i%len(playerColors)]).Render("#" + string([]rune(p.Name)[:1]))
		}
	}
	return "#"
}

func (m model) renderPlayers(snap game.Snapshot) string {
	rows := make([][]string, 0, len(snap.State.Players))
	for _, p := range snap.State.Players {
		kind := "manusia"
		if p.AI {
			kind = "AI " + string(p.Difficulty)
		}
		mark := ""
		if snap.Marker != nil && snap.Marker.PlayerID == p.ID {
			mark = effectIcon(snap.Marker.Effect)
		}
		rows = append(rows, []string{
			p.Name + mark,
			string(p.Character),
			kind,
			fmt.Sprintf("%d", p.Balance),
			fmt.Sprintf("%d", len(p.Properties)),
		})
	}
	current := snap.State.Current
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#3C3C3C"))).
		Headers("Utusan", "Tokoh", "Jenis", "Kepeng", "Wilayah").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == current {
				return activeStyle.Padding(0, 1)
			}
			return cellStyle
		}).
		String()
}

func effectIcon(e models.AbilityEffect) string {
	switch e {
	case models.EffectCrown:
		return " ♛"
	case models.EffectShip:
		return " ⛵"
	}
	return ""
}

func (m model) renderTurn(snap game.Snapshot) string {
	p := snap.State.Players[snap.State.Current]
	var b strings.Builder

	fmt.Fprintf(&b, "Giliran: %s (%s)\n", p.Name, p.Character)
	ab := game.AbilityOf(p.Character)
	fmt.Fprintf(&b, "Kemampuan %s: %s\n", ab.Title, ab.Description)
	if m.rolling {
		b.WriteString("Melempar dadu...\n")
	} else if snap.Dice.Total() > 0 {
		fmt.Fprintf(&b, "Dadu: %d + %d = %d\n", snap.Dice[0], snap.Dice[1], snap.Dice.Total())
	}
	if snap.Narration != "" {
		b.WriteString(narrationStyle.Render(snap.Narration))
		b.WriteString("\n")
	}

	if snap.Pending != nil {
		var d strings.Builder
		fmt.Fprintf(&d, "Tantangan Sejarah! Sewa %d Kepeng\n%s\n", snap.Pending.Rent, snap.Pending.Challenge.Question)
		for i, o := range snap.Pending.Challenge.Options {
			fmt.Fprintf(&d, "%d. %s\n", i+1, o)
		}
		d.WriteString("Jawab benar: sewa setengah. Salah: denda 10%.")
		b.WriteString(dialogStyle.Render(d.String()))
	}

	return panelStyle.Render(b.String())
}

func (m model) renderHistory(snap game.Snapshot) string {
	r := snap.State.Regions[m.selected]
	text := m.history
	switch {
	case m.loading:
		text = "Membuka prasasti..."
	case text == "":
		text = helpStyle.Render("Tekan h untuk membaca sejarah.")
	}
	return panelStyle.Render(fmt.Sprintf("%s [%s]\n%s", r.Name, r.Group, narrationStyle.Render(text)))
}

func (m model) renderHelp(snap game.Snapshot) string {
	p := snap.State.Players[snap.State.Current]
	if p.AI {
		return fmt.Sprintf("%s sedang berpikir... • ←/→: pilih petak • h: sejarah • q: keluar", p.Name)
	}
	keys := []string{}
	switch snap.Phase {
	case game.PhaseAwaitingRoll:
		keys = append(keys, "r: lempar dadu")
	case game.PhaseAwaitingChallengeAnswer:
		keys = append(keys, "1-4: jawab")
	case game.PhaseAwaitingPlayerAction:
		if snap.CanBuy() {
			keys = append(keys, "b: beli")
		}
		keys = append(keys, "e: akhiri giliran")
	case game.PhaseTurnComplete:
		keys = append(keys, "e: akhiri giliran")
	}
	keys = append(keys, "←/→: pilih petak", "h: sejarah", "q: keluar")
	return strings.Join(keys, " • ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
