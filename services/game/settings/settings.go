package settings

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	listSelectorStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}).Render
)

type Mode int

const (
	// ModeVersusAgent puts the human on the opponent side against a trained agent.
	ModeVersusAgent Mode = iota
	// ModeVersusRandom puts the human on the agent side against random replies.
	ModeVersusRandom
)

var modeChoices = []Mode{ModeVersusAgent, ModeVersusRandom}
var episodeChoices = []int{0, 1_000, 5_000, 10_000, 20_000, 50_000}

type Settings struct {
	Mode     Mode
	Episodes int
}

type choiceLevel int

const (
	choiceLevelMode choiceLevel = iota
	choiceLevelEpisodes
)

type model struct {
	cursor      int
	choiceLevel choiceLevel
	header      string

	settings  Settings
	cancelled bool
	clear     bool
}

func (m model) GetSettings() Settings {
	return m.settings
}

// Cancelled reports whether the user quit before finishing.
func (m model) Cancelled() bool {
	return m.cancelled
}

func InitialModel(header string) *model {
	return &model{
		header: header,
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) choices() int {
	if m.choiceLevel == choiceLevelMode {
		return len(modeChoices)
	}

	return len(episodeChoices)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.clear = true
			m.cancelled = true
			return m, tea.Quit

		case "enter":
			if m.choiceLevel == choiceLevelMode {
				m.settings.Mode = modeChoices[m.cursor]
				// Random replies need no trained agent.
				if m.settings.Mode == ModeVersusRandom {
					m.clear = true
					return m, tea.Quit
				}
			}

			if m.choiceLevel == choiceLevelEpisodes {
				m.settings.Episodes = episodeChoices[m.cursor]
			}

			m.choiceLevel++
			if m.choiceLevel > choiceLevelEpisodes {
				m.clear = true
				return m, tea.Quit
			}

			m.cursor = 0
			return m, nil

		case "down", "j":
			m.cursor++
			if m.cursor >= m.choices() {
				m.cursor = 0
			}

		case "up", "k":
			m.cursor--
			if m.cursor < 0 {
				m.cursor = m.choices() - 1
			}
		}
	}

	return m, nil
}

func (m *model) View() string {
	if m.clear {
		return ""
	}

	s := strings.Builder{}
	s.WriteString(m.header)

	var labels []string
	switch m.choiceLevel {
	case choiceLevelMode:
		s.WriteString("Choose game:\n")
		labels = []string{
			"O against the trained agent",
			"X against random moves",
		}
	case choiceLevelEpisodes:
		s.WriteString("Choose training episodes:\n")
		for _, v := range episodeChoices {
			labels = append(labels, fmt.Sprintf("%d episodes", v))
		}
	}

	for i, label := range labels {
		if m.cursor == i {
			s.WriteString(listSelectorStyle("(•) "))
		} else {
			s.WriteString(listSelectorStyle("( ) "))
		}

		s.WriteString(label)
		s.WriteString("\n")
	}

	return s.String()
}
