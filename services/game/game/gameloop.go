package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zarux/tictactd/pkg/episode"
	"github.com/Zarux/tictactd/pkg/td"
	"github.com/Zarux/tictactd/pkg/tictactoe"
)

// Bot plays the side the human does not.
type Bot interface {
	NextAction(*tictactoe.Board) tictactoe.Action
}

type statsBot interface {
	Stats() *td.LastMoveStats
}

type model struct {
	board         *tictactoe.Board
	cursor        int
	currentPlayer tictactoe.Player
	botPlayer     tictactoe.Player
	bot           Bot
	spinner       spinner.Model
	header        string

	train    func() (episode.Tally, error)
	training bool
	trained  *episode.Tally
	trainErr error

	input string
	err   error

	gameOver bool
	outcome  tictactoe.Outcome
	Replay   bool
}

type botTurnMsg struct{}

type trainedMsg struct {
	tally episode.Tally
	err   error
}

var (
	p1Style              = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#007e50ff", Dark: "#6afd76ff"}).Render
	p2Style              = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#0003adff", Dark: "#5f61fcff"}).Render
	cursorStyle          = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#960000ff", Dark: "#fc7e7eff"}).Render
	winningRowStyle      = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#bb0000ff", Dark: "#df1010ff"}).Render
	lastWinningRowStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#f80000ff", Dark: "#f18787ff"}).Render
	bracketStyle         = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#414141ff", Dark: "#8f8f8fff"}).Render
	lastMoveBracketStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000ff", Dark: "#ffffffff"}).Render
	statStyle1           = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#8a880fff", Dark: "#ddda1dff"}).Render
	statStyle2           = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#138a0fff", Dark: "#1ddd37ff"}).Render
)

// InitialModel starts a game on b. X always moves first. When train is not nil it
// runs before the first move.
func InitialModel(header string, b *tictactoe.Board, bot Bot, botPlayer tictactoe.Player, train func() (episode.Tally, error)) *model {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &model{
		board:         b,
		cursor:        4,
		currentPlayer: tictactoe.Agent,
		botPlayer:     botPlayer,
		bot:           bot,
		spinner:       s,
		header:        header,
		train:         train,
		training:      train != nil,
	}
}

func (m *model) Init() tea.Cmd {
	if m.training {
		train := m.train
		return tea.Batch(m.spinner.Tick, func() tea.Msg {
			tally, err := train()
			return trainedMsg{tally: tally, err: err}
		})
	}

	return m.botTurn()
}

func (m *model) botTurn() tea.Cmd {
	if m.gameOver || m.currentPlayer != m.botPlayer {
		return nil
	}

	return func() tea.Msg {
		return botTurnMsg{}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case trainedMsg:
		m.training = false
		m.trained = &msg.tally
		m.trainErr = msg.err
		return m, m.botTurn()

	case botTurnMsg:
		m.play(m.bot.NextAction(m.board))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

		if m.training {
			return m, nil
		}

		if m.gameOver {
			if msg.String() == "enter" || msg.String() == "r" {
				m.Replay = true
				return m, tea.Quit
			}
			return m, nil
		}

		switch key := msg.String(); key {
		case "right":
			if m.cursor%tictactoe.Size < tictactoe.Size-1 {
				m.cursor++
			}
		case "left":
			if m.cursor%tictactoe.Size > 0 {
				m.cursor--
			}
		case "up":
			if m.cursor >= tictactoe.Size {
				m.cursor -= tictactoe.Size
			}
		case "down":
			if m.cursor < tictactoe.Cells-tictactoe.Size {
				m.cursor += tictactoe.Size
			}
		case "backspace":
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
		case "enter":
			return m, m.humanMove(m.cursor)
		default:
			if len(key) != 1 || key[0] < '0' || key[0] > '9' {
				return m, nil
			}

			m.input += key
			if len(m.input) < 2 {
				return m, nil
			}

			row, col, err := tictactoe.ParseCoords(m.input)
			m.input = ""
			if err != nil {
				m.err = err
				return m, nil
			}

			m.cursor = m.board.GetIdx(row, col)
			return m, m.humanMove(m.cursor)
		}

	default:
		if !m.training {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *model) humanMove(idx int) tea.Cmd {
	if m.currentPlayer == m.botPlayer {
		return nil
	}

	if !m.play(tictactoe.ActionAt(m.currentPlayer, idx)) {
		return nil
	}

	return m.botTurn()
}

func (m *model) play(a tictactoe.Action) bool {
	if err := m.board.ApplyAction(a); err != nil {
		m.err = err
		return false
	}
	m.err = nil

	if o := m.board.Outcome(); o != tictactoe.Undetermined || m.board.IsTerminal() {
		m.gameOver = true
		m.outcome = o
		return true
	}

	m.currentPlayer = m.currentPlayer.Other()
	return true
}

func mark(p tictactoe.Player) string {
	switch p {
	case tictactoe.Agent:
		return p1Style(p.Mark())
	case tictactoe.Opponent:
		return p2Style(p.Mark())
	}

	return p.Mark()
}

func (m *model) View() string {
	if m.gameOver && m.Replay {
		return ""
	}

	s := strings.Builder{}
	s.WriteString(m.header)

	if m.training {
		s.WriteString("Training agent " + m.spinner.View() + "\n")
		return s.String()
	}

	if m.trained != nil {
		s.WriteString(fmt.Sprintf("Trained %s episodes: %s\n\n",
			statStyle2(fmt.Sprintf("%d", m.trained.Total())),
			statStyle1(m.trained.String()),
		))
	}

	if m.trainErr != nil {
		s.WriteString(cursorStyle("Training stopped early: "+m.trainErr.Error()) + "\n\n")
	}

	s.WriteString("You are " + mark(m.botPlayer.Other()) + "\n")

	var highlights []int
	if m.gameOver {
		highlights = m.board.WinningLine()
	}

	for i, p := range m.board.Cells {
		cell := mark(p)
		if m.cursor == i && p == tictactoe.Empty && !m.gameOver {
			cell = cursorStyle("*")
		}

		bStyle := bracketStyle
		winningRow := slices.Contains(highlights, i)
		if winningRow {
			bStyle = winningRowStyle
		}

		if m.board.Turn > 0 && m.board.LastMove == i {
			bStyle = lastMoveBracketStyle
			if winningRow {
				bStyle = lastWinningRowStyle
			}
		}

		s.WriteString(bStyle("[") + cell + bStyle("]"))
		if (i+1)%tictactoe.Size == 0 {
			s.WriteString("\n")
		}
	}

	if sb, ok := m.bot.(statsBot); ok {
		if stats := sb.Stats(); stats != nil {
			how := fmt.Sprintf("best of %d", stats.Candidates)
			if stats.Explored {
				how = "exploring"
			}
			s.WriteString(fmt.Sprintf("\nAgent played: %s (%s, value %s)\n",
				statStyle1(fmt.Sprintf("%d%d", stats.Action.Row, stats.Action.Col)),
				how,
				statStyle2(fmt.Sprintf("%.3f", stats.BestValue)),
			))
		}
	}

	if !m.gameOver {
		s.WriteString("\nMove (row col): " + m.input + "\n")
	}

	if m.err != nil {
		s.WriteString(cursorStyle(m.err.Error()) + "\n")
	}

	if m.gameOver {
		s.WriteString("\n" + gameOverText)
		s.WriteString("\nTHE WINNER IS: ")
		switch m.outcome {
		case tictactoe.Win:
			s.WriteString(mark(tictactoe.Agent))
		case tictactoe.Loss:
			s.WriteString(mark(tictactoe.Opponent))
		default:
			s.WriteString(cursorStyle("NO ONE"))
		}
		s.WriteString("\n\nenter to play again, q to quit\n")
	}

	return s.String()
}

const gameOverText = `ＧＡＭＥ ＯＶＥＲ`
