package tictactd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Zarux/tictactd/internal/logger"
	"github.com/Zarux/tictactd/pkg/episode"
	"github.com/Zarux/tictactd/pkg/td"
	"github.com/Zarux/tictactd/pkg/tictactoe"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrStaleBoard   = errors.New("board hash does not match")
	ErrGameOver     = errors.New("game is over")
)

type agentPlayer interface {
	ChooseAction(*tictactoe.Board) tictactoe.Action
	ClearHistory()
	Values() *td.ValueTable
}

type game struct {
	id        uuid.UUID
	board     *tictactoe.Board
	agentMove tictactoe.Action
	over      bool
}

// DefaultKeepFinished is how many finished games stay readable before the oldest is dropped.
const DefaultKeepFinished = 1024

// Service hosts games between remote players, always O, and the agent, always X.
// The agent does not learn from these games.
type Service struct {
	mu    sync.Mutex
	agent agentPlayer
	games map[uuid.UUID]*game
	tally episode.Tally

	started      int
	finishedIDs  []uuid.UUID
	keepFinished int
}

type Option func(*Service)

// WithKeepFinished bounds the finished games kept for GET. Games in play are never dropped.
func WithKeepFinished(n int) Option {
	return func(s *Service) {
		s.keepFinished = max(n, 0)
	}
}

func New(agent agentPlayer, trained episode.Tally, opts ...Option) *Service {
	s := &Service{
		agent:        agent,
		games:        make(map[uuid.UUID]*game),
		tally:        trained,
		keepFinished: DefaultKeepFinished,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

type GameView struct {
	ID        uuid.UUID `json:"id"`
	State     string    `json:"state"`
	Hash      uint64    `json:"hash,string"`
	AgentMove *Move     `json:"agentMove,omitempty"`
	Over      bool      `json:"over"`
	Outcome   string    `json:"outcome,omitempty"`
	Winner    string    `json:"winner,omitempty"`
}

type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type Stats struct {
	States  int     `json:"states"`
	Games   int     `json:"games"`
	Wins    int     `json:"trainingWins"`
	Losses  int     `json:"trainingLosses"`
	Ties    int     `json:"trainingTies"`
	WinRate float64 `json:"trainingWinRate"`
}

func (g *game) view() GameView {
	v := GameView{
		ID:    g.id,
		State: g.board.Key(),
		Hash:  g.board.Hash(),
		Over:  g.over,
	}

	if !g.agentMove.IsNone() {
		v.AgentMove = &Move{Row: g.agentMove.Row, Col: g.agentMove.Col}
	}

	if g.over {
		o := g.board.Outcome()
		v.Outcome = o.String()
		switch o {
		case tictactoe.Win:
			v.Winner = tictactoe.Agent.Mark()
		case tictactoe.Loss:
			v.Winner = tictactoe.Opponent.Mark()
		}
	}

	return v
}

// NewGame starts a game. The agent has already made its first move in the result.
func (s *Service) NewGame(ctx context.Context) (GameView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := &game{
		id:    uuid.New(),
		board: tictactoe.NewBoard(),
	}
	if err := s.agentTurn(g); err != nil {
		return GameView{}, err
	}
	s.games[g.id] = g
	s.started++

	logger.FromContext(ctx).Info().Stringer("game", g.id).Msg("new game")

	return g.view(), nil
}

// NewMove plays the remote player's move and the agent's reply. hash must be the
// hash of the board the player saw.
func (s *Service) NewMove(ctx context.Context, id uuid.UUID, move Move, hash uint64) (GameView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[id]
	if !ok {
		return GameView{}, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}

	if g.over {
		return GameView{}, fmt.Errorf("%w: %s", ErrGameOver, id)
	}

	if g.board.Hash() != hash {
		return GameView{}, fmt.Errorf("%w: got %d", ErrStaleBoard, hash)
	}

	err := g.board.ApplyAction(tictactoe.Action{Player: tictactoe.Opponent, Row: move.Row, Col: move.Col})
	if err != nil {
		return GameView{}, err
	}

	g.agentMove = tictactoe.NoAction
	if g.settle() {
		s.finished(ctx, g)
		return g.view(), nil
	}

	if err := s.agentTurn(g); err != nil {
		return GameView{}, err
	}
	if g.over {
		s.finished(ctx, g)
	}

	return g.view(), nil
}

func (s *Service) Game(id uuid.UUID) (GameView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[id]
	if !ok {
		return GameView{}, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}

	return g.view(), nil
}

func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		States:  s.agent.Values().Len(),
		Games:   s.started,
		Wins:    s.tally.Wins,
		Losses:  s.tally.Losses,
		Ties:    s.tally.Ties,
		WinRate: s.tally.WinRate(),
	}
}

func (s *Service) agentTurn(g *game) error {
	defer s.agent.ClearHistory()

	a := s.agent.ChooseAction(g.board)
	if err := g.board.ApplyAction(a); err != nil {
		return fmt.Errorf("agent move: %w", err)
	}

	g.agentMove = a
	g.settle()

	return nil
}

// settle marks the game over once it is decided or the board is full.
func (g *game) settle() bool {
	g.over = g.board.Outcome() != tictactoe.Undetermined || g.board.IsTerminal()
	return g.over
}

// finished logs the result and drops the oldest finished games beyond keepFinished.
func (s *Service) finished(ctx context.Context, g *game) {
	logger.FromContext(ctx).Info().
		Stringer("game", g.id).
		Stringer("outcome", g.board.Outcome()).
		Msg("game over")

	s.finishedIDs = append(s.finishedIDs, g.id)
	for len(s.finishedIDs) > s.keepFinished {
		delete(s.games, s.finishedIDs[0])
		s.finishedIDs = s.finishedIDs[1:]
	}
}
