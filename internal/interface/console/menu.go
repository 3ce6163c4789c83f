// Package console is the terminal front end of a tournament: a numbered menu
// read from an input stream, with every screen rendered by the Presenter.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"strconv"

	"github.com/alem-hub/ozlympic/internal/application/query"
	"github.com/alem-hub/ozlympic/internal/application/session"
	"github.com/alem-hub/ozlympic/internal/domain/shared"
	"github.com/alem-hub/ozlympic/pkg/logger"
)

// Menu options.
const (
	OptionSelect = iota + 1
	OptionPredict
	OptionStart
	OptionResults
	OptionPoints
	OptionExit
)

// Scorer reports how many predictions were right.
type Scorer interface {
	Score() (correct, total int)
}

// Config configures the menu.
type Config struct {
	Title string
}

// DefaultConfig returns the default menu configuration.
func DefaultConfig() Config {
	return Config{Title: "Ozlympic Game"}
}

// Menu runs the interactive loop.
type Menu struct {
	session   *session.Session
	results   *query.GetResultsHandler
	standings *query.GetStandingsHandler
	scorer    Scorer

	presenter *Presenter
	in        *tokens
	out       io.Writer
	log       *logger.Logger
	config    Config
}

// NewMenu creates a menu reading whitespace-separated answers from in.
// scorer and log may be nil.
func NewMenu(
	in io.Reader,
	out io.Writer,
	sess *session.Session,
	results *query.GetResultsHandler,
	standingsQuery *query.GetStandingsHandler,
	scorer Scorer,
	log *logger.Logger,
	config Config,
) *Menu {
	if log == nil {
		log = logger.Nop()
	}
	if config.Title == "" {
		config = DefaultConfig()
	}
	return &Menu{
		session:   sess,
		results:   results,
		standings: standingsQuery,
		scorer:    scorer,
		presenter: NewPresenter(),
		in:        newTokens(in),
		out:       out,
		log:       log.With(logger.Component("console")),
		config:    config,
	}
}

// Run shows the menu until the operator exits or the input ends, which both
// return nil. Cancelling ctx returns its error.
func (m *Menu) Run(ctx context.Context) error {
	for {
		m.print(m.presenter.Menu(m.config.Title))

		exit, err := m.step(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.print(m.presenter.Error(err))
		}
		if exit {
			return nil
		}
		m.print("\n")
	}
}

// step reads one option and runs it. A panic inside an option is reported
// as an error and the loop goes on.
func (m *Menu) step(ctx context.Context) (exit bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("menu option panicked",
				logger.Any("panic", r),
				logger.String("stack", string(debug.Stack())))
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	option, err := m.readOption(ctx, "Enter an option: ", OptionSelect, OptionExit)
	if err != nil {
		return false, err
	}

	m.log.Debug("menu option", logger.Int("option", option))

	switch option {
	case OptionSelect:
		return false, m.selectEvent(ctx)
	case OptionPredict:
		return false, m.predict(ctx)
	case OptionStart:
		return false, m.start(ctx)
	case OptionResults:
		return false, m.showResults(ctx)
	case OptionPoints:
		return false, m.showPoints(ctx)
	default:
		correct, total := 0, 0
		if m.scorer != nil {
			correct, total = m.scorer.Score()
		}
		m.print(m.presenter.Farewell(correct, total))
		return true, nil
	}
}

func (m *Menu) selectEvent(ctx context.Context) error {
	res, err := m.results.Handle(ctx, query.GetResultsQuery{})
	if err != nil {
		return err
	}

	m.print(m.presenter.EventChoices(res.Events))
	cancel := len(res.Events) + 1
	option, err := m.readOption(ctx, "Enter an option: ", 1, cancel)
	if err != nil || option == cancel {
		return err
	}

	ev, err := m.session.SelectEvent(option - 1)
	if err != nil {
		return err
	}
	m.print(m.presenter.Selected(ev.String()))
	return nil
}

func (m *Menu) predict(ctx context.Context) error {
	current := m.session.Current()
	if current == nil {
		return shared.ErrNoEventSelected
	}
	if current.IsFinished() {
		return shared.ErrSelectedFinished
	}

	lineup := query.EventToDTO(current)
	m.print(m.presenter.EventLineup(lineup))

	n := len(lineup.Athletes)
	position, err := m.readOption(ctx, fmt.Sprintf("Who is the winner you predict (1 ~ %d): ", n), 1, n)
	if err != nil {
		return err
	}

	picked, err := m.session.Predict(position)
	if err != nil {
		return err
	}
	m.print(m.presenter.Selected(picked.Label()))
	return nil
}

func (m *Menu) start(ctx context.Context) error {
	outcome, err := m.session.Start(ctx)
	if err != nil {
		return err
	}
	m.print(m.presenter.Outcome(outcome))
	return nil
}

func (m *Menu) showResults(ctx context.Context) error {
	res, err := m.results.Handle(ctx, query.GetResultsQuery{})
	if err != nil {
		return err
	}
	m.print(m.presenter.Results(res))
	return nil
}

func (m *Menu) showPoints(ctx context.Context) error {
	res, err := m.standings.Handle(ctx, query.GetStandingsQuery{})
	if err != nil {
		return err
	}
	m.print(m.presenter.Standings(res.Entries))
	return nil
}

// readOption prompts for an integer in [min, max].
func (m *Menu) readOption(ctx context.Context, prompt string, min, max int) (int, error) {
	m.print(prompt)

	tok, err := m.in.next(ctx)
	if err != nil {
		return 0, err
	}
	m.print("\n")

	n, err := strconv.Atoi(tok)
	if err != nil || n < min || n > max {
		return 0, shared.ErrInvalidOption
	}
	return n, nil
}

func (m *Menu) print(s string) {
	if _, err := io.WriteString(m.out, s); err != nil {
		m.log.Warn("write failed", logger.Err(err))
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// INPUT
// ══════════════════════════════════════════════════════════════════════════════

// tokens reads whitespace-separated words on a background goroutine so that
// a blocked read does not keep Run from seeing a cancelled context.
//
// The goroutine is not stopped by cancellation: it stays parked in Read (or on
// the send of a word nobody takes) until the input ends or the process exits.
// Reads from a terminal cannot be interrupted, and a menu lives as long as the
// process, so the leak is accepted.
type tokens struct {
	ch  chan string
	err error
}

func newTokens(r io.Reader) *tokens {
	t := &tokens{ch: make(chan string)}
	go func() {
		defer close(t.ch)
		sc := bufio.NewScanner(r)
		sc.Split(bufio.ScanWords)
		for sc.Scan() {
			t.ch <- sc.Text()
		}
		t.err = sc.Err()
	}()
	return t
}

// next returns the next word, io.EOF once the input is exhausted.
func (t *tokens) next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case tok, ok := <-t.ch:
		if !ok {
			if t.err != nil {
				return "", t.err
			}
			return "", io.EOF
		}
		return tok, nil
	}
}
