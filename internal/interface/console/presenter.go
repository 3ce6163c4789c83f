package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alem-hub/ozlympic/internal/application/query"
	"github.com/alem-hub/ozlympic/internal/application/session"
	"github.com/alem-hub/ozlympic/internal/domain/shared"
	"github.com/alem-hub/ozlympic/internal/domain/standings"
)

// ══════════════════════════════════════════════════════════════════════════════
// PRESENTER
// Formats tournament data as plain-text blocks for the terminal.
// ══════════════════════════════════════════════════════════════════════════════

const (
	resultPattern    = "%-8s%-18s%-10s%-6s"
	standingsHeader  = "%-6s%-18s%-15s%-6s%-8s%-10s\n"
	standingsPattern = "%-6d%-18s%-15s%-6d%-8s%-10d\n"
	resultIndent     = "           "
)

// Presenter renders views. It holds no state.
type Presenter struct{}

// NewPresenter creates a presenter.
func NewPresenter() *Presenter {
	return &Presenter{}
}

// Menu returns the main menu.
func (p *Presenter) Menu(title string) string {
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n===================================\n")
	sb.WriteString("1. Select an event to run\n")
	sb.WriteString("2. Predict the winner of the event\n")
	sb.WriteString("3. Start the event\n")
	sb.WriteString("4. Display the final results of all events\n")
	sb.WriteString("5. Display the points of all athletes\n")
	sb.WriteString("6. Exit\n")
	return sb.String()
}

// EventChoices lists the contests followed by a cancel option.
func (p *Presenter) EventChoices(events []query.EventResultDTO) string {
	var sb strings.Builder
	sb.WriteString("Select an event:\n")
	for i, ev := range events {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, ev.Summary)
	}
	fmt.Fprintf(&sb, "  %d. Cancel\n", len(events)+1)
	return sb.String()
}

// Selected confirms a choice, e.g. "R01: sprint (5 athletes) is selected."
func (p *Presenter) Selected(what string) string {
	return what + " is selected.\n"
}

// EventLineup shows a contest's referee and numbered roster.
func (p *Presenter) EventLineup(ev query.EventResultDTO) string {
	var sb strings.Builder
	p.eventHeader(&sb, ev)
	sb.WriteString("Athletes :\n")
	for i, label := range ev.Athletes {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, label)
	}
	sb.WriteString("\n")
	return sb.String()
}

// EventResult shows a contest's result table, or that it has not started.
func (p *Presenter) EventResult(ev query.EventResultDTO) string {
	var sb strings.Builder
	p.eventHeader(&sb, ev)

	if !ev.IsFinished() {
		sb.WriteString("Result   : Not started.\n\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "Result   : "+resultPattern+"\n", "Rank", "Athlete", "Time(s)", "Score")
	for _, row := range ev.Rows {
		fmt.Fprintf(&sb, resultIndent+resultPattern+"\n",
			strconv.Itoa(row.Rank), row.Athlete, formatTime(row.Time), strconv.Itoa(row.Points))
	}
	sb.WriteString("\n")
	return sb.String()
}

// Results renders every contest's result block.
func (p *Presenter) Results(res *query.GetResultsResult) string {
	var sb strings.Builder
	for _, ev := range res.Events {
		sb.WriteString(p.EventResult(ev))
	}
	return sb.String()
}

func (p *Presenter) eventHeader(sb *strings.Builder, ev query.EventResultDTO) {
	fmt.Fprintf(sb, "Event ID : %s\n", ev.ID)
	fmt.Fprintf(sb, "Event    : %s\n", ev.Kind)
	fmt.Fprintf(sb, "Referee  : %s\n", ev.Referee)
}

// Outcome narrates a contest that has just been run.
func (p *Presenter) Outcome(out *session.Outcome) string {
	var sb strings.Builder
	ev := out.Event

	fmt.Fprintf(&sb, "%s: %s (%d athletes) started...\n", ev.ID(), ev.Kind(), ev.Size())
	for _, r := range out.Results {
		fmt.Fprintf(&sb, "  Time of %s: %s(s)\n", r.Competitor.Label(), formatTime(r.Time))
	}
	sb.WriteString(ev.String())
	sb.WriteString("\n")

	sb.WriteString("Winner is")
	for _, w := range out.Winners {
		sb.WriteString(" ")
		sb.WriteString(w.Label())
	}
	sb.WriteString(".\n")

	if out.HasPrediction() {
		if out.Correct {
			sb.WriteString("Congratulations! Your prediction is correct!\n")
		} else {
			sb.WriteString("Sorry, your prediction is incorrect!\n")
		}
	}
	if out.PublishErr != nil {
		fmt.Fprintf(&sb, "Warning: results were not fully recorded: %v\n", out.PublishErr)
	}
	return sb.String()
}

// Standings renders the points table.
func (p *Presenter) Standings(entries []standings.Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, standingsHeader, "Rank", "Athlete", "Type", "Age", "State", "Points")
	for _, e := range entries {
		fmt.Fprintf(&sb, standingsPattern, int(e.Rank), e.Label, e.Profile, e.Age, e.State, e.Points)
	}
	return sb.String()
}

// Error renders an error for the operator. Domain errors show only their
// message.
func (p *Presenter) Error(err error) string {
	return "Error: " + shared.UserMessage(err) + "\n"
}

// Farewell is printed on exit.
func (p *Presenter) Farewell(correct, total int) string {
	if total == 0 {
		return "Bye!\n"
	}
	return fmt.Sprintf("You predicted %d of %d winners. Bye!\n", correct, total)
}

// formatTime prints whole seconds without a fraction.
func formatTime(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}
