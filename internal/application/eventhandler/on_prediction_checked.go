package eventhandler

import (
	"sync"

	"github.com/alem-hub/ozlympic/internal/domain/shared"
	"github.com/alem-hub/ozlympic/pkg/logger"
)

// PredictionTally counts checked predictions for the farewell summary.
type PredictionTally struct {
	mu      sync.Mutex
	total   int
	correct int
	logger  *logger.Logger
}

// NewPredictionTally creates an empty tally.
func NewPredictionTally(log *logger.Logger) *PredictionTally {
	if log == nil {
		log = logger.Nop()
	}
	return &PredictionTally{logger: log.With(logger.String("handler", "prediction_tally"))}
}

// Handle implements shared.EventHandler.
func (t *PredictionTally) Handle(e shared.Event) error {
	checked, ok := e.(shared.PredictionCheckedEvent)
	if !ok {
		return nil
	}

	t.mu.Lock()
	t.total++
	if checked.Correct {
		t.correct++
	}
	t.mu.Unlock()

	t.logger.Info("prediction checked",
		logger.RunID(checked.RunID),
		logger.EventID(checked.ContestID),
		logger.String("predicted", checked.Predicted),
		logger.Bool("correct", checked.Correct))
	return nil
}

// Score returns correct and total predictions.
func (t *PredictionTally) Score() (correct, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.correct, t.total
}
