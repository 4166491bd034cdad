package vulnerability

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/couchcryptid/flood-vulnerability-service/internal/domain"
	"github.com/couchcryptid/flood-vulnerability-service/internal/fuzzy"
)

// Evaluation is one scored input vector.
type Evaluation struct {
	Score  float64
	Method string // domain.InferenceFuzzy or domain.InferenceFallback
	Fired  int
}

// Engine scores input vectors against a built model. It is safe for
// concurrent use.
type Engine struct {
	model  *fuzzy.Model
	logger *slog.Logger
}

// NewEngine builds the rule base. Call it once at startup and share the
// result across requests.
func NewEngine(logger *slog.Logger) (*Engine, error) {
	m, err := BuildModel()
	if err != nil {
		return nil, err
	}
	return &Engine{model: m, logger: logger}, nil
}

// Model returns the underlying fuzzy model.
func (e *Engine) Model() *fuzzy.Model { return e.model }

// Evaluate clamps v and runs fuzzy inference. Any inference failure,
// including a panic, is replaced by the Fallback heuristic.
func (e *Engine) Evaluate(v domain.InputVector) Evaluation {
	v = v.Clamp()

	inf, err := e.infer(v)
	if err != nil {
		e.logger.Error("fuzzy inference failed", "error", err)
		score := Fallback(v)
		e.logger.Info("using fallback score", "fvi", score)
		return Evaluation{Score: score, Method: domain.InferenceFallback}
	}
	return Evaluation{
		Score:  clampScore(inf.Value),
		Method: domain.InferenceFuzzy,
		Fired:  inf.Fired,
	}
}

func (e *Engine) infer(v domain.InputVector) (inf fuzzy.Inference, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("inference panic: %v", r)
		}
	}()
	if e == nil || e.model == nil {
		return fuzzy.Inference{}, fmt.Errorf("%w: model not built", fuzzy.ErrEmptyOutput)
	}
	inf, err = e.model.Infer(modelInputs(v))
	if err == nil && (math.IsNaN(inf.Value) || math.IsInf(inf.Value, 0)) {
		err = fmt.Errorf("%w: non-finite centroid", fuzzy.ErrEmptyOutput)
	}
	return inf, err
}

// Fallback is the additive heuristic used when inference fails. It is a pure
// function of the clamped inputs and always lies in [0, 100].
func Fallback(v domain.InputVector) float64 {
	v = v.Clamp()
	score := 30.0

	switch {
	case v.Rainfall >= 100:
		score += 25
	case v.Rainfall >= 50:
		score += 15
	case v.Rainfall >= 20:
		score += 8
	}

	switch {
	case v.Imperviousness >= 70:
		score += 20
	case v.Imperviousness >= 50:
		score += 12
	case v.Imperviousness >= 30:
		score += 6
	}

	switch {
	case v.DistanceWater <= 100:
		score += 15
	case v.DistanceWater <= 500:
		score += 10
	case v.DistanceWater <= 2000:
		score += 5
	}

	switch {
	case v.Elevation <= 300:
		score += 10
	case v.Elevation <= 600:
		score += 5
	}

	switch {
	case v.Slope <= 3:
		score += 5
	case v.Slope >= 25:
		score -= 5
	}

	return clampScore(score)
}

func clampScore(s float64) float64 {
	return math.Max(0, math.Min(s, 100))
}
