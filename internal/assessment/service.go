package assessment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Skufu/StrokeGuard/internal/features"
)

// ErrPrediction wraps any failure of the model collaborator. No result is
// produced when it is returned.
var ErrPrediction = errors.New("prediction failed")

// Predictor is the pre-trained classifier.
type Predictor interface {
	Predict(ctx context.Context, v features.FeatureVector) (int, error)
	PredictProba(ctx context.Context, v features.FeatureVector) ([2]float64, error)
}

// Scorer is implemented by predictors that return the class and the
// probability row from a single inference call.
type Scorer interface {
	Score(ctx context.Context, v features.FeatureVector) (int, [2]float64, error)
}

// Recorder receives assessment outcomes. A nil Recorder is allowed.
type Recorder interface {
	AssessmentCompleted(category string)
	AssessmentFailed(reason string)
	PredictionObserved(d time.Duration)
}

type Service struct {
	predictor Predictor
	recorder  Recorder
	logger    zerolog.Logger
	newID     func() string

	mu sync.Mutex
}

type Option func(*Service)

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithIDFunc overrides assessment id generation.
func WithIDFunc(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func NewService(p Predictor, opts ...Option) *Service {
	s := &Service{
		predictor: p,
		logger:    log.Logger,
		newID:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assess runs one full assessment. Assessments are serialized; the next one
// starts only after the current one has finished.
func (s *Service) Assess(ctx context.Context, in features.PatientInput) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	vector := features.Normalize(in)

	start := time.Now()
	class, proba, stage, err := s.predict(ctx, vector)
	if err != nil {
		return Result{}, s.fail(id, stage, err)
	}
	if s.recorder != nil {
		s.recorder.PredictionObserved(time.Since(start))
	}

	if class != 0 && class != 1 {
		return Result{}, s.fail(id, "class", fmt.Errorf("unexpected class %d", class))
	}
	if err := checkProba(proba); err != nil {
		return Result{}, s.fail(id, "predict_proba", err)
	}

	result := Interpret(class, proba[1], in)
	result.ID = id

	if s.recorder != nil {
		s.recorder.AssessmentCompleted(result.Category)
	}
	s.logger.Info().
		Str("assessment_id", id).
		Str("category", result.Category).
		Float64("probability", result.Probability).
		Int("risk_factors", len(result.RiskFactors)).
		Msg("assessment completed")

	return result, nil
}

func (s *Service) predict(ctx context.Context, v features.FeatureVector) (int, [2]float64, string, error) {
	if sc, ok := s.predictor.(Scorer); ok {
		class, proba, err := sc.Score(ctx, v)
		return class, proba, "predict", err
	}

	class, err := s.predictor.Predict(ctx, v)
	if err != nil {
		return 0, [2]float64{}, "predict", err
	}
	proba, err := s.predictor.PredictProba(ctx, v)
	if err != nil {
		return 0, [2]float64{}, "predict_proba", err
	}
	return class, proba, "", nil
}

// checkProba rejects rows that are not a probability distribution.
func checkProba(p [2]float64) error {
	for _, v := range p {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("probability row %v out of range", p)
		}
	}
	if math.Abs(p[0]+p[1]-1) > 1e-6 {
		return fmt.Errorf("probability row %v does not sum to 1", p)
	}
	return nil
}

func (s *Service) fail(id, stage string, err error) error {
	if s.recorder != nil {
		s.recorder.AssessmentFailed(stage)
	}
	s.logger.Error().Err(err).
		Str("assessment_id", id).
		Str("stage", stage).
		Msg("assessment failed")
	return fmt.Errorf("%w: %s: %w", ErrPrediction, stage, err)
}
