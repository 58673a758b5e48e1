package model

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-json"

	"github.com/Skufu/StrokeGuard/internal/features"
)

var (
	// ErrInvalidArtifact is returned when a model file cannot be used.
	ErrInvalidArtifact = errors.New("invalid model artifact")
	// ErrSchemaMismatch is returned when a feature vector does not fit the
	// schema the model was trained on.
	ErrSchemaMismatch = errors.New("feature schema mismatch")
)

// Artifact is the serialized form of a fitted preprocessing + logistic
// regression pipeline: one-hot encoding for categorical columns, standard
// scaling for numeric columns.
type Artifact struct {
	Name        string              `json:"name"`
	Version     string              `json:"version"`
	Intercept   float64             `json:"intercept"`
	Categorical []CategoricalColumn `json:"categorical"`
	Numeric     []NumericColumn     `json:"numeric"`
}

type CategoricalColumn struct {
	Column     string    `json:"column"`
	Categories []string  `json:"categories"`
	Weights    []float64 `json:"weights"`
}

type NumericColumn struct {
	Column string  `json:"column"`
	Mean   float64 `json:"mean"`
	Scale  float64 `json:"scale"`
	Weight float64 `json:"weight"`
}

// Pipeline is a loaded Artifact. It is read-only after construction and
// safe for concurrent use.
type Pipeline struct {
	name      string
	version   string
	intercept float64
	cats      map[string]map[string]float64
	nums      map[string]NumericColumn
	order     []string
}

// Load reads and validates a model artifact from path.
func Load(path string) (*Pipeline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}

	var art Artifact
	if err := json.Unmarshal(raw, &art); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidArtifact, path, err)
	}

	return New(art)
}

// New builds a Pipeline from an in-memory artifact.
func New(art Artifact) (*Pipeline, error) {
	if len(art.Categorical)+len(art.Numeric) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrInvalidArtifact)
	}

	p := &Pipeline{
		name:      art.Name,
		version:   art.Version,
		intercept: art.Intercept,
		cats:      make(map[string]map[string]float64, len(art.Categorical)),
		nums:      make(map[string]NumericColumn, len(art.Numeric)),
	}
	seen := map[string]bool{}

	for _, c := range art.Categorical {
		if c.Column == "" || seen[c.Column] {
			return nil, fmt.Errorf("%w: empty or duplicate column %q", ErrInvalidArtifact, c.Column)
		}
		if len(c.Categories) == 0 || len(c.Categories) != len(c.Weights) {
			return nil, fmt.Errorf("%w: column %q has %d categories and %d weights",
				ErrInvalidArtifact, c.Column, len(c.Categories), len(c.Weights))
		}
		weights := make(map[string]float64, len(c.Categories))
		for i, cat := range c.Categories {
			if _, dup := weights[cat]; dup {
				return nil, fmt.Errorf("%w: column %q repeats category %q", ErrInvalidArtifact, c.Column, cat)
			}
			weights[cat] = c.Weights[i]
		}
		seen[c.Column] = true
		p.cats[c.Column] = weights
		p.order = append(p.order, c.Column)
	}

	for _, n := range art.Numeric {
		if n.Column == "" || seen[n.Column] {
			return nil, fmt.Errorf("%w: empty or duplicate column %q", ErrInvalidArtifact, n.Column)
		}
		if n.Scale <= 0 || math.IsNaN(n.Scale) {
			return nil, fmt.Errorf("%w: column %q has non-positive scale", ErrInvalidArtifact, n.Column)
		}
		seen[n.Column] = true
		p.nums[n.Column] = n
		p.order = append(p.order, n.Column)
	}

	return p, nil
}

func (p *Pipeline) Name() string    { return p.name }
func (p *Pipeline) Version() string { return p.version }

// Columns returns the columns the model expects, categorical first.
func (p *Pipeline) Columns() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// CheckSchema reports whether the model expects exactly the given columns.
func (p *Pipeline) CheckSchema(columns []string) error {
	provided := make(map[string]bool, len(columns))
	for _, c := range columns {
		provided[c] = true
		if !p.expects(c) {
			return fmt.Errorf("%w: unexpected column %q", ErrSchemaMismatch, c)
		}
	}
	for _, c := range p.order {
		if !provided[c] {
			return fmt.Errorf("%w: missing column %q", ErrSchemaMismatch, c)
		}
	}
	return nil
}

func (p *Pipeline) expects(col string) bool {
	if _, ok := p.cats[col]; ok {
		return true
	}
	_, ok := p.nums[col]
	return ok
}

// Predict returns 1 when the decision function is positive, i.e. when the
// positive-class probability exceeds one half.
func (p *Pipeline) Predict(_ context.Context, v features.FeatureVector) (int, error) {
	z, err := p.decision(v)
	if err != nil {
		return 0, err
	}
	if z > 0 {
		return 1, nil
	}
	return 0, nil
}

// PredictProba returns [P(class=0), P(class=1)].
func (p *Pipeline) PredictProba(_ context.Context, v features.FeatureVector) ([2]float64, error) {
	z, err := p.decision(v)
	if err != nil {
		return [2]float64{}, err
	}
	p1 := sigmoid(z)
	return [2]float64{1 - p1, p1}, nil
}

func (p *Pipeline) decision(v features.FeatureVector) (float64, error) {
	cells := v.Cells()
	byColumn := make(map[string]features.Cell, len(cells))
	for _, c := range cells {
		byColumn[c.Column] = c
	}

	z := p.intercept
	for _, col := range p.order {
		cell, ok := byColumn[col]
		if !ok {
			return 0, fmt.Errorf("%w: missing column %q", ErrSchemaMismatch, col)
		}

		if weights, ok := p.cats[col]; ok {
			if !cell.Categorical {
				return 0, fmt.Errorf("%w: column %q must be categorical", ErrSchemaMismatch, col)
			}
			w, known := weights[cell.Text]
			if !known {
				return 0, fmt.Errorf("%w: unseen category %q in column %q", ErrSchemaMismatch, cell.Text, col)
			}
			z += w
			continue
		}

		num := p.nums[col]
		if cell.Categorical {
			return 0, fmt.Errorf("%w: column %q must be numeric", ErrSchemaMismatch, col)
		}
		z += num.Weight * (cell.Number - num.Mean) / num.Scale
	}

	return z, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
