// Package poisson provides Poisson probabilities for goal counts, both exact
// and from a precomputed table on a discretised intensity grid.
package poisson

import "math"

// Default table bounds.
const (
	DefaultStep      = 0.1
	DefaultMaxLambda = 6.0
	DefaultMaxK      = 10
)

// PMF returns P(X=k) for X ~ Poisson(lambda). Computed by incremental
// multiplication so no factorial is ever materialised.
func PMF(lambda float64, k int) float64 {
	if k < 0 || math.IsNaN(lambda) || lambda < 0 {
		return 0
	}
	if lambda == 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	p := math.Exp(-lambda)
	for i := 1; i <= k; i++ {
		p *= lambda / float64(i)
	}
	return p
}

// CDF returns P(X<=k). Negative k yields 0.
func CDF(lambda float64, k int) float64 {
	if k < 0 {
		return 0
	}
	if math.IsNaN(lambda) || lambda < 0 {
		lambda = 0
	}
	term := math.Exp(-lambda)
	sum := term
	for i := 1; i <= k; i++ {
		term *= lambda / float64(i)
		sum += term
	}
	return math.Min(sum, 1)
}

// Table holds PMF and cumulative rows for lambda in [0, maxLambda] at a fixed step.
type Table struct {
	step      float64
	maxLambda float64
	maxK      int
	pmf       [][]float64
	cdf       [][]float64
}

// Option applies a configuration option to the Table.
type Option func(*Table)

// WithStep sets the lambda grid resolution.
func WithStep(step float64) Option {
	return func(t *Table) {
		if step > 0 {
			t.step = step
		}
	}
}

// WithMaxLambda sets the largest lambda on the grid.
func WithMaxLambda(maxLambda float64) Option {
	return func(t *Table) {
		if maxLambda > 0 {
			t.maxLambda = maxLambda
		}
	}
}

// WithMaxK sets the largest goal count on the grid.
func WithMaxK(maxK int) Option {
	return func(t *Table) {
		if maxK > 0 {
			t.maxK = maxK
		}
	}
}

// NewTable precomputes the grid.
func NewTable(opts ...Option) *Table {
	t := &Table{
		step:      DefaultStep,
		maxLambda: DefaultMaxLambda,
		maxK:      DefaultMaxK,
	}
	for _, opt := range opts {
		opt(t)
	}

	rows := int(math.Round(t.maxLambda/t.step)) + 1
	t.pmf = make([][]float64, rows)
	t.cdf = make([][]float64, rows)
	for r := 0; r < rows; r++ {
		lambda := float64(r) * t.step
		t.pmf[r] = make([]float64, t.maxK+1)
		t.cdf[r] = make([]float64, t.maxK+1)
		sum := 0.0
		for k := 0; k <= t.maxK; k++ {
			p := PMF(lambda, k)
			sum += p
			t.pmf[r][k] = p
			t.cdf[r][k] = math.Min(sum, 1)
		}
	}
	return t
}

// MaxK returns the largest goal count stored.
func (t *Table) MaxK() int { return t.maxK }

// MaxLambda returns the largest lambda on the grid.
func (t *Table) MaxLambda() float64 { return t.maxLambda }

// Quantize maps lambda to its grid row. Out-of-domain values are clamped.
func (t *Table) Quantize(lambda float64) int {
	if math.IsNaN(lambda) || lambda <= 0 {
		return 0
	}
	if lambda >= t.maxLambda {
		return len(t.pmf) - 1
	}
	return int(math.Round(lambda / t.step))
}

// PMF returns the tabled P(X=k).
func (t *Table) PMF(lambda float64, k int) float64 {
	if k < 0 || k > t.maxK {
		return 0
	}
	return t.pmf[t.Quantize(lambda)][k]
}

// CDF returns the tabled P(X<=k). k beyond the table returns the last cumulative value.
func (t *Table) CDF(lambda float64, k int) float64 {
	if k < 0 {
		return 0
	}
	if k > t.maxK {
		k = t.maxK
	}
	return t.cdf[t.Quantize(lambda)][k]
}
