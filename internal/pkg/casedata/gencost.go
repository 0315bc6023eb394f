package casedata

// Cost function models.
const (
	// PWLinear is the piecewise linear cost model.
	PWLinear = 1
	// Polynomial is the polynomial cost model.
	Polynomial = 2
)

// GenCost is a generator cost function, one per Gen row.
type GenCost struct {
	// Cost function model.
	Model int `json:"model"`

	// Startup cost (US dollars).
	Startup float64 `json:"startup"`

	// Shutdown cost (US dollars).
	Shutdown float64 `json:"shutdown"`

	// Number of end/breakpoints of a piecewise linear cost function or
	// of coefficients of a polynomial cost function.
	NCost int `json:"ncost"`

	// Piecewise linear end/breakpoints (p, f(p)).
	Points [][2]float64 `json:"points,omitempty"`

	// Polynomial coefficients, highest order first.
	Coeffs []float64 `json:"coeffs,omitempty"`
}

// NewGenCost returns an empty cost function of the given model.
func NewGenCost(model int) GenCost {
	return GenCost{Model: model}
}

// IsPWL reports a piecewise linear cost function.
func (c GenCost) IsPWL() bool { return c.Model == PWLinear }

// IsPolynomial reports a polynomial cost function.
func (c GenCost) IsPolynomial() bool { return c.Model == Polynomial }
