package casedata

import "math"

// DCLine is a dispatchable DC transmission line between a rectifier
// ("from") and an inverter ("to") terminal.
type DCLine struct {
	// "from" and "to" bus numbers.
	FBus int `json:"f_bus"`
	TBus int `json:"t_bus"`

	// Initial DC line status.
	BrStatus int `json:"br_status"`

	// Flow at each end, "from" -> "to" (MW).
	PF float64 `json:"pf"`
	PT float64 `json:"pt"`

	// Injection at each end (MVAr).
	QF float64 `json:"qf"`
	QT float64 `json:"qt"`

	// Voltage setpoints at each end (p.u.).
	VF float64 `json:"vf"`
	VT float64 `json:"vt"`

	// MW flow bounds at the "from" end.
	PMin float64 `json:"pmin"`
	PMax float64 `json:"pmax"`

	// MVAr injection bounds at the "from" end.
	QMinF float64 `json:"qminf"`
	QMaxF float64 `json:"qmaxf"`

	// MVAr injection bounds at the "to" end.
	QMinT float64 `json:"qmint"`
	QMaxT float64 `json:"qmaxt"`

	// Linear loss function l(p) = loss0 + loss1*p (MW, MW/MW).
	Loss0 float64 `json:"loss0"`
	Loss1 float64 `json:"loss1"`

	// Kuhn-Tucker multipliers on flow and injection limits.
	MuPMin  *float64 `json:"mu_pmin,omitempty"`
	MuPMax  *float64 `json:"mu_pmax,omitempty"`
	MuQMinF *float64 `json:"mu_qminf,omitempty"`
	MuQMaxF *float64 `json:"mu_qmaxf,omitempty"`
	MuQMinT *float64 `json:"mu_qmint,omitempty"`
	MuQMaxT *float64 `json:"mu_qmaxt,omitempty"`
}

// NewDCLine returns an in-service DC line with open limits and unity
// voltage setpoints.
func NewDCLine(f, t int) DCLine {
	return DCLine{
		FBus:     f,
		TBus:     t,
		BrStatus: InService,
		VF:       1.0,
		VT:       1.0,
		PMin:     math.Inf(-1),
		PMax:     math.Inf(1),
		QMinF:    math.Inf(-1),
		QMaxF:    math.Inf(1),
		QMinT:    math.Inf(-1),
		QMaxT:    math.Inf(1),
	}
}

// IsOn reports the DC line in-service.
func (ln DCLine) IsOn() bool { return ln.BrStatus != OutOfService }

// IsOff reports the DC line out-of-service.
func (ln DCLine) IsOff() bool { return ln.BrStatus == OutOfService }

// IsOPF reports whether the line carries OPF result multipliers.
func (ln DCLine) IsOPF() bool {
	return ln.MuPMin != nil && ln.MuPMax != nil &&
		ln.MuQMinF != nil && ln.MuQMaxF != nil &&
		ln.MuQMinT != nil && ln.MuQMaxT != nil
}
