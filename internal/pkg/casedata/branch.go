package casedata

// Branch is a transmission line/cable or a two-winding transformer.
type Branch struct {
	// "from" and "to" bus numbers. Order carries the flow sign and the
	// phase shift direction.
	FBus int `json:"f_bus"`
	TBus int `json:"t_bus"`

	// Series resistance (p.u.).
	BrR float64 `json:"br_r"`

	// Series reactance (p.u.).
	BrX float64 `json:"br_x"`

	// Total line charging susceptance (p.u.).
	BrB float64 `json:"br_b"`

	// MVA ratings: A long term, B short term, C emergency.
	RateA float64 `json:"rate_a"`
	RateB float64 `json:"rate_b"`
	RateC float64 `json:"rate_c"`

	// Transformer off-nominal tap ratio. Zero marks a line.
	Tap float64 `json:"tap"`

	// Transformer phase shift angle (degrees).
	Shift float64 `json:"shift"`

	// Initial branch status.
	BrStatus int `json:"br_status"`

	// Angle difference bounds; angle(Vf) - angle(Vt) (degrees).
	AngMin *float64 `json:"angmin,omitempty"`
	AngMax *float64 `json:"angmax,omitempty"`

	// Power injected at each end (MW, MVAr). Power flow results.
	PF *float64 `json:"pf,omitempty"`
	QF *float64 `json:"qf,omitempty"`
	PT *float64 `json:"pt,omitempty"`
	QT *float64 `json:"qt,omitempty"`

	// Kuhn-Tucker multipliers on MVA and angle limits.
	MuSF     *float64 `json:"mu_sf,omitempty"`
	MuST     *float64 `json:"mu_st,omitempty"`
	MuAngMin *float64 `json:"mu_angmin,omitempty"`
	MuAngMax *float64 `json:"mu_angmax,omitempty"`
}

// NewBranch returns an in-service line between f and t.
func NewBranch(f, t int) Branch {
	return Branch{
		FBus:     f,
		TBus:     t,
		BrStatus: InService,
	}
}

// IsOn reports the branch in-service.
func (br Branch) IsOn() bool { return br.BrStatus != OutOfService }

// IsOff reports the branch out-of-service.
func (br Branch) IsOff() bool { return br.BrStatus == OutOfService }

// IsTransformer reports a branch with an off-nominal tap ratio or a
// phase shift. Plain lines carry a zero tap and a zero shift.
func (br Branch) IsTransformer() bool { return br.Tap != 0 || br.Shift != 0 }

// IsPF reports whether the branch carries power flow results.
func (br Branch) IsPF() bool {
	return br.PF != nil && br.QF != nil && br.PT != nil && br.QT != nil
}

// IsOPF reports whether the branch carries OPF result multipliers.
func (br Branch) IsOPF() bool {
	return br.IsPF() &&
		br.MuSF != nil && br.MuST != nil && br.MuAngMin != nil && br.MuAngMax != nil
}
