package casedata

import "math"

// Gen is a generator or dispatchable load.
type Gen struct {
	// Bus number.
	GenBus int `json:"gen_bus"`

	// Real power output (MW).
	PG float64 `json:"pg"`

	// Reactive power output (MVAr).
	QG float64 `json:"qg"`

	// Reactive power output bounds (MVAr).
	QMax float64 `json:"qmax"`
	QMin float64 `json:"qmin"`

	// Voltage magnitude setpoint (p.u.).
	VG float64 `json:"vg"`

	// Total MVA base of this machine, defaults to the system MVA base.
	MBase float64 `json:"mbase"`

	// Machine status.
	GenStatus int `json:"gen_status"`

	// Real power output bounds (MW).
	PMax float64 `json:"pmax"`
	PMin float64 `json:"pmin"`

	// PQ capability curve end points (MW, MVAr). Version 2 fields.
	PC1    *float64 `json:"pc1,omitempty"`
	PC2    *float64 `json:"pc2,omitempty"`
	QC1Min *float64 `json:"qc1min,omitempty"`
	QC1Max *float64 `json:"qc1max,omitempty"`
	QC2Min *float64 `json:"qc2min,omitempty"`
	QC2Max *float64 `json:"qc2max,omitempty"`

	// Ramp rates: load following/AGC (MW/min), 10 and 30 minute
	// reserves (MW), reactive power (MVAr/min).
	RampAGC *float64 `json:"ramp_agc,omitempty"`
	Ramp10  *float64 `json:"ramp_10,omitempty"`
	Ramp30  *float64 `json:"ramp_30,omitempty"`
	RampQ   *float64 `json:"ramp_q,omitempty"`

	// Area participation factor.
	APF *float64 `json:"apf,omitempty"`

	// Kuhn-Tucker multipliers on output limits (u/MW, u/MVAr).
	MuPMax *float64 `json:"mu_pmax,omitempty"`
	MuPMin *float64 `json:"mu_pmin,omitempty"`
	MuQMax *float64 `json:"mu_qmax,omitempty"`
	MuQMin *float64 `json:"mu_qmin,omitempty"`
}

// NewGen returns an in-service machine with open limits and unity voltage
// setpoint.
func NewGen(bus int) Gen {
	return Gen{
		GenBus:    bus,
		QMax:      math.Inf(1),
		QMin:      math.Inf(-1),
		VG:        1.0,
		GenStatus: InService,
		PMax:      math.Inf(1),
		PMin:      math.Inf(-1),
	}
}

// IsOn reports the machine in-service.
func (g Gen) IsOn() bool { return g.GenStatus != OutOfService }

// IsOff reports the machine out-of-service.
func (g Gen) IsOff() bool { return g.GenStatus == OutOfService }

// IsLoad reports a dispatchable load: negative lower and zero upper real
// power limit.
func (g Gen) IsLoad() bool { return g.PMin < 0 && g.PMax == 0 }

// IsVersion1 reports whether the PC1..APF columns are absent, as in a
// version 1 case.
func (g Gen) IsVersion1() bool {
	return g.PC1 == nil && g.PC2 == nil &&
		g.QC1Min == nil && g.QC1Max == nil &&
		g.QC2Min == nil && g.QC2Max == nil &&
		g.RampAGC == nil && g.Ramp10 == nil && g.Ramp30 == nil && g.RampQ == nil &&
		g.APF == nil
}

// IsOPF reports whether the machine carries OPF result multipliers.
func (g Gen) IsOPF() bool {
	return g.MuPMax != nil && g.MuPMin != nil && g.MuQMax != nil && g.MuQMin != nil
}
