package casedata

import "math"

// Bus types.
const (
	// PQ bus: fixed active and reactive power.
	PQ = 1
	// PV bus: fixed voltage magnitude and active power.
	PV = 2
	// REF bus: voltage angle reference, slack active and reactive power.
	REF = 3
	// NONE marks an isolated bus.
	NONE = 4
)

// Bus is one node of the network with demand and shunt admittance
// aggregated onto it.
type Bus struct {
	// Bus number.
	BusI int `json:"bus_i"`

	// Bus type.
	BusType int `json:"bus_type"`

	// Real power demand (MW).
	PD float64 `json:"pd"`

	// Reactive power demand (MVAr).
	QD float64 `json:"qd"`

	// Shunt conductance (MW at V = 1.0 p.u.).
	GS float64 `json:"gs"`

	// Shunt susceptance (MVAr at V = 1.0 p.u.).
	BS float64 `json:"bs"`

	// Area number.
	BusArea int `json:"bus_area"`

	// Voltage magnitude (p.u.).
	VM float64 `json:"vm"`

	// Voltage angle (degrees).
	VA float64 `json:"va"`

	// Base voltage (kV).
	BaseKV float64 `json:"base_kv"`

	// Loss zone.
	Zone int `json:"zone"`

	// Voltage magnitude bounds (p.u.).
	VMax float64 `json:"vmax"`
	VMin float64 `json:"vmin"`

	// Lagrange multipliers on power mismatch (u/MW, u/MVAr).
	LamP *float64 `json:"lam_p,omitempty"`
	LamQ *float64 `json:"lam_q,omitempty"`

	// Kuhn-Tucker multipliers on voltage limits (u/p.u.).
	MuVMax *float64 `json:"mu_vmax,omitempty"`
	MuVMin *float64 `json:"mu_vmin,omitempty"`
}

// NewBus returns a PQ bus with default operating point and open voltage
// bounds.
func NewBus(i int) Bus {
	return Bus{
		BusI:    i,
		BusType: PQ,
		BusArea: 1,
		VM:      1.0,
		Zone:    1,
		VMax:    math.Inf(1),
		VMin:    math.Inf(-1),
	}
}

// IsPQ reports fixed active and reactive power.
func (b Bus) IsPQ() bool { return b.BusType == PQ }

// IsPV reports fixed voltage magnitude and active power.
func (b Bus) IsPV() bool { return b.BusType == PV }

// IsRef reports the voltage angle reference bus.
func (b Bus) IsRef() bool { return b.BusType == REF }

// IsIsolated reports a bus with no recognized type.
func (b Bus) IsIsolated() bool { return !(b.IsPQ() || b.IsPV() || b.IsRef()) }

// IsOPF reports whether the bus carries OPF result multipliers.
func (b Bus) IsOPF() bool {
	return b.LamP != nil && b.LamQ != nil && b.MuVMax != nil && b.MuVMin != nil
}
