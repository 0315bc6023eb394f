// Package raw holds the in-memory representation of a raw power flow
// exchange network: bus, load, shunt, generator, branch, transformer and
// two-terminal DC line records, each carrying impedances and ratings on
// their own declared bases. Networks marshal to and from JSON documents.
package raw

// CaseID is the network-level header record.
type CaseID struct {
	// Change code. 0 for a base case.
	IC int `json:"ic"`

	// System MVA base.
	SBase float64 `json:"sbase"`

	// Exchange format revision.
	Rev int `json:"rev"`

	// System frequency (Hz).
	BasFrq *float64 `json:"basfrq,omitempty"`
}

// Network is one raw network: a header plus ordered record collections.
type Network struct {
	CaseID CaseID `json:"caseid"`

	Buses          []Bus               `json:"buses"`
	Loads          []Load              `json:"loads,omitempty"`
	FixedShunts    []FixedShunt        `json:"fixed_shunts,omitempty"`
	SwitchedShunts []SwitchedShunt     `json:"switched_shunts,omitempty"`
	Generators     []Generator         `json:"generators,omitempty"`
	Branches       []Branch            `json:"branches,omitempty"`
	Transformers   []Transformer       `json:"transformers,omitempty"`
	TwoTerminalDC  []TwoTerminalDCLine `json:"two_terminal_dc,omitempty"`
}

// Bus is one raw bus record.
type Bus struct {
	// Bus number.
	I int `json:"i"`

	Name string `json:"name,omitempty"`

	// Base voltage (kV).
	BasKV float64 `json:"basekv"`

	// Bus type code: 1 load, 2 generator, 3 swing, 4 isolated.
	IDE int `json:"ide"`

	Area  int `json:"area"`
	Zone  int `json:"zone"`
	Owner int `json:"owner"`

	// Voltage magnitude (p.u.) and angle (degrees).
	VM float64 `json:"vm"`
	VA float64 `json:"va"`

	// Normal and emergency voltage magnitude limits (p.u.).
	NVHi float64 `json:"nvhi"`
	NVLo float64 `json:"nvlo"`
	EVHi float64 `json:"evhi"`
	EVLo float64 `json:"evlo"`
}

// Load is one raw load record. Demand has constant power (pl, ql),
// constant current (ip, iq) and constant admittance (yp, yq) components,
// each evaluated at the owning bus voltage.
type Load struct {
	// Bus number.
	I int `json:"i"`

	// Load identifier, distinguishing multiple loads at one bus.
	ID string `json:"id"`

	Status int `json:"status"`
	Area   int `json:"area"`
	Zone   int `json:"zone"`

	// Constant power (MW, MVAr).
	PL float64 `json:"pl"`
	QL float64 `json:"ql"`

	// Constant current (MW, MVAr at 1.0 p.u. voltage).
	IP float64 `json:"ip"`
	IQ float64 `json:"iq"`

	// Constant admittance (MW, MVAr at 1.0 p.u. voltage). YQ is positive
	// for an inductive load.
	YP float64 `json:"yp"`
	YQ float64 `json:"yq"`
}

// FixedShunt is one raw fixed bus shunt record.
type FixedShunt struct {
	I      int    `json:"i"`
	ID     string `json:"id"`
	Status int    `json:"status"`

	// Shunt admittance (MW, MVAr at 1.0 p.u. voltage).
	GL float64 `json:"gl"`
	BL float64 `json:"bl"`
}

// SwitchedShunt is one raw switched shunt record. Only the presently
// switched susceptance participates in conversion.
type SwitchedShunt struct {
	I    int `json:"i"`
	Stat int `json:"stat"`

	// Initial switched susceptance (MVAr at 1.0 p.u. voltage).
	BInit float64 `json:"binit"`
}

// Generator is one raw machine record.
type Generator struct {
	// Bus number.
	I int `json:"i"`

	// Machine identifier, distinguishing multiple machines at one bus.
	ID string `json:"id"`

	// Output (MW, MVAr).
	PG float64 `json:"pg"`
	QG float64 `json:"qg"`

	// Reactive output limits (MVAr).
	QT float64 `json:"qt"`
	QB float64 `json:"qb"`

	// Voltage setpoint (p.u.).
	VS float64 `json:"vs"`

	// Machine MVA base.
	MBase float64 `json:"mbase"`

	Stat int `json:"stat"`

	// Real output limits (MW).
	PT float64 `json:"pt"`
	PB float64 `json:"pb"`
}

// Branch is one raw non-transformer branch record. Impedances are p.u. on
// system base by convention. A negative to-bus number marks the metered
// end; the magnitude is the bus.
type Branch struct {
	I   int    `json:"i"`
	J   int    `json:"j"`
	CKT string `json:"ckt"`

	// Series impedance (p.u.) and total charging susceptance (p.u.).
	R float64 `json:"r"`
	X float64 `json:"x"`
	B float64 `json:"b"`

	// MVA ratings.
	RateA float64 `json:"rate_a"`
	RateB float64 `json:"rate_b"`
	RateC float64 `json:"rate_c"`

	// Complex admittance of the line shunt at each end (p.u.).
	GI float64 `json:"gi"`
	BI float64 `json:"bi"`
	GJ float64 `json:"gj"`
	BJ float64 `json:"bj"`

	ST int `json:"st"`
}

// Transformer is one raw two- or three-winding transformer record. K == 0
// marks a two-winding record; its optional second/third-winding fields are
// nil. Loop impedances are declared per winding pair (1-2, 2-3, 3-1), each
// on its own base selected by CZ; winding voltages are interpreted per CW.
type Transformer struct {
	I   int    `json:"i"`
	J   int    `json:"j"`
	K   int    `json:"k"`
	CKT string `json:"ckt"`

	// Winding and impedance data codes.
	CW int `json:"cw"`
	CZ int `json:"cz"`

	// Magnetizing admittance (ignored by conversion).
	Mag1 float64 `json:"mag1"`
	Mag2 float64 `json:"mag2"`

	Name string `json:"name,omitempty"`

	// Composite status code. For a three-winding record the values 2, 3
	// and 4 mark single legs out of service; see DecodeWindingStatus.
	Stat int `json:"stat"`

	// Measured loop impedance and MVA base per winding pair.
	R12     float64  `json:"r1_2"`
	X12     float64  `json:"x1_2"`
	SBase12 float64  `json:"sbase1_2"`
	R23     *float64 `json:"r2_3,omitempty"`
	X23     *float64 `json:"x2_3,omitempty"`
	SBase23 *float64 `json:"sbase2_3,omitempty"`
	R31     *float64 `json:"r3_1,omitempty"`
	X31     *float64 `json:"x3_1,omitempty"`
	SBase31 *float64 `json:"sbase3_1,omitempty"`

	// Star point operating voltage.
	VMStar *float64 `json:"vmstar,omitempty"`
	AnStar *float64 `json:"anstar,omitempty"`

	// Winding 1.
	WindV1 float64 `json:"windv1"`
	NomV1  float64 `json:"nomv1"`
	Ang1   float64 `json:"ang1"`
	RatA1  float64 `json:"rata1"`
	RatB1  float64 `json:"ratb1"`
	RatC1  float64 `json:"ratc1"`

	// Winding 2.
	WindV2 float64  `json:"windv2"`
	NomV2  float64  `json:"nomv2"`
	Ang2   *float64 `json:"ang2,omitempty"`
	RatA2  *float64 `json:"rata2,omitempty"`
	RatB2  *float64 `json:"ratb2,omitempty"`
	RatC2  *float64 `json:"ratc2,omitempty"`

	// Winding 3.
	WindV3 *float64 `json:"windv3,omitempty"`
	NomV3  *float64 `json:"nomv3,omitempty"`
	Ang3   *float64 `json:"ang3,omitempty"`
	RatA3  *float64 `json:"rata3,omitempty"`
	RatB3  *float64 `json:"ratb3,omitempty"`
	RatC3  *float64 `json:"ratc3,omitempty"`
}

// IsThreeWinding reports a three-winding record.
func (t Transformer) IsThreeWinding() bool { return t.K != 0 }

// TwoTerminalDCLine is one raw two-terminal DC line record.
type TwoTerminalDCLine struct {
	Name string `json:"name"`

	// Control mode; see DCMode.
	MDC int `json:"mdc"`

	// Setpoint: MW demand (mdc 1) or amps (mdc 2).
	SetVl float64 `json:"setvl"`

	// Scheduled compounded DC voltage (kV).
	VSchd float64 `json:"vschd"`

	// Rectifier converter bus, base voltage and firing angle limits
	// (degrees).
	IPR   int     `json:"ipr"`
	EBasR float64 `json:"ebasr"`
	AlfMx float64 `json:"alfmx"`
	AlfMn float64 `json:"alfmn"`

	// Inverter converter bus, base voltage and extinction angle limits
	// (degrees).
	IPI   int     `json:"ipi"`
	EBasI float64 `json:"ebasi"`
	GamMx float64 `json:"gammx"`
	GamMn float64 `json:"gammn"`
}
