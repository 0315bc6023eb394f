package caseio

import "github.com/ohowland/caseform/internal/pkg/casedata"

// Dataset is a column oriented view of a case: one JSON array per
// column, sized for plotting and dataframe tools. Optional columns are
// omitted when no record in the collection carries them, otherwise
// unset values appear as zero.
type Dataset struct {
	CaseName string  `json:"casename"`
	BaseMVA  float64 `json:"base_mva"`

	BusI    []int     `json:"bus_i"`
	BusType []int     `json:"bus_type"`
	PD      []float64 `json:"pd"`
	QD      []float64 `json:"qd"`
	GS      []float64 `json:"gs"`
	BS      []float64 `json:"bs"`
	BusArea []int     `json:"bus_area"`
	VM      []float64 `json:"vm"`
	VA      []float64 `json:"va"`
	BaseKV  []float64 `json:"base_kv"`
	Zone    []int     `json:"zone"`
	VMax    []float64 `json:"vmax"`
	VMin    []float64 `json:"vmin"`

	GenBus    []int     `json:"gen_bus"`
	PG        []float64 `json:"pg"`
	QG        []float64 `json:"qg"`
	QMax      []float64 `json:"qmax"`
	QMin      []float64 `json:"qmin"`
	VG        []float64 `json:"vg"`
	MBase     []float64 `json:"mbase"`
	GenStatus []int     `json:"gen_status"`
	PMax      []float64 `json:"pmax"`
	PMin      []float64 `json:"pmin"`
	MuPMax    []float64 `json:"mu_pmax,omitempty"`
	MuPMin    []float64 `json:"mu_pmin,omitempty"`
	MuQMax    []float64 `json:"mu_qmax,omitempty"`
	MuQMin    []float64 `json:"mu_qmin,omitempty"`

	FBus     []int     `json:"f_bus"`
	TBus     []int     `json:"t_bus"`
	BrR      []float64 `json:"br_r"`
	BrX      []float64 `json:"br_x"`
	BrB      []float64 `json:"br_b"`
	RateA    []float64 `json:"rate_a"`
	RateB    []float64 `json:"rate_b"`
	RateC    []float64 `json:"rate_c"`
	Tap      []float64 `json:"tap"`
	Shift    []float64 `json:"shift"`
	BrStatus []int     `json:"br_status"`
	AngMin   []float64 `json:"angmin,omitempty"`
	AngMax   []float64 `json:"angmax,omitempty"`
	PF       []float64 `json:"pf,omitempty"`
	QF       []float64 `json:"qf,omitempty"`
	PT       []float64 `json:"pt,omitempty"`
	QT       []float64 `json:"qt,omitempty"`
}

// NewDataset flattens the bus, gen and branch collections into columns.
func NewDataset(c casedata.Case, buses []casedata.Bus, gens []casedata.Gen, branches []casedata.Branch) *Dataset {
	ds := &Dataset{CaseName: c.Name, BaseMVA: c.BaseMVA}

	for _, b := range buses {
		ds.BusI = append(ds.BusI, b.BusI)
		ds.BusType = append(ds.BusType, b.BusType)
		ds.PD = append(ds.PD, b.PD)
		ds.QD = append(ds.QD, b.QD)
		ds.GS = append(ds.GS, b.GS)
		ds.BS = append(ds.BS, b.BS)
		ds.BusArea = append(ds.BusArea, b.BusArea)
		ds.VM = append(ds.VM, b.VM)
		ds.VA = append(ds.VA, b.VA)
		ds.BaseKV = append(ds.BaseKV, b.BaseKV)
		ds.Zone = append(ds.Zone, b.Zone)
		ds.VMax = append(ds.VMax, b.VMax)
		ds.VMin = append(ds.VMin, b.VMin)
	}

	genOPF := false
	for _, g := range gens {
		if g.IsOPF() {
			genOPF = true
			break
		}
	}
	for _, g := range gens {
		ds.GenBus = append(ds.GenBus, g.GenBus)
		ds.PG = append(ds.PG, g.PG)
		ds.QG = append(ds.QG, g.QG)
		ds.QMax = append(ds.QMax, g.QMax)
		ds.QMin = append(ds.QMin, g.QMin)
		ds.VG = append(ds.VG, g.VG)
		ds.MBase = append(ds.MBase, g.MBase)
		ds.GenStatus = append(ds.GenStatus, g.GenStatus)
		ds.PMax = append(ds.PMax, g.PMax)
		ds.PMin = append(ds.PMin, g.PMin)
		if genOPF {
			ds.MuPMax = append(ds.MuPMax, fz(g.MuPMax))
			ds.MuPMin = append(ds.MuPMin, fz(g.MuPMin))
			ds.MuQMax = append(ds.MuQMax, fz(g.MuQMax))
			ds.MuQMin = append(ds.MuQMin, fz(g.MuQMin))
		}
	}

	angle, brPF := false, false
	for _, br := range branches {
		if br.AngMin != nil || br.AngMax != nil {
			angle = true
		}
		if br.IsPF() {
			brPF = true
		}
	}
	for _, br := range branches {
		ds.FBus = append(ds.FBus, br.FBus)
		ds.TBus = append(ds.TBus, br.TBus)
		ds.BrR = append(ds.BrR, br.BrR)
		ds.BrX = append(ds.BrX, br.BrX)
		ds.BrB = append(ds.BrB, br.BrB)
		ds.RateA = append(ds.RateA, br.RateA)
		ds.RateB = append(ds.RateB, br.RateB)
		ds.RateC = append(ds.RateC, br.RateC)
		ds.Tap = append(ds.Tap, br.Tap)
		ds.Shift = append(ds.Shift, br.Shift)
		ds.BrStatus = append(ds.BrStatus, br.BrStatus)
		if angle {
			ds.AngMin = append(ds.AngMin, fz(br.AngMin))
			ds.AngMax = append(ds.AngMax, fz(br.AngMax))
		}
		if brPF {
			ds.PF = append(ds.PF, fz(br.PF))
			ds.QF = append(ds.QF, fz(br.QF))
			ds.PT = append(ds.PT, fz(br.PT))
			ds.QT = append(ds.QT, fz(br.QT))
		}
	}

	return ds
}

func fz(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
