package convert

import (
	"github.com/ohowland/caseform/internal/pkg/casedata"
	"github.com/ohowland/caseform/internal/pkg/raw"
)

// starSplit is the decomposition of one three-winding transformer: a
// synthetic star bus and the three equivalent branches meeting at it.
type starSplit struct {
	star casedata.Bus
	legs [3]casedata.Branch
}

// splitThreeWinding un-meshes a three-winding transformer record into a
// star bus numbered starI and three two-winding equivalents. Each measured
// loop impedance lands on the system base at its own from bus before the
// delta-to-star identity extracts the leg impedances. Leg status comes
// from the decoded composite status code.
func splitThreeWinding(tr raw.Transformer, starI int, buses []casedata.Bus, busIndex map[int]int, sysMVA float64) (starSplit, error) {
	ids := []int{tr.I, tr.J, tr.K}

	n1, ok := busIndex[tr.I]
	if !ok {
		return starSplit{}, &DanglingRefError{Kind: "transformer", Bus: tr.I}
	}
	n2, ok := busIndex[tr.J]
	if !ok {
		return starSplit{}, &DanglingRefError{Kind: "transformer", Bus: tr.J}
	}
	n3, ok := busIndex[tr.K]
	if !ok {
		return starSplit{}, &DanglingRefError{Kind: "transformer", Bus: tr.K}
	}
	bus1, bus2, bus3 := buses[n1], buses[n2], buses[n3]

	required := []struct {
		field string
		val   *float64
	}{
		{"r2_3", tr.R23}, {"x2_3", tr.X23}, {"sbase2_3", tr.SBase23},
		{"r3_1", tr.R31}, {"x3_1", tr.X31}, {"sbase3_1", tr.SBase31},
		{"windv3", tr.WindV3}, {"nomv3", tr.NomV3},
		{"ang2", tr.Ang2}, {"ang3", tr.Ang3},
		{"rata2", tr.RatA2}, {"ratb2", tr.RatB2}, {"ratc2", tr.RatC2},
		{"rata3", tr.RatA3}, {"ratb3", tr.RatB3}, {"ratc3", tr.RatC3},
	}
	for _, f := range required {
		if f.val == nil {
			return starSplit{}, &MissingFieldError{Field: f.field, Buses: ids}
		}
	}

	ws := raw.DecodeWindingStatus(tr.Stat)

	// The star point injects nothing. Its operating point comes from the
	// record's own star voltage fields; classification and limits follow
	// the winding one bus.
	star := casedata.NewBus(starI)
	if !(ws.Leg1 || ws.Leg2 || ws.Leg3) {
		star.BusType = casedata.NONE
	}
	if tr.VMStar != nil {
		star.VM = *tr.VMStar
	}
	if tr.AnStar != nil {
		star.VA = *tr.AnStar
	}
	star.BusArea = bus1.BusArea
	star.Zone = bus1.Zone
	star.BaseKV = bus1.BaseKV
	star.VMax = bus1.VMax
	star.VMin = bus1.VMin

	tap1, err := legTap(tr.CW, tr.WindV1, bus1.BaseKV, ids)
	if err != nil {
		return starSplit{}, err
	}
	tap2, err := legTap(tr.CW, tr.WindV2, bus2.BaseKV, ids)
	if err != nil {
		return starSplit{}, err
	}
	tap3, err := legTap(tr.CW, *tr.WindV3, bus3.BaseKV, ids)
	if err != nil {
		return starSplit{}, err
	}

	r12, x12, err := systemPU(tr.CZ, tr.R12, tr.X12, tr.SBase12, tr.NomV1, bus1.BaseKV, sysMVA, ids)
	if err != nil {
		return starSplit{}, err
	}
	r23, x23, err := systemPU(tr.CZ, *tr.R23, *tr.X23, *tr.SBase23, tr.NomV2, bus2.BaseKV, sysMVA, ids)
	if err != nil {
		return starSplit{}, err
	}
	r31, x31, err := systemPU(tr.CZ, *tr.R31, *tr.X31, *tr.SBase31, *tr.NomV3, bus3.BaseKV, sysMVA, ids)
	if err != nil {
		return starSplit{}, err
	}

	r1 := (r12 + r31 - r23) / 2
	r2 := (r12 + r23 - r31) / 2
	r3 := (r31 + r23 - r12) / 2
	x1 := (x12 + x31 - x23) / 2
	x2 := (x12 + x23 - x31) / 2
	x3 := (x31 + x23 - x12) / 2

	leg1 := casedata.NewBranch(tr.I, starI)
	leg1.BrR = r1
	leg1.BrX = x1
	leg1.RateA = tr.RatA1
	leg1.RateB = tr.RatB1
	leg1.RateC = tr.RatC1
	if !ws.Leg1 {
		leg1.BrStatus = casedata.OutOfService
	}
	leg1.Tap = tap1
	leg1.Shift = tr.Ang1

	leg2 := casedata.NewBranch(tr.J, starI)
	leg2.BrR = r2
	leg2.BrX = x2
	leg2.RateA = *tr.RatA2
	leg2.RateB = *tr.RatB2
	leg2.RateC = *tr.RatC2
	if !ws.Leg2 {
		leg2.BrStatus = casedata.OutOfService
	}
	leg2.Tap = tap2
	leg2.Shift = *tr.Ang2

	leg3 := casedata.NewBranch(tr.K, starI)
	leg3.BrR = r3
	leg3.BrX = x3
	leg3.RateA = *tr.RatA3
	leg3.RateB = *tr.RatB3
	leg3.RateC = *tr.RatC3
	if !ws.Leg3 {
		leg3.BrStatus = casedata.OutOfService
	}
	leg3.Tap = tap3
	leg3.Shift = *tr.Ang3

	return starSplit{star: star, legs: [3]casedata.Branch{leg1, leg2, leg3}}, nil
}
