package convert

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/ohowland/caseform/internal/pkg/casedata"
	"github.com/ohowland/caseform/internal/pkg/raw"
)

// threeWindingNet couples a 220, a 110 and a 20 kV bus through one
// three-winding transformer with loop reactances 0.10, 0.08 and 0.06 p.u.
func threeWindingNet(stat, cz int) *raw.Network {
	return &raw.Network{
		CaseID: raw.CaseID{SBase: 100},
		Buses: []raw.Bus{
			{I: 1, BasKV: 220, IDE: casedata.PQ, Area: 2, Zone: 3, VM: 1.0, NVHi: 1.1, NVLo: 0.9},
			{I: 2, BasKV: 110, IDE: casedata.PQ, Area: 1, Zone: 1, VM: 1.0, NVHi: 1.1, NVLo: 0.9},
			{I: 3, BasKV: 20, IDE: casedata.PQ, Area: 1, Zone: 1, VM: 1.0, NVHi: 1.1, NVLo: 0.9},
		},
		Transformers: []raw.Transformer{{
			I: 1, J: 2, K: 3, CKT: "1",
			CW: raw.WindingOffNominal, CZ: cz, Stat: stat,
			R12: 0, X12: 0.10, SBase12: 100,
			R23: fp(0), X23: fp(0.08), SBase23: fp(100),
			R31: fp(0), X31: fp(0.06), SBase31: fp(100),
			VMStar: fp(1.01), AnStar: fp(-2.5),
			WindV1: 1.02, NomV1: 220, Ang1: 1.5, RatA1: 400, RatB1: 410, RatC1: 420,
			WindV2: 1.0, NomV2: 110, Ang2: fp(0), RatA2: fp(300), RatB2: fp(310), RatC2: fp(320),
			WindV3: fp(0.98), NomV3: fp(20), Ang3: fp(-1.0), RatA3: fp(200), RatB3: fp(210), RatC3: fp(220),
		}},
	}
}

func TestSplitLegReactances(t *testing.T) {
	res, err := ToCase("3w", threeWindingNet(1, raw.ImpedanceSystemPU))
	assert.NilError(t, err)

	assert.Equal(t, len(res.Branches), 3)
	near(t, res.Branches[0].BrX, 0.04)
	near(t, res.Branches[1].BrX, 0.06)
	near(t, res.Branches[2].BrX, 0.02)

	// The legs mesh back into the measured loops exactly.
	near(t, res.Branches[0].BrX+res.Branches[1].BrX, 0.10)
	near(t, res.Branches[1].BrX+res.Branches[2].BrX, 0.08)
	near(t, res.Branches[2].BrX+res.Branches[0].BrX, 0.06)
}

func TestSplitStarBus(t *testing.T) {
	res, err := ToCase("3w", threeWindingNet(1, raw.ImpedanceSystemPU))
	assert.NilError(t, err)

	assert.Equal(t, len(res.Buses), 4)
	star := res.Buses[3]
	assert.Equal(t, star.BusI, 10)
	assert.Assert(t, star.IsPQ())
	near(t, star.VM, 1.01)
	near(t, star.VA, -2.5)
	near(t, star.PD, 0)
	near(t, star.QD, 0)
	assert.Equal(t, star.BusArea, 2)
	assert.Equal(t, star.Zone, 3)
	near(t, star.BaseKV, 220)
	near(t, star.VMax, 1.1)
	near(t, star.VMin, 0.9)

	for _, leg := range res.Branches {
		assert.Equal(t, leg.TBus, star.BusI)
	}
	assert.Equal(t, res.Branches[0].FBus, 1)
	assert.Equal(t, res.Branches[1].FBus, 2)
	assert.Equal(t, res.Branches[2].FBus, 3)
}

func TestSplitLegData(t *testing.T) {
	res, err := ToCase("3w", threeWindingNet(1, raw.ImpedanceSystemPU))
	assert.NilError(t, err)

	legs := res.Branches
	near(t, legs[0].Tap, 1.02)
	near(t, legs[1].Tap, 1.0)
	near(t, legs[2].Tap, 0.98)
	near(t, legs[0].Shift, 1.5)
	near(t, legs[1].Shift, 0)
	near(t, legs[2].Shift, -1.0)
	near(t, legs[0].RateA, 400)
	near(t, legs[1].RateB, 310)
	near(t, legs[2].RateC, 220)
}

func TestSplitLegStatuses(t *testing.T) {
	for stat, want := range map[int][3]bool{
		1: {true, true, true},
		0: {false, false, false},
		2: {true, false, true},
		3: {true, true, false},
		4: {false, true, true},
	} {
		res, err := ToCase("3w", threeWindingNet(stat, raw.ImpedanceSystemPU))
		assert.NilError(t, err)
		for n := 0; n < 3; n++ {
			assert.Equal(t, res.Branches[n].IsOn(), want[n], "stat %d leg %d", stat, n+1)
		}
	}
}

func TestSplitStarBusIsolatedWhenAllOut(t *testing.T) {
	res, err := ToCase("3w", threeWindingNet(0, raw.ImpedanceSystemPU))
	assert.NilError(t, err)
	assert.Assert(t, res.Buses[3].IsIsolated())
}

func TestSplitWindingBaseRescale(t *testing.T) {
	// Halving the 1-2 pair MVA base doubles its loop reactance on the
	// system base; the third leg goes negative, which is expected of a
	// star equivalent.
	net := threeWindingNet(1, raw.ImpedanceWindingPU)
	net.Transformers[0].SBase12 = 50
	res, err := ToCase("3w", net)
	assert.NilError(t, err)

	near(t, res.Branches[0].BrX, 0.09)
	near(t, res.Branches[1].BrX, 0.11)
	near(t, res.Branches[2].BrX, -0.03)
}

func TestSplitStarBusNumbering(t *testing.T) {
	net := threeWindingNet(1, raw.ImpedanceSystemPU)
	net.Buses = append(net.Buses, raw.Bus{I: 999, BasKV: 220, IDE: casedata.PQ, VM: 1.0, NVHi: 1.1, NVLo: 0.9})
	net.Transformers = append(net.Transformers, net.Transformers[0])

	res, err := ToCase("3w", net)
	assert.NilError(t, err)

	assert.Equal(t, len(res.Buses), 6)
	assert.Equal(t, res.Buses[4].BusI, 1000)
	assert.Equal(t, res.Buses[5].BusI, 1001)
	assert.NilError(t, casedata.ValidateBusNumbers(res.Buses, res.Gens, res.Branches, res.DCLines))
}

func TestSplitMissingFieldFails(t *testing.T) {
	net := threeWindingNet(1, raw.ImpedanceSystemPU)
	net.Transformers[0].X23 = nil
	_, err := ToCase("3w", net)
	var missing *MissingFieldError
	assert.Assert(t, errors.As(err, &missing))
	assert.Equal(t, missing.Field, "x2_3")
	assert.Error(t, err, "transformer 1-2-3 is missing field x2_3")

	net = threeWindingNet(1, raw.ImpedanceSystemPU)
	net.Transformers[0].WindV3 = nil
	_, err = ToCase("3w", net)
	assert.Error(t, err, "transformer 1-2-3 is missing field windv3")

	net = threeWindingNet(1, raw.ImpedanceSystemPU)
	net.Transformers[0].SBase31 = nil
	_, err = ToCase("3w", net)
	assert.Error(t, err, "transformer 1-2-3 is missing field sbase3_1")
}

func TestSplitStarVoltageDefaults(t *testing.T) {
	net := threeWindingNet(1, raw.ImpedanceSystemPU)
	net.Transformers[0].VMStar = nil
	net.Transformers[0].AnStar = nil
	res, err := ToCase("3w", net)
	assert.NilError(t, err)

	near(t, res.Buses[3].VM, 1.0)
	near(t, res.Buses[3].VA, 0)
}

func TestSplitUnsupportedCodes(t *testing.T) {
	net := threeWindingNet(1, raw.ImpedanceSystemPU)
	net.Transformers[0].CW = 3
	_, err := ToCase("3w", net)
	var codeErr *UnsupportedCodeError
	assert.Assert(t, errors.As(err, &codeErr))
	assert.Error(t, err, "unsupported cw code 3 on transformer 1-2-3, valid codes are 1, 2")

	net = threeWindingNet(1, 9)
	_, err = ToCase("3w", net)
	assert.Assert(t, errors.As(err, &codeErr))
	assert.Error(t, err, "unsupported cz code 9 on transformer 1-2-3, valid codes are 1, 2, 3")
}
