package casedata

import (
	"math"
	"testing"

	"gotest.tools/v3/assert"
)

func TestNewCaseDefaults(t *testing.T) {
	c := NewCase("entsoe2")
	assert.Equal(t, c.Name, "entsoe2")
	assert.Equal(t, c.Version, "2")
	assert.Equal(t, c.BaseMVA, 100.0)
	assert.Assert(t, c.F == nil)
}

func TestNewBusDefaults(t *testing.T) {
	b := NewBus(4)
	assert.Equal(t, b.BusI, 4)
	assert.Assert(t, b.IsPQ(), "new bus defaults to PQ")
	assert.Equal(t, b.VM, 1.0)
	assert.Equal(t, b.BusArea, 1)
	assert.Equal(t, b.Zone, 1)
	assert.Assert(t, math.IsInf(b.VMax, 1))
	assert.Assert(t, math.IsInf(b.VMin, -1))
}

func TestBusTypePredicates(t *testing.T) {
	b := NewBus(1)

	b.BusType = PQ
	assert.Assert(t, b.IsPQ())
	b.BusType = PV
	assert.Assert(t, b.IsPV())
	b.BusType = REF
	assert.Assert(t, b.IsRef())
	b.BusType = NONE
	assert.Assert(t, b.IsIsolated())
}

func TestGenStatusAndLoadPredicates(t *testing.T) {
	g := NewGen(2)
	assert.Assert(t, g.IsOn())
	assert.Assert(t, !g.IsLoad(), "open limits are not a dispatchable load")

	g.GenStatus = OutOfService
	assert.Assert(t, g.IsOff())

	g.PMin = -30.0
	g.PMax = 0.0
	assert.Assert(t, g.IsLoad())
}

func TestGenVersionPredicate(t *testing.T) {
	g := NewGen(2)
	assert.Assert(t, g.IsVersion1())

	apf := 0.0
	g.APF = &apf
	assert.Assert(t, !g.IsVersion1())
}

func TestBranchPredicates(t *testing.T) {
	br := NewBranch(1, 2)
	assert.Assert(t, br.IsOn())
	assert.Assert(t, !br.IsTransformer(), "zero tap and shift mark a line")

	br.Tap = 1.05
	assert.Assert(t, br.IsTransformer())

	br.Tap = 0
	br.Shift = 10
	assert.Assert(t, br.IsTransformer(), "phase shifters count as transformers")

	br.BrStatus = OutOfService
	assert.Assert(t, br.IsOff())
}

func TestDCLineDefaults(t *testing.T) {
	ln := NewDCLine(1, 2)
	assert.Assert(t, ln.IsOn())
	assert.Equal(t, ln.VF, 1.0)
	assert.Equal(t, ln.VT, 1.0)
	assert.Assert(t, math.IsInf(ln.PMax, 1))
	assert.Assert(t, math.IsInf(ln.QMinT, -1))
}

func TestGenCostModelPredicates(t *testing.T) {
	pwl := NewGenCost(PWLinear)
	assert.Assert(t, pwl.IsPWL())

	poly := NewGenCost(Polynomial)
	assert.Assert(t, poly.IsPolynomial())
}

func TestBusIndex(t *testing.T) {
	buses := []Bus{NewBus(101), NewBus(7), NewBus(42)}
	idx := BusIndex(buses)

	assert.Equal(t, len(idx), 3)
	assert.Equal(t, idx[101], 0)
	assert.Equal(t, idx[7], 1)
	assert.Equal(t, idx[42], 2)
}
