package convert

import (
	"fmt"
	"strconv"

	"github.com/ohowland/caseform/internal/pkg/casedata"
	"github.com/ohowland/caseform/internal/pkg/raw"
)

// ToRaw assembles raw-format records from normalized collections. busIndex
// maps bus numbers to positions in buses, as built by casedata.BusIndex.
// Aggregated bus demand and shunt admittance become one load and one fixed
// shunt record per bus; dispatchable loads leave the generator set and
// rejoin the loads. Branches split into lines and transformers on the tap
// and shift fields.
func ToRaw(c casedata.Case, buses []casedata.Bus, gens []casedata.Gen, branches []casedata.Branch, dclines []casedata.DCLine, busIndex map[int]int) (*raw.Network, error) {
	net := &raw.Network{
		CaseID: raw.CaseID{IC: 0, SBase: c.BaseMVA, Rev: 33},
	}
	if c.F != nil {
		f := *c.F
		net.CaseID.BasFrq = &f
	}

	net.Buses = make([]raw.Bus, 0, len(buses))
	for _, b := range buses {
		net.Buses = append(net.Buses, raw.Bus{
			I:     b.BusI,
			BasKV: b.BaseKV,
			IDE:   b.BusType,
			Area:  b.BusArea,
			Zone:  b.Zone,
			Owner: 0,
			VM:    b.VM,
			VA:    b.VA,
			NVHi:  b.VMax,
			NVLo:  b.VMin,
			EVHi:  b.VMax,
			EVLo:  b.VMin,
		})
	}

	// Load identifiers restart at 1 on each bus; a dispatchable load
	// numbers after the bus's own demand record when one exists.
	loadCount := make(map[int]int)
	for _, b := range buses {
		if b.PD == 0 && b.QD == 0 {
			continue
		}
		loadCount[b.BusI] = 1
		net.Loads = append(net.Loads, raw.Load{
			I:      b.BusI,
			ID:     "1",
			Status: 1,
			Area:   b.BusArea,
			Zone:   b.Zone,
			PL:     b.PD,
			QL:     b.QD,
		})
	}
	for _, g := range gens {
		if !g.IsLoad() {
			continue
		}
		n, ok := busIndex[g.GenBus]
		if !ok {
			return nil, &DanglingRefError{Kind: "generator", Bus: g.GenBus}
		}
		b := buses[n]
		loadCount[g.GenBus]++
		net.Loads = append(net.Loads, raw.Load{
			I:      g.GenBus,
			ID:     strconv.Itoa(loadCount[g.GenBus]),
			Status: g.GenStatus,
			Area:   b.BusArea,
			Zone:   b.Zone,
			PL:     -g.PMin,
			QL:     -g.QMin,
		})
	}

	for _, b := range buses {
		if b.GS == 0 && b.BS == 0 {
			continue
		}
		net.FixedShunts = append(net.FixedShunts, raw.FixedShunt{
			I:      b.BusI,
			ID:     "1",
			Status: 1,
			GL:     b.GS,
			BL:     b.BS,
		})
	}

	genCount := make(map[int]int)
	for _, g := range gens {
		if g.IsLoad() {
			continue
		}
		genCount[g.GenBus]++
		net.Generators = append(net.Generators, raw.Generator{
			I:     g.GenBus,
			ID:    strconv.Itoa(genCount[g.GenBus]),
			PG:    g.PG,
			QG:    g.QG,
			QT:    g.QMax,
			QB:    g.QMin,
			VS:    g.VG,
			MBase: g.MBase,
			Stat:  g.GenStatus,
			PT:    g.PMax,
			PB:    g.PMin,
		})
	}

	// One allocator spans lines, transformers and DC lines, so parallel
	// elements on a bus pair never repeat a circuit tag.
	ckts := make(map[[2]int]int)
	nextCkt := func(f, t int) string {
		key := [2]int{f, t}
		ckts[key]++
		return strconv.Itoa(ckts[key])
	}
	for _, br := range branches {
		if br.IsTransformer() {
			continue
		}
		net.Branches = append(net.Branches, raw.Branch{
			I:     br.FBus,
			J:     br.TBus,
			CKT:   nextCkt(br.FBus, br.TBus),
			R:     br.BrR,
			X:     br.BrX,
			B:     br.BrB,
			RateA: br.RateA,
			RateB: br.RateB,
			RateC: br.RateC,
			ST:    br.BrStatus,
		})
	}

	for _, br := range branches {
		if !br.IsTransformer() {
			continue
		}
		// A zero tap on a phase shifter means the nominal ratio.
		tap := br.Tap
		if tap == 0 {
			tap = 1.0
		}
		net.Transformers = append(net.Transformers, raw.Transformer{
			I:       br.FBus,
			J:       br.TBus,
			CKT:     nextCkt(br.FBus, br.TBus),
			CW:      raw.WindingOffNominal,
			CZ:      raw.ImpedanceSystemPU,
			Stat:    br.BrStatus,
			R12:     br.BrR,
			X12:     br.BrX,
			SBase12: c.BaseMVA,
			WindV1:  tap,
			WindV2:  1.0,
			Ang1:    br.Shift,
			RatA1:   br.RateA,
			RatB1:   br.RateB,
			RatC1:   br.RateC,
		})
	}

	for n, d := range dclines {
		fi, ok := busIndex[d.FBus]
		if !ok {
			return nil, &DanglingRefError{Kind: "dc line", Bus: d.FBus}
		}
		ti, ok := busIndex[d.TBus]
		if !ok {
			return nil, &DanglingRefError{Kind: "dc line", Bus: d.TBus}
		}
		nextCkt(d.FBus, d.TBus)
		mdc := raw.DCPower
		if d.IsOff() {
			mdc = raw.DCBlocked
		}
		net.TwoTerminalDC = append(net.TwoTerminalDC, raw.TwoTerminalDCLine{
			Name:  fmt.Sprintf("DCLINE %d", n+1),
			MDC:   mdc,
			SetVl: d.PF,
			IPR:   d.FBus,
			EBasR: buses[fi].BaseKV,
			IPI:   d.TBus,
			EBasI: buses[ti].BaseKV,
		})
	}

	return net, nil
}
