// Package convert assembles normalized case collections from raw network
// records and disassembles them back. The forward pass walks the network
// once per record class, in bus, load/shunt, generator, branch,
// transformer, DC line order, landing every impedance, rating and setpoint
// on the system MVA base. A conversion either returns a complete result or
// the first error; no partial case is emitted.
package convert

import (
	"github.com/ohowland/caseform/internal/pkg/casedata"
	"github.com/ohowland/caseform/internal/pkg/raw"
)

// Result is one converted case: header plus the five normalized
// collections.
type Result struct {
	Case     casedata.Case
	Buses    []casedata.Bus
	Gens     []casedata.Gen
	Branches []casedata.Branch
	DCLines  []casedata.DCLine
}

// ToCase converts a raw network into a normalized case named name.
func ToCase(name string, net *raw.Network) (*Result, error) {
	sb := net.CaseID.SBase

	c := casedata.NewCase(name)
	c.BaseMVA = sb
	if net.CaseID.BasFrq != nil {
		f := *net.CaseID.BasFrq
		c.F = &f
	}

	buses := make([]casedata.Bus, 0, len(net.Buses))
	busIndex := make(map[int]int, len(net.Buses))
	for n, rb := range net.Buses {
		b := casedata.NewBus(rb.I)
		b.BusType = rb.IDE
		b.BusArea = rb.Area
		b.VM = rb.VM
		b.VA = rb.VA
		b.BaseKV = rb.BasKV
		b.Zone = rb.Zone
		b.VMax = rb.NVHi
		b.VMin = rb.NVLo
		buses = append(buses, b)
		busIndex[rb.I] = n
	}

	// Demand components are evaluated at the owning bus's present voltage
	// magnitude. An inductive admittance load consumes reactive power, so
	// its susceptance term enters with opposite sign.
	for _, ld := range net.Loads {
		if ld.Status == 0 {
			continue
		}
		n, ok := busIndex[ld.I]
		if !ok {
			return nil, &DanglingRefError{Kind: "load", Bus: ld.I}
		}
		b := &buses[n]
		vm := b.VM
		vm2 := vm * vm
		b.PD += ld.PL + ld.IP*vm + ld.YP*vm2
		b.QD += ld.QL + ld.IQ*vm - ld.YQ*vm2
	}

	for _, sh := range net.FixedShunts {
		if sh.Status == 0 {
			continue
		}
		n, ok := busIndex[sh.I]
		if !ok {
			return nil, &DanglingRefError{Kind: "fixed shunt", Bus: sh.I}
		}
		buses[n].GS += sh.GL
		buses[n].BS += sh.BL
	}

	for _, sh := range net.SwitchedShunts {
		if sh.Stat == 0 {
			continue
		}
		n, ok := busIndex[sh.I]
		if !ok {
			return nil, &DanglingRefError{Kind: "switched shunt", Bus: sh.I}
		}
		buses[n].BS += sh.BInit
	}

	gens := make([]casedata.Gen, 0, len(net.Generators))
	for _, rg := range net.Generators {
		if _, ok := busIndex[rg.I]; !ok {
			return nil, &DanglingRefError{Kind: "generator", Bus: rg.I}
		}
		g := casedata.NewGen(rg.I)
		g.PG = rg.PG
		g.QG = rg.QG
		g.QMax = rg.QT
		g.QMin = rg.QB
		g.VG = rg.VS
		g.MBase = rg.MBase
		if !raw.InService(rg.Stat) {
			g.GenStatus = casedata.OutOfService
		}
		g.PMax = rg.PT
		g.PMin = rg.PB
		gens = append(gens, g)
	}

	// Line impedances are p.u. on system base already; only the end shunts
	// of in-service lines fold onto the buses, rescaled from admittance to
	// MW/MVAr at nominal voltage. A negative to bus marks the metered end.
	branches := make([]casedata.Branch, 0, len(net.Branches)+len(net.Transformers))
	for _, rb := range net.Branches {
		j := rb.J
		if j < 0 {
			j = -j
		}
		fi, ok := busIndex[rb.I]
		if !ok {
			return nil, &DanglingRefError{Kind: "branch", Bus: rb.I}
		}
		ti, ok := busIndex[j]
		if !ok {
			return nil, &DanglingRefError{Kind: "branch", Bus: j}
		}
		br := casedata.NewBranch(rb.I, j)
		br.BrR = rb.R
		br.BrX = rb.X
		br.BrB = rb.B
		br.RateA = rb.RateA
		br.RateB = rb.RateB
		br.RateC = rb.RateC
		if !raw.InService(rb.ST) {
			br.BrStatus = casedata.OutOfService
		}
		branches = append(branches, br)

		if br.IsOn() {
			buses[fi].GS += rb.GI * sb
			buses[fi].BS += rb.BI * sb
			buses[ti].GS += rb.GJ * sb
			buses[ti].BS += rb.BJ * sb
		}
	}

	for _, tr := range net.Transformers {
		if tr.IsThreeWinding() {
			continue
		}
		fi, ok := busIndex[tr.I]
		if !ok {
			return nil, &DanglingRefError{Kind: "transformer", Bus: tr.I}
		}
		ti, ok := busIndex[tr.J]
		if !ok {
			return nil, &DanglingRefError{Kind: "transformer", Bus: tr.J}
		}
		br, err := twoWinding(tr, buses[fi], buses[ti], sb)
		if err != nil {
			return nil, err
		}
		branches = append(branches, br)
	}

	// Star buses must be numbered after all real buses are known.
	starBase := starBusBase(net.Buses)
	nstar := 0
	for _, tr := range net.Transformers {
		if !tr.IsThreeWinding() {
			continue
		}
		sp, err := splitThreeWinding(tr, starBase+nstar, buses, busIndex, sb)
		if err != nil {
			return nil, err
		}
		buses = append(buses, sp.star)
		branches = append(branches, sp.legs[:]...)
		nstar++
	}

	dclines := make([]casedata.DCLine, 0, len(net.TwoTerminalDC))
	for _, rd := range net.TwoTerminalDC {
		ri, ok := busIndex[rd.IPR]
		if !ok {
			return nil, &DanglingRefError{Kind: "dc line", Bus: rd.IPR}
		}
		ii, ok := busIndex[rd.IPI]
		if !ok {
			return nil, &DanglingRefError{Kind: "dc line", Bus: rd.IPI}
		}
		p := dcFlow(rd)
		qrMin, qrMax := converterQLims(rd.AlfMx, rd.AlfMn, p)
		qiMin, qiMax := converterQLims(rd.GamMx, rd.GamMn, p)

		d := casedata.NewDCLine(rd.IPR, rd.IPI)
		if rd.MDC == raw.DCBlocked {
			d.BrStatus = casedata.OutOfService
		}
		d.PF = p
		d.PT = p
		d.VF = buses[ri].VM
		d.VT = buses[ii].VM
		d.PMin = 0.85 * p
		d.PMax = 1.15 * p
		d.QMinF = qrMin
		d.QMaxF = qrMax
		d.QMinT = qiMin
		d.QMaxT = qiMax
		dclines = append(dclines, d)
	}

	return &Result{
		Case:     c,
		Buses:    buses,
		Gens:     gens,
		Branches: branches,
		DCLines:  dclines,
	}, nil
}

// twoWinding builds the equivalent branch of a two-winding transformer
// record. The impedance lands on the system base at the from bus; tap,
// shift, status and ratings carry over from winding one.
func twoWinding(tr raw.Transformer, fbus, tbus casedata.Bus, sysMVA float64) (casedata.Branch, error) {
	ids := []int{tr.I, tr.J}

	tap, err := tapRatio(tr.CW, tr.WindV1, tr.WindV2, fbus.BaseKV, tbus.BaseKV, ids)
	if err != nil {
		return casedata.Branch{}, err
	}
	r, x, err := systemPU(tr.CZ, tr.R12, tr.X12, tr.SBase12, tr.NomV1, fbus.BaseKV, sysMVA, ids)
	if err != nil {
		return casedata.Branch{}, err
	}

	br := casedata.NewBranch(tr.I, tr.J)
	br.BrR = r
	br.BrX = x
	br.RateA = tr.RatA1
	br.RateB = tr.RatB1
	br.RateC = tr.RatC1
	if !raw.InService(tr.Stat) {
		br.BrStatus = casedata.OutOfService
	}
	br.Tap = tap
	br.Shift = tr.Ang1
	return br, nil
}
