package caseio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ohowland/caseform/internal/pkg/casedata"
)

// MATPOWER column comment headers. The gen and branch sections widen
// when any record carries power flow or OPF results, matching the
// matrix widths loadcase expects.
var (
	mpcBusHeader    = []string{"bus_i", "type", "Pd", "Qd", "Gs", "Bs", "area", "Vm", "Va", "baseKV", "zone", "Vmax", "Vmin"}
	mpcBusOPFHeader = []string{"lam_P", "lam_Q", "mu_Vmax", "mu_Vmin"}

	mpcGenHeader    = []string{"bus", "Pg", "Qg", "Qmax", "Qmin", "Vg", "mBase", "status", "Pmax", "Pmin"}
	mpcGenV2Header  = []string{"Pc1", "Pc2", "Qc1min", "Qc1max", "Qc2min", "Qc2max", "ramp_agc", "ramp_10", "ramp_30", "ramp_q", "apf"}
	mpcGenOPFHeader = []string{"mu_Pmax", "mu_Pmin", "mu_Qmax", "mu_Qmin"}

	mpcBranchHeader    = []string{"fbus", "tbus", "r", "x", "b", "rateA", "rateB", "rateC", "ratio", "angle", "status", "angmin", "angmax"}
	mpcBranchPFHeader  = []string{"Pf", "Qf", "Pt", "Qt"}
	mpcBranchOPFHeader = []string{"mu_Sf", "mu_St", "mu_angmin", "mu_angmax"}

	mpcGenCostHeader = []string{"model", "startup", "shutdown", "n", "cost"}

	mpcDCLineHeader    = []string{"fbus", "tbus", "status", "Pf", "Pt", "Qf", "Qt", "Vf", "Vt", "Pmin", "Pmax", "QminF", "QmaxF", "QminT", "QmaxT", "loss0", "loss1"}
	mpcDCLineOPFHeader = []string{"mu_Pmin", "mu_Pmax", "mu_QminF", "mu_QmaxF", "mu_QminT", "mu_QmaxT"}
)

// WriteMPC renders the case as a MATPOWER case file, an M-file that
// assigns the mpc struct. Empty collections are skipped. Unset
// optional values print as zero because M-file matrices must stay
// rectangular.
func WriteMPC(w io.Writer, cs *CaseSet) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "function mpc = %s\n", cs.Case.Name)
	fmt.Fprintf(bw, "\nmpc.version = '%s';\n", cs.Case.Version)
	fmt.Fprintf(bw, "mpc.baseMVA = %s;\n", ftoa(cs.Case.BaseMVA))

	if len(cs.Buses) > 0 {
		opf := false
		for _, b := range cs.Buses {
			if b.IsOPF() {
				opf = true
				break
			}
		}
		header := mpcBusHeader
		if opf {
			header = concat(mpcBusHeader, mpcBusOPFHeader)
		}
		openSection(bw, "bus", header)
		for _, b := range cs.Buses {
			writeRow(bw, mpcBusRecord(b, opf))
		}
		closeSection(bw)
	}

	if len(cs.Gens) > 0 {
		v1, opf := false, false
		for _, g := range cs.Gens {
			if g.IsVersion1() {
				v1 = true
			}
			if g.IsOPF() {
				opf = true
			}
		}
		var header []string
		switch {
		case !opf && v1:
			header = mpcGenHeader
		case !opf:
			header = concat(mpcGenHeader, mpcGenV2Header)
		default:
			header = concat(mpcGenHeader, mpcGenV2Header, mpcGenOPFHeader)
		}
		openSection(bw, "gen", header)
		for _, g := range cs.Gens {
			writeRow(bw, mpcGenRecord(g, v1, opf))
		}
		closeSection(bw)
	}

	if len(cs.Branches) > 0 {
		pf, opf := false, false
		for _, br := range cs.Branches {
			if br.IsPF() {
				pf = true
			}
			if br.IsOPF() {
				opf = true
			}
		}
		var header []string
		switch {
		case !opf && !pf:
			header = mpcBranchHeader
		case !opf:
			header = concat(mpcBranchHeader, mpcBranchPFHeader)
		default:
			header = concat(mpcBranchHeader, mpcBranchPFHeader, mpcBranchOPFHeader)
		}
		openSection(bw, "branch", header)
		for _, br := range cs.Branches {
			writeRow(bw, mpcBranchRecord(br, pf, opf))
		}
		closeSection(bw)
	}

	if len(cs.GenCosts) > 0 {
		openSection(bw, "gencost", mpcGenCostHeader)
		for _, c := range cs.GenCosts {
			writeRow(bw, genCostRecord(c))
		}
		closeSection(bw)
	}

	if len(cs.DCLines) > 0 {
		opf := false
		for _, ln := range cs.DCLines {
			if ln.IsOPF() {
				opf = true
				break
			}
		}
		header := mpcDCLineHeader
		if opf {
			header = concat(mpcDCLineHeader, mpcDCLineOPFHeader)
		}
		openSection(bw, "dcline", header)
		for _, ln := range cs.DCLines {
			writeRow(bw, mpcDCLineRecord(ln, opf))
		}
		closeSection(bw)
	}

	return bw.Flush()
}

func openSection(w io.Writer, name string, header []string) {
	fmt.Fprintf(w, "\n%%\t%s\n", strings.Join(header, "\t"))
	fmt.Fprintf(w, "mpc.%s = [\n", name)
}

func writeRow(w io.Writer, rec []string) {
	fmt.Fprintf(w, "\t%s;\n", strings.Join(rec, "\t"))
}

func closeSection(w io.Writer) {
	fmt.Fprint(w, "];\n")
}

func mpcBusRecord(b casedata.Bus, opf bool) []string {
	rec := []string{
		itoa(b.BusI), itoa(b.BusType),
		ftoa(b.PD), ftoa(b.QD), ftoa(b.GS), ftoa(b.BS),
		itoa(b.BusArea), ftoa(b.VM), ftoa(b.VA), ftoa(b.BaseKV),
		itoa(b.Zone), ftoa(b.VMax), ftoa(b.VMin),
	}
	if opf {
		rec = append(rec, fztoa(b.LamP), fztoa(b.LamQ), fztoa(b.MuVMax), fztoa(b.MuVMin))
	}
	return rec
}

func mpcGenRecord(g casedata.Gen, v1, opf bool) []string {
	rec := []string{
		itoa(g.GenBus), ftoa(g.PG), ftoa(g.QG), ftoa(g.QMax), ftoa(g.QMin),
		ftoa(g.VG), ftoa(g.MBase), itoa(g.GenStatus), ftoa(g.PMax), ftoa(g.PMin),
	}
	if !v1 || opf {
		rec = append(rec,
			fztoa(g.PC1), fztoa(g.PC2),
			fztoa(g.QC1Min), fztoa(g.QC1Max), fztoa(g.QC2Min), fztoa(g.QC2Max),
			fztoa(g.RampAGC), fztoa(g.Ramp10), fztoa(g.Ramp30), fztoa(g.RampQ),
			fztoa(g.APF))
	}
	if opf {
		rec = append(rec, fztoa(g.MuPMax), fztoa(g.MuPMin), fztoa(g.MuQMax), fztoa(g.MuQMin))
	}
	return rec
}

func mpcBranchRecord(br casedata.Branch, pf, opf bool) []string {
	rec := []string{
		itoa(br.FBus), itoa(br.TBus),
		ftoa(br.BrR), ftoa(br.BrX), ftoa(br.BrB),
		ftoa(br.RateA), ftoa(br.RateB), ftoa(br.RateC),
		ftoa(br.Tap), ftoa(br.Shift), itoa(br.BrStatus),
		fztoa(br.AngMin), fztoa(br.AngMax),
	}
	if pf || opf {
		rec = append(rec, fztoa(br.PF), fztoa(br.QF), fztoa(br.PT), fztoa(br.QT))
	}
	if opf {
		rec = append(rec, fztoa(br.MuSF), fztoa(br.MuST), fztoa(br.MuAngMin), fztoa(br.MuAngMax))
	}
	return rec
}

func mpcDCLineRecord(ln casedata.DCLine, opf bool) []string {
	rec := []string{
		itoa(ln.FBus), itoa(ln.TBus), itoa(ln.BrStatus),
		ftoa(ln.PF), ftoa(ln.PT), ftoa(ln.QF), ftoa(ln.QT),
		ftoa(ln.VF), ftoa(ln.VT),
		ftoa(ln.PMin), ftoa(ln.PMax),
		ftoa(ln.QMinF), ftoa(ln.QMaxF), ftoa(ln.QMinT), ftoa(ln.QMaxT),
		ftoa(ln.Loss0), ftoa(ln.Loss1),
	}
	if opf {
		rec = append(rec,
			fztoa(ln.MuPMin), fztoa(ln.MuPMax),
			fztoa(ln.MuQMinF), fztoa(ln.MuQMaxF), fztoa(ln.MuQMinT), fztoa(ln.MuQMaxT))
	}
	return rec
}

// fztoa renders an unset optional value as zero.
func fztoa(v *float64) string {
	if v == nil {
		return "0"
	}
	return ftoa(*v)
}
