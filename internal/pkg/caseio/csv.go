package caseio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/ohowland/caseform/internal/pkg/casedata"
)

// Column names of each record collection. Optional groups are written
// only when a record in the collection carries them; on read they are
// resolved by name, so missing or blank columns stay unset.
var (
	caseColumns = []string{"casename", "version", "base_mva", "f"}

	busColumns    = []string{"bus_i", "bus_type", "pd", "qd", "gs", "bs", "bus_area", "vm", "va", "base_kv", "zone", "vmax", "vmin"}
	busOPFColumns = []string{"lam_p", "lam_q", "mu_vmax", "mu_vmin"}

	genColumns    = []string{"gen_bus", "pg", "qg", "qmax", "qmin", "vg", "mbase", "gen_status", "pmax", "pmin"}
	genV2Columns  = []string{"pc1", "pc2", "qc1min", "qc1max", "qc2min", "qc2max", "ramp_agc", "ramp_10", "ramp_30", "ramp_q", "apf"}
	genOPFColumns = []string{"mu_pmax", "mu_pmin", "mu_qmax", "mu_qmin"}

	branchColumns      = []string{"f_bus", "t_bus", "br_r", "br_x", "br_b", "rate_a", "rate_b", "rate_c", "tap", "shift", "br_status"}
	branchAngleColumns = []string{"angmin", "angmax"}
	branchPFColumns    = []string{"pf", "qf", "pt", "qt"}
	branchOPFColumns   = []string{"mu_sf", "mu_st", "mu_angmin", "mu_angmax"}

	dclineColumns    = []string{"f_bus", "t_bus", "br_status", "pf", "pt", "qf", "qt", "vf", "vt", "pmin", "pmax", "qminf", "qmaxf", "qmint", "qmaxt", "loss0", "loss1"}
	dclineOPFColumns = []string{"mu_pmin", "mu_pmax", "mu_qminf", "mu_qmaxf", "mu_qmint", "mu_qmaxt"}
)

func encodeCase(c casedata.Case) ([]byte, error) {
	header := caseColumns[:3]
	rec := []string{c.Name, c.Version, ftoa(c.BaseMVA)}
	if c.F != nil {
		header = caseColumns
		rec = append(rec, ftoa(*c.F))
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.Write(rec); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func decodeCase(r io.Reader) (casedata.Case, error) {
	var c casedata.Case

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return c, errors.New("one case record must exist")
	}
	if err != nil {
		return c, err
	}
	fields, err := cr.Read()
	if err == io.EOF {
		return c, errors.New("one case record must exist")
	}
	if err != nil {
		return c, err
	}

	s := scanner{row: newRow(header, fields)}
	s.str(&c.Name, "casename")
	s.str(&c.Version, "version")
	s.float(&c.BaseMVA, "base_mva")
	s.optFloat(&c.F, "f")
	return c, s.err
}

func encodeBuses(buses []casedata.Bus) ([]byte, error) {
	opf := false
	for _, b := range buses {
		if b.IsOPF() {
			opf = true
			break
		}
	}

	header := busColumns
	if opf {
		header = concat(busColumns, busOPFColumns)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, b := range buses {
		rec := []string{
			itoa(b.BusI), itoa(b.BusType),
			ftoa(b.PD), ftoa(b.QD), ftoa(b.GS), ftoa(b.BS),
			itoa(b.BusArea), ftoa(b.VM), ftoa(b.VA), ftoa(b.BaseKV),
			itoa(b.Zone), ftoa(b.VMax), ftoa(b.VMin),
		}
		if opf {
			rec = append(rec, fptoa(b.LamP), fptoa(b.LamQ), fptoa(b.MuVMax), fptoa(b.MuVMin))
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func decodeBuses(r io.Reader) ([]casedata.Bus, error) {
	var buses []casedata.Bus
	err := decodeRows(r, func(s *scanner) error {
		var b casedata.Bus
		s.int(&b.BusI, "bus_i")
		s.int(&b.BusType, "bus_type")
		s.float(&b.PD, "pd")
		s.float(&b.QD, "qd")
		s.float(&b.GS, "gs")
		s.float(&b.BS, "bs")
		s.int(&b.BusArea, "bus_area")
		s.float(&b.VM, "vm")
		s.float(&b.VA, "va")
		s.float(&b.BaseKV, "base_kv")
		s.int(&b.Zone, "zone")
		s.float(&b.VMax, "vmax")
		s.float(&b.VMin, "vmin")
		s.optFloat(&b.LamP, "lam_p")
		s.optFloat(&b.LamQ, "lam_q")
		s.optFloat(&b.MuVMax, "mu_vmax")
		s.optFloat(&b.MuVMin, "mu_vmin")
		if s.err != nil {
			return s.err
		}
		buses = append(buses, b)
		return nil
	})
	return buses, err
}

func encodeGens(gens []casedata.Gen) ([]byte, error) {
	v2, opf := false, false
	for _, g := range gens {
		if !g.IsVersion1() {
			v2 = true
		}
		if g.IsOPF() {
			opf = true
		}
	}

	header := genColumns
	switch {
	case v2 && opf:
		header = concat(genColumns, genV2Columns, genOPFColumns)
	case v2:
		header = concat(genColumns, genV2Columns)
	case opf:
		header = concat(genColumns, genOPFColumns)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, g := range gens {
		rec := []string{
			itoa(g.GenBus), ftoa(g.PG), ftoa(g.QG), ftoa(g.QMax), ftoa(g.QMin),
			ftoa(g.VG), ftoa(g.MBase), itoa(g.GenStatus), ftoa(g.PMax), ftoa(g.PMin),
		}
		if v2 {
			rec = append(rec,
				fptoa(g.PC1), fptoa(g.PC2),
				fptoa(g.QC1Min), fptoa(g.QC1Max), fptoa(g.QC2Min), fptoa(g.QC2Max),
				fptoa(g.RampAGC), fptoa(g.Ramp10), fptoa(g.Ramp30), fptoa(g.RampQ),
				fptoa(g.APF))
		}
		if opf {
			rec = append(rec, fptoa(g.MuPMax), fptoa(g.MuPMin), fptoa(g.MuQMax), fptoa(g.MuQMin))
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func decodeGens(r io.Reader) ([]casedata.Gen, error) {
	var gens []casedata.Gen
	err := decodeRows(r, func(s *scanner) error {
		var g casedata.Gen
		s.int(&g.GenBus, "gen_bus")
		s.float(&g.PG, "pg")
		s.float(&g.QG, "qg")
		s.float(&g.QMax, "qmax")
		s.float(&g.QMin, "qmin")
		s.float(&g.VG, "vg")
		s.float(&g.MBase, "mbase")
		s.int(&g.GenStatus, "gen_status")
		s.float(&g.PMax, "pmax")
		s.float(&g.PMin, "pmin")
		s.optFloat(&g.PC1, "pc1")
		s.optFloat(&g.PC2, "pc2")
		s.optFloat(&g.QC1Min, "qc1min")
		s.optFloat(&g.QC1Max, "qc1max")
		s.optFloat(&g.QC2Min, "qc2min")
		s.optFloat(&g.QC2Max, "qc2max")
		s.optFloat(&g.RampAGC, "ramp_agc")
		s.optFloat(&g.Ramp10, "ramp_10")
		s.optFloat(&g.Ramp30, "ramp_30")
		s.optFloat(&g.RampQ, "ramp_q")
		s.optFloat(&g.APF, "apf")
		s.optFloat(&g.MuPMax, "mu_pmax")
		s.optFloat(&g.MuPMin, "mu_pmin")
		s.optFloat(&g.MuQMax, "mu_qmax")
		s.optFloat(&g.MuQMin, "mu_qmin")
		if s.err != nil {
			return s.err
		}
		gens = append(gens, g)
		return nil
	})
	return gens, err
}

func encodeBranches(branches []casedata.Branch) ([]byte, error) {
	angle, pf, opf := false, false, false
	for _, br := range branches {
		if br.AngMin != nil || br.AngMax != nil {
			angle = true
		}
		if br.IsPF() {
			pf = true
		}
		if br.IsOPF() {
			opf = true
		}
	}

	var groups [][]string
	groups = append(groups, branchColumns)
	if angle {
		groups = append(groups, branchAngleColumns)
	}
	if pf {
		groups = append(groups, branchPFColumns)
	}
	if opf {
		groups = append(groups, branchOPFColumns)
	}
	header := concat(groups...)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, br := range branches {
		rec := []string{
			itoa(br.FBus), itoa(br.TBus),
			ftoa(br.BrR), ftoa(br.BrX), ftoa(br.BrB),
			ftoa(br.RateA), ftoa(br.RateB), ftoa(br.RateC),
			ftoa(br.Tap), ftoa(br.Shift), itoa(br.BrStatus),
		}
		if angle {
			rec = append(rec, fptoa(br.AngMin), fptoa(br.AngMax))
		}
		if pf {
			rec = append(rec, fptoa(br.PF), fptoa(br.QF), fptoa(br.PT), fptoa(br.QT))
		}
		if opf {
			rec = append(rec, fptoa(br.MuSF), fptoa(br.MuST), fptoa(br.MuAngMin), fptoa(br.MuAngMax))
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func decodeBranches(r io.Reader) ([]casedata.Branch, error) {
	var branches []casedata.Branch
	err := decodeRows(r, func(s *scanner) error {
		var br casedata.Branch
		s.int(&br.FBus, "f_bus")
		s.int(&br.TBus, "t_bus")
		s.float(&br.BrR, "br_r")
		s.float(&br.BrX, "br_x")
		s.float(&br.BrB, "br_b")
		s.float(&br.RateA, "rate_a")
		s.float(&br.RateB, "rate_b")
		s.float(&br.RateC, "rate_c")
		s.float(&br.Tap, "tap")
		s.float(&br.Shift, "shift")
		s.int(&br.BrStatus, "br_status")
		s.optFloat(&br.AngMin, "angmin")
		s.optFloat(&br.AngMax, "angmax")
		s.optFloat(&br.PF, "pf")
		s.optFloat(&br.QF, "qf")
		s.optFloat(&br.PT, "pt")
		s.optFloat(&br.QT, "qt")
		s.optFloat(&br.MuSF, "mu_sf")
		s.optFloat(&br.MuST, "mu_st")
		s.optFloat(&br.MuAngMin, "mu_angmin")
		s.optFloat(&br.MuAngMax, "mu_angmax")
		if s.err != nil {
			return s.err
		}
		branches = append(branches, br)
		return nil
	})
	return branches, err
}

func encodeDCLines(dclines []casedata.DCLine) ([]byte, error) {
	opf := false
	for _, ln := range dclines {
		if ln.IsOPF() {
			opf = true
			break
		}
	}

	header := dclineColumns
	if opf {
		header = concat(dclineColumns, dclineOPFColumns)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, ln := range dclines {
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
				fptoa(ln.MuPMin), fptoa(ln.MuPMax),
				fptoa(ln.MuQMinF), fptoa(ln.MuQMaxF), fptoa(ln.MuQMinT), fptoa(ln.MuQMaxT))
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func decodeDCLines(r io.Reader) ([]casedata.DCLine, error) {
	var dclines []casedata.DCLine
	err := decodeRows(r, func(s *scanner) error {
		var ln casedata.DCLine
		s.int(&ln.FBus, "f_bus")
		s.int(&ln.TBus, "t_bus")
		s.int(&ln.BrStatus, "br_status")
		s.float(&ln.PF, "pf")
		s.float(&ln.PT, "pt")
		s.float(&ln.QF, "qf")
		s.float(&ln.QT, "qt")
		s.float(&ln.VF, "vf")
		s.float(&ln.VT, "vt")
		s.float(&ln.PMin, "pmin")
		s.float(&ln.PMax, "pmax")
		s.float(&ln.QMinF, "qminf")
		s.float(&ln.QMaxF, "qmaxf")
		s.float(&ln.QMinT, "qmint")
		s.float(&ln.QMaxT, "qmaxt")
		s.float(&ln.Loss0, "loss0")
		s.float(&ln.Loss1, "loss1")
		s.optFloat(&ln.MuPMin, "mu_pmin")
		s.optFloat(&ln.MuPMax, "mu_pmax")
		s.optFloat(&ln.MuQMinF, "mu_qminf")
		s.optFloat(&ln.MuQMaxF, "mu_qmaxf")
		s.optFloat(&ln.MuQMinT, "mu_qmint")
		s.optFloat(&ln.MuQMaxT, "mu_qmaxt")
		if s.err != nil {
			return fmt.Errorf("dcline record parse error: %v", s.err)
		}
		dclines = append(dclines, ln)
		return nil
	})
	return dclines, err
}

// Cost records have no header row and a data dependent width: four
// fixed fields followed by ncost breakpoint pairs or ncost
// coefficients.
func encodeGenCosts(costs []casedata.GenCost) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, c := range costs {
		if err := w.Write(genCostRecord(c)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func genCostRecord(c casedata.GenCost) []string {
	rec := []string{itoa(c.Model), ftoa(c.Startup), ftoa(c.Shutdown), itoa(c.NCost)}
	switch {
	case c.IsPWL():
		for _, p := range c.Points {
			rec = append(rec, ftoa(p[0]), ftoa(p[1]))
		}
	case c.IsPolynomial():
		for _, coeff := range c.Coeffs {
			rec = append(rec, ftoa(coeff))
		}
	}
	return rec
}

func decodeGenCosts(r io.Reader) ([]casedata.GenCost, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var costs []casedata.GenCost
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			return costs, nil
		}
		if err != nil {
			return nil, err
		}
		c, err := parseGenCost(fields)
		if err != nil {
			return nil, err
		}
		costs = append(costs, c)
	}
}

func parseGenCost(fields []string) (casedata.GenCost, error) {
	var c casedata.GenCost
	if len(fields) < 4 {
		return c, fmt.Errorf("cost record must have model, startup, shutdown and ncost fields (%d)", len(fields))
	}

	var err error
	if c.Model, err = strconv.Atoi(fields[0]); err != nil {
		return c, fmt.Errorf("cost model parse error: %v (%s)", err, fields[0])
	}
	if c.Startup, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return c, fmt.Errorf("startup cost parse error: %v (%s)", err, fields[1])
	}
	if c.Shutdown, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return c, fmt.Errorf("shutdown cost parse error: %v (%s)", err, fields[2])
	}
	if c.NCost, err = strconv.Atoi(fields[3]); err != nil {
		return c, fmt.Errorf("ncost parse error: %v (%s)", err, fields[3])
	}

	rest := fields[4:]
	switch {
	case c.IsPWL():
		if len(rest) < 2*c.NCost {
			return c, fmt.Errorf("piecewise linear record must have %d point fields (%d)", 2*c.NCost, len(rest))
		}
		points := make([][2]float64, 0, c.NCost)
		for n := 0; n < c.NCost; n++ {
			p, err := strconv.ParseFloat(rest[2*n], 64)
			if err != nil {
				return c, fmt.Errorf("pwl point (p%d) parse error: %v (%s)", n+1, err, rest[2*n])
			}
			f, err := strconv.ParseFloat(rest[2*n+1], 64)
			if err != nil {
				return c, fmt.Errorf("pwl point (f%d) parse error: %v (%s)", n+1, err, rest[2*n+1])
			}
			points = append(points, [2]float64{p, f})
		}
		c.Points = points
	case c.IsPolynomial():
		if len(rest) < c.NCost {
			return c, fmt.Errorf("polynomial record must have %d coefficient fields (%d)", c.NCost, len(rest))
		}
		coeffs := make([]float64, 0, c.NCost)
		for n := 0; n < c.NCost; n++ {
			v, err := strconv.ParseFloat(rest[n], 64)
			if err != nil {
				return c, fmt.Errorf("coefficient (%d) parse error: %v (%s)", c.NCost-1-n, err, rest[n])
			}
			coeffs = append(coeffs, v)
		}
		c.Coeffs = coeffs
	default:
		return c, fmt.Errorf("cost model must be 1 or 2 (%d)", c.Model)
	}
	return c, nil
}

// row addresses one CSV record through the header row of its file.
type row struct {
	index  map[string]int
	fields []string
}

func newRow(header, fields []string) row {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	return row{index: idx, fields: fields}
}

func (r row) lookup(name string) (string, bool) {
	i, ok := r.index[name]
	if !ok || i >= len(r.fields) {
		return "", false
	}
	return r.fields[i], true
}

// scanner pulls typed fields out of a row and holds the first error.
type scanner struct {
	row row
	err error
}

func (s *scanner) str(dst *string, name string) {
	if s.err != nil {
		return
	}
	f, ok := s.row.lookup(name)
	if !ok {
		s.err = fmt.Errorf("missing %s column", name)
		return
	}
	*dst = f
}

func (s *scanner) int(dst *int, name string) {
	if s.err != nil {
		return
	}
	f, ok := s.row.lookup(name)
	if !ok {
		s.err = fmt.Errorf("missing %s column", name)
		return
	}
	v, err := strconv.Atoi(f)
	if err != nil {
		s.err = fmt.Errorf("%s parse error: %v (%s)", name, err, f)
		return
	}
	*dst = v
}

func (s *scanner) float(dst *float64, name string) {
	if s.err != nil {
		return
	}
	f, ok := s.row.lookup(name)
	if !ok {
		s.err = fmt.Errorf("missing %s column", name)
		return
	}
	v, err := strconv.ParseFloat(f, 64)
	if err != nil {
		s.err = fmt.Errorf("%s parse error: %v (%s)", name, err, f)
		return
	}
	*dst = v
}

// optFloat leaves dst nil when the column is absent or blank.
func (s *scanner) optFloat(dst **float64, name string) {
	if s.err != nil {
		return
	}
	f, ok := s.row.lookup(name)
	if !ok || f == "" {
		return
	}
	v, err := strconv.ParseFloat(f, 64)
	if err != nil {
		s.err = fmt.Errorf("%s parse error: %v (%s)", name, err, f)
		return
	}
	*dst = &v
}

// decodeRows reads the header row then hands each record to parse.
func decodeRows(r io.Reader, parse func(*scanner) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}

	for {
		fields, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		s := scanner{row: row{index: idx, fields: fields}}
		if err := parse(&s); err != nil {
			return err
		}
	}
}

func concat(groups ...[]string) []string {
	out := make([]string, 0, 32)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// fptoa renders a blank field for an unset optional value.
func fptoa(v *float64) string {
	if v == nil {
		return ""
	}
	return ftoa(*v)
}
