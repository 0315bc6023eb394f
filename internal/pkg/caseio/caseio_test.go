package caseio

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/ohowland/caseform/internal/pkg/casedata"
)

func fp(v float64) *float64 { return &v }

func testCaseSet() *CaseSet {
	c := casedata.NewCase("entsoe")

	bus1 := casedata.NewBus(1)
	bus1.BusType = casedata.REF
	bus1.PD = 475
	bus1.QD = 76
	bus1.BaseKV = 380
	bus1.VMax = 1.1
	bus1.VMin = 0.9

	bus2 := casedata.NewBus(2)
	bus2.VM = 0.9917
	bus2.VA = 9.2327
	bus2.BaseKV = 21
	bus2.VMax = 1.1
	bus2.VMin = 0.9

	gen := casedata.NewGen(2)
	gen.PG = -475
	gen.QG = -156.16
	gen.QMax = 0
	gen.QMin = -300
	gen.MBase = 500
	gen.PMax = 0
	gen.PMin = -500

	line := casedata.NewBranch(1, 2)
	line.BrR = 0.003
	line.BrX = 0.085
	line.RateA = 250

	xfmr := casedata.NewBranch(2, 1)
	xfmr.BrR = 0.00036
	xfmr.BrX = 0.0389
	xfmr.Tap = 1.1026
	xfmr.AngMin = fp(-30)
	xfmr.AngMax = fp(30)

	poly := casedata.NewGenCost(casedata.Polynomial)
	poly.NCost = 3
	poly.Coeffs = []float64{0.11, 5, 150}

	pwl := casedata.NewGenCost(casedata.PWLinear)
	pwl.NCost = 2
	pwl.Points = [][2]float64{{10, 200}, {30, 600}}

	dcline := casedata.NewDCLine(1, 2)
	dcline.PF = 200
	dcline.PT = 200
	dcline.PMin = 170
	dcline.PMax = 230
	dcline.QMinF = -80
	dcline.QMaxF = 80
	dcline.QMinT = -90
	dcline.QMaxT = 90
	dcline.Loss0 = 0.1
	dcline.Loss1 = 0.005

	return &CaseSet{
		Case:     c,
		Buses:    []casedata.Bus{bus1, bus2},
		Gens:     []casedata.Gen{gen},
		Branches: []casedata.Branch{line, xfmr},
		GenCosts: []casedata.GenCost{poly, pwl},
		DCLines:  []casedata.DCLine{dcline},
		README:   "two bus transmission grid with a unit transformer",
		License:  "BSD-3-Clause",
	}
}

func TestDirRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cs := testCaseSet()

	err := WriteDir(dir, cs)
	assert.NilError(t, err)

	got, err := ReadDir(dir)
	assert.NilError(t, err)

	assert.DeepEqual(t, got.Case, cs.Case)
	assert.DeepEqual(t, got.Buses, cs.Buses)
	assert.DeepEqual(t, got.Gens, cs.Gens)
	assert.DeepEqual(t, got.Branches, cs.Branches)
	assert.DeepEqual(t, got.GenCosts, cs.GenCosts)
	assert.DeepEqual(t, got.DCLines, cs.DCLines)
	assert.Equal(t, got.README, cs.README)
	assert.Equal(t, got.License, cs.License)
}

func TestZipRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entsoe.zip")
	cs := testCaseSet()

	err := WriteZip(path, cs)
	assert.NilError(t, err)

	got, err := ReadZip(path)
	assert.NilError(t, err)

	assert.DeepEqual(t, got.Case, cs.Case)
	assert.DeepEqual(t, got.Buses, cs.Buses)
	assert.DeepEqual(t, got.Gens, cs.Gens)
	assert.DeepEqual(t, got.Branches, cs.Branches)
	assert.DeepEqual(t, got.GenCosts, cs.GenCosts)
	assert.DeepEqual(t, got.DCLines, cs.DCLines)
	assert.Equal(t, got.README, cs.README)
	assert.Equal(t, got.License, cs.License)
}

func TestZipRoundTripInMemory(t *testing.T) {
	cs := testCaseSet()

	var buf bytes.Buffer
	err := WriteZipTo(&buf, cs)
	assert.NilError(t, err)

	got, err := ReadZipFile(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	assert.NilError(t, err)

	assert.DeepEqual(t, got.Case, cs.Case)
	assert.Equal(t, len(got.Buses), 2)
	assert.Equal(t, len(got.DCLines), 1)
}

func TestZipRequiresCaseFile(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(BusFile)
	assert.NilError(t, err)
	_, err = w.Write([]byte("bus_i,bus_type\n"))
	assert.NilError(t, err)
	assert.NilError(t, zw.Close())

	_, err = ReadZipFile(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	assert.Error(t, err, "zip archive must contain case.csv file")
}

func TestZipRequiresBusFile(t *testing.T) {
	cs := &CaseSet{Case: casedata.NewCase("empty")}

	var buf bytes.Buffer
	err := WriteZipTo(&buf, cs)
	assert.NilError(t, err)

	_, err = ReadZipFile(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	assert.Error(t, err, "zip archive must contain bus.csv file")
}

func TestDirSkipsEmptyCollections(t *testing.T) {
	dir := t.TempDir()
	cs := testCaseSet()
	cs.Gens = nil
	cs.GenCosts = nil
	cs.DCLines = nil
	cs.README = ""
	cs.License = ""

	err := WriteDir(dir, cs)
	assert.NilError(t, err)

	for _, name := range []string{GenFile, GenCostFile, DCLineFile, ReadmeFile, LicenseFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.Assert(t, os.IsNotExist(err), "expected no %s", name)
	}

	got, err := ReadDir(dir)
	assert.NilError(t, err)
	assert.Equal(t, len(got.Gens), 0)
	assert.Equal(t, len(got.GenCosts), 0)
	assert.Equal(t, len(got.DCLines), 0)
	assert.Equal(t, len(got.Buses), 2)
}

func TestCaseFileRequiresRecord(t *testing.T) {
	_, err := decodeCase(strings.NewReader(""))
	assert.Error(t, err, "one case record must exist")

	_, err = decodeCase(strings.NewReader("casename,version,base_mva\n"))
	assert.Error(t, err, "one case record must exist")
}

func TestCaseRecordWithObjective(t *testing.T) {
	c := casedata.NewCase("opfresult")
	c.F = fp(4509.35)

	data, err := encodeCase(c)
	assert.NilError(t, err)

	got, err := decodeCase(bytes.NewReader(data))
	assert.NilError(t, err)
	assert.DeepEqual(t, got, c)
}

func TestGenCostRecordsHaveNoHeader(t *testing.T) {
	// The first row is data. A headered reader would swallow it.
	in := "2,0,0,3,0.11,5,150\n1,100,0,2,10,200,30,600\n"

	costs, err := decodeGenCosts(strings.NewReader(in))
	assert.NilError(t, err)
	assert.Equal(t, len(costs), 2)

	assert.Equal(t, costs[0].Model, casedata.Polynomial)
	assert.DeepEqual(t, costs[0].Coeffs, []float64{0.11, 5, 150})

	assert.Equal(t, costs[1].Model, casedata.PWLinear)
	assert.Equal(t, costs[1].Startup, 100.0)
	assert.DeepEqual(t, costs[1].Points, [][2]float64{{10, 200}, {30, 600}})
}

func TestGenCostParseErrors(t *testing.T) {
	_, err := parseGenCost([]string{"3", "0", "0", "2", "1", "2"})
	assert.Error(t, err, "cost model must be 1 or 2 (3)")

	_, err = parseGenCost([]string{"2", "0", "0"})
	assert.Error(t, err, "cost record must have model, startup, shutdown and ncost fields (3)")

	_, err = parseGenCost([]string{"x", "0", "0", "1", "2"})
	assert.ErrorContains(t, err, "cost model parse error")

	_, err = parseGenCost([]string{"1", "0", "0", "2", "10", "200"})
	assert.Error(t, err, "piecewise linear record must have 4 point fields (2)")
}

func TestDCLineRecordKeepsLossSlope(t *testing.T) {
	cs := testCaseSet()

	data, err := encodeDCLines(cs.DCLines)
	assert.NilError(t, err)

	header := strings.SplitN(string(data), "\n", 2)[0]
	assert.Assert(t, strings.HasSuffix(header, "loss0,loss1"), "header %q", header)

	got, err := decodeDCLines(bytes.NewReader(data))
	assert.NilError(t, err)
	assert.Equal(t, got[0].Loss0, 0.1)
	assert.Equal(t, got[0].Loss1, 0.005)
}

func TestOptionalColumnGroups(t *testing.T) {
	plain := casedata.NewBranch(1, 2)
	plain.BrX = 0.1

	data, err := encodeBranches([]casedata.Branch{plain})
	assert.NilError(t, err)
	header := strings.SplitN(string(data), "\n", 2)[0]
	assert.Assert(t, !strings.Contains(header, "angmin"), "header %q", header)
	assert.Assert(t, !strings.Contains(header, "pf"), "header %q", header)

	solved := plain
	solved.PF = fp(99.2)
	solved.QF = fp(10.1)
	solved.PT = fp(-99.0)
	solved.QT = fp(-9.8)

	data, err = encodeBranches([]casedata.Branch{plain, solved})
	assert.NilError(t, err)
	header = strings.SplitN(string(data), "\n", 2)[0]
	assert.Assert(t, strings.HasSuffix(header, "pf,qf,pt,qt"), "header %q", header)

	got, err := decodeBranches(bytes.NewReader(data))
	assert.NilError(t, err)
	assert.Assert(t, got[0].PF == nil)
	assert.Assert(t, got[1].IsPF())
	assert.Equal(t, *got[1].PF, 99.2)
}

func TestDatasetColumns(t *testing.T) {
	cs := testCaseSet()

	ds := NewDataset(cs.Case, cs.Buses, cs.Gens, cs.Branches)

	assert.Equal(t, ds.CaseName, "entsoe")
	assert.Equal(t, ds.BaseMVA, 100.0)
	assert.DeepEqual(t, ds.BusI, []int{1, 2})
	assert.DeepEqual(t, ds.PD, []float64{475, 0})
	assert.DeepEqual(t, ds.GenBus, []int{2})
	assert.DeepEqual(t, ds.Tap, []float64{0, 1.1026})

	// No branch carries flow results, the group is omitted entirely.
	assert.Assert(t, ds.PF == nil)
	assert.DeepEqual(t, ds.AngMin, []float64{0, -30})
}
