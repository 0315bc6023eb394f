package casedata

import "fmt"

// ValidateBusNumbers checks that bus numbers are unique and that every
// gen, branch and dcline endpoint references an existing bus. A nil
// collection skips its check.
func ValidateBusNumbers(bus []Bus, gen []Gen, branch []Branch, dcline []DCLine) error {
	numbers := make(map[int]struct{}, len(bus))
	for _, b := range bus {
		if _, ok := numbers[b.BusI]; ok {
			return fmt.Errorf("bus numbers must be unique (bus_i %d)", b.BusI)
		}
		numbers[b.BusI] = struct{}{}
	}

	for _, g := range gen {
		if _, ok := numbers[g.GenBus]; !ok {
			return fmt.Errorf("gen bus must exist (bus %d)", g.GenBus)
		}
	}

	for _, br := range branch {
		if _, ok := numbers[br.FBus]; !ok {
			return fmt.Errorf("branch f_bus must exist (f_bus %d)", br.FBus)
		}
		if _, ok := numbers[br.TBus]; !ok {
			return fmt.Errorf("branch t_bus must exist (t_bus %d)", br.TBus)
		}
	}

	for _, ln := range dcline {
		if _, ok := numbers[ln.FBus]; !ok {
			return fmt.Errorf("dcline f_bus must exist (f_bus %d)", ln.FBus)
		}
		if _, ok := numbers[ln.TBus]; !ok {
			return fmt.Errorf("dcline t_bus must exist (t_bus %d)", ln.TBus)
		}
	}

	return nil
}

// ValidateGen checks generator limits and optional field groups: the
// version 2 block and the OPF block are each all-or-none, and OPF results
// require the version 2 block.
func ValidateGen(g Gen) error {
	if g.QMax < g.QMin {
		return fmt.Errorf("qmax must be >= qmin (qmax %v, qmin %v)", g.QMax, g.QMin)
	}
	if g.PMax < g.PMin {
		return fmt.Errorf("pmax must be >= pmin (pmax %v, pmin %v)", g.PMax, g.PMin)
	}

	v2 := []*float64{
		g.PC1, g.PC2, g.QC1Min, g.QC1Max, g.QC2Min, g.QC2Max,
		g.RampAGC, g.Ramp10, g.Ramp30, g.RampQ, g.APF,
	}
	if anySet(v2) && !allSet(v2) {
		return fmt.Errorf("version 2 fields must all be set if one is set (bus %d)", g.GenBus)
	}

	opf := []*float64{g.MuPMax, g.MuPMin, g.MuQMax, g.MuQMin}
	if anySet(opf) {
		if !allSet(opf) {
			return fmt.Errorf("opf result fields must all be set if one is set (bus %d)", g.GenBus)
		}
		if !allSet(v2) {
			return fmt.Errorf("version 2 fields must all be set if opf result fields are set (bus %d)", g.GenBus)
		}
	}

	return nil
}

// ValidateBranch checks endpoint distinctness and optional field groups:
// angle limits, branch flows and OPF results are each all-or-none, flows
// require angle limits and OPF results require flows.
func ValidateBranch(br Branch) error {
	if br.FBus == br.TBus {
		return fmt.Errorf("f_bus and t_bus numbers must be different (bus %d)", br.FBus)
	}

	anglim := []*float64{br.AngMin, br.AngMax}
	if anySet(anglim) && !allSet(anglim) {
		return fmt.Errorf("both angle limits must be set if one is set (%d-%d)", br.FBus, br.TBus)
	}

	flows := []*float64{br.PF, br.QF, br.PT, br.QT}
	if anySet(flows) {
		if !allSet(anglim) {
			return fmt.Errorf("angle limits must be set if branch flows are set (%d-%d)", br.FBus, br.TBus)
		}
		if !allSet(flows) {
			return fmt.Errorf("all branch flows must be set if one is set (%d-%d)", br.FBus, br.TBus)
		}
	}

	opf := []*float64{br.MuSF, br.MuST, br.MuAngMin, br.MuAngMax}
	if anySet(opf) {
		if !allSet(anglim) {
			return fmt.Errorf("angle limits must be set if opf results are set (%d-%d)", br.FBus, br.TBus)
		}
		if !allSet(flows) {
			return fmt.Errorf("all branch flows must be set if opf results are set (%d-%d)", br.FBus, br.TBus)
		}
		if !allSet(opf) {
			return fmt.Errorf("all opf results must be set if one opf result is set (%d-%d)", br.FBus, br.TBus)
		}
	}

	return nil
}

// ValidateGenCost checks that ncost matches the breakpoint or coefficient
// count for the declared model.
func ValidateGenCost(c GenCost) error {
	switch {
	case c.IsPWL():
		if c.Points == nil {
			return fmt.Errorf("end/breakpoints must be set if model is pwl (model %d)", c.Model)
		}
		if c.NCost != len(c.Points) {
			return fmt.Errorf("ncost must equal the number of pwl end/breakpoints (ncost %d, len %d)", c.NCost, len(c.Points))
		}
	case c.IsPolynomial():
		if c.Coeffs == nil {
			return fmt.Errorf("coefficients must be set if model is polynomial (model %d)", c.Model)
		}
		if c.NCost != len(c.Coeffs) {
			return fmt.Errorf("ncost must equal the number of coefficients (ncost %d, len %d)", c.NCost, len(c.Coeffs))
		}
	default:
		return fmt.Errorf("cost model must be 1 or 2 (%d)", c.Model)
	}
	return nil
}

func anySet(fields []*float64) bool {
	for _, f := range fields {
		if f != nil {
			return true
		}
	}
	return false
}

func allSet(fields []*float64) bool {
	for _, f := range fields {
		if f == nil {
			return false
		}
	}
	return true
}
