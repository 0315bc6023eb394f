package convert

import (
	"math"

	"github.com/ohowland/caseform/internal/pkg/raw"
)

// zbase returns the impedance base in ohms for a voltage base in kV and a
// power base in MVA.
func zbase(kv, mva float64) float64 { return kv * kv / mva }

// systemPU rescales one winding pair's declared impedance onto the system
// base at a reference bus, following
//
//	z_new = z_old * (v_old/v_new)^2 * (s_new/s_old)
//
// with the same factor applied to resistance and reactance. nomv is the
// winding voltage base in kV, zero selecting the bus base. Under the load
// loss code the resistance arrives in watts and x holds the impedance
// magnitude in p.u. on the winding base; the winding resistance must not
// exceed that magnitude. buses identifies the owning record in errors.
func systemPU(cz int, r, x, sbase, nomv, busKV, sysMVA float64, buses []int) (float64, float64, error) {
	if nomv == 0 {
		nomv = busKV
	}
	switch cz {
	case raw.ImpedanceSystemPU:
		return r, x, nil
	case raw.ImpedanceWindingPU:
		scale := zbase(nomv, sbase) / zbase(busKV, sysMVA)
		return r * scale, x * scale, nil
	case raw.ImpedanceLoadLoss:
		rw := 1e-6 * r / sbase
		if x < rw {
			return 0, 0, &NumericDomainError{Z: x, R: rw, Buses: buses}
		}
		xw := math.Sqrt(x*x - rw*rw)
		scale := zbase(nomv, sbase) / zbase(busKV, sysMVA)
		return rw * scale, xw * scale, nil
	}
	return 0, 0, &UnsupportedCodeError{
		Code:  "cz",
		Value: cz,
		Valid: []int{raw.ImpedanceSystemPU, raw.ImpedanceWindingPU, raw.ImpedanceLoadLoss},
		Buses: buses,
	}
}

// tapRatio derives a two-winding off-nominal tap from the winding voltage
// fields. Under the off-nominal code the windings are already p.u. of
// their bus bases; under the kV code they are absolute voltages referred
// to the from side through the bus base ratio. Both conventions produce
// the same ratio for the same physical transformer.
func tapRatio(cw int, windv1, windv2, fromKV, toKV float64, buses []int) (float64, error) {
	switch cw {
	case raw.WindingOffNominal:
		return windv1 / windv2, nil
	case raw.WindingKV:
		return (windv1 / windv2) * (toKV / fromKV), nil
	}
	return 0, &UnsupportedCodeError{
		Code:  "cw",
		Value: cw,
		Valid: []int{raw.WindingOffNominal, raw.WindingKV},
		Buses: buses,
	}
}

// legTap derives one winding leg's tap for a star decomposition. Each leg
// is referred to its own bus base.
func legTap(cw int, windv, busKV float64, buses []int) (float64, error) {
	switch cw {
	case raw.WindingOffNominal:
		return windv, nil
	case raw.WindingKV:
		return windv / busKV, nil
	}
	return 0, &UnsupportedCodeError{
		Code:  "cw",
		Value: cw,
		Valid: []int{raw.WindingOffNominal, raw.WindingKV},
		Buses: buses,
	}
}

// starBusBase returns the smallest power of ten strictly greater than the
// largest bus number. Star buses are numbered upward from it.
func starBusBase(buses []raw.Bus) int {
	max := 0
	for _, b := range buses {
		if b.I > max {
			max = b.I
		}
	}
	p := 1
	for p <= max {
		p *= 10
	}
	return p
}
