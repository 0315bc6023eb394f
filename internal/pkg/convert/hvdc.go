package convert

import (
	"math"

	"github.com/ohowland/caseform/internal/pkg/raw"
)

// dcFlow returns the real power a two-terminal DC line carries under its
// control mode: a direct MW demand, a current demand scaled by the
// scheduled compounded voltage, or zero for any unrecognized mode.
func dcFlow(line raw.TwoTerminalDCLine) float64 {
	setvl := math.Abs(line.SetVl)
	switch line.MDC {
	case raw.DCPower:
		return setvl
	case raw.DCCurrent:
		return setvl * line.VSchd / 1000.0
	}
	return 0.0
}

// converterQLims derives the reactive power range one converter terminal
// consumes, from its firing or extinction angle limits in degrees and the
// line's real power flow. The minimum assumes no commutation overlap, so
// the power factor angle equals the minimum control angle. The maximum
// assumes the overlap reaches 60 degrees (see Kimbark), combining with the
// maximum control angle as
//
//	cos(phi) = (cos(angmax) + cos(60)) / 2
//	qmax = p * tan(phi)
//
// Both bounds are magnitudes; the caller resolves sign convention.
func converterQLims(angMax, angMin, p float64) (qmin, qmax float64) {
	qmin = math.Abs(p * math.Tan(radians(angMin)))

	phi := math.Acos(0.5 * (math.Cos(radians(angMax)) + math.Cos(radians(60.0))))
	qmax = math.Abs(p * math.Tan(phi))

	return qmin, qmax
}

func radians(deg float64) float64 { return deg * math.Pi / 180.0 }
