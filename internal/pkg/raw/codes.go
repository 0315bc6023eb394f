package raw

// Winding data codes (CW). Code 3 (turns ratio on load-tap base) is not
// convertible and is rejected up front.
const (
	WindingOffNominal = 1 // winding voltage in p.u. of bus base
	WindingKV         = 2 // winding voltage in kV
)

// ValidCW reports whether cw selects a supported winding convention.
func ValidCW(cw int) bool { return cw == WindingOffNominal || cw == WindingKV }

// Impedance data codes (CZ).
const (
	ImpedanceSystemPU  = 1 // p.u. on system base
	ImpedanceWindingPU = 2 // p.u. on winding base
	ImpedanceLoadLoss  = 3 // load loss in watts and |Z| in p.u. on winding base
)

// ValidCZ reports whether cz selects a supported impedance convention.
func ValidCZ(cz int) bool {
	return cz == ImpedanceSystemPU || cz == ImpedanceWindingPU || cz == ImpedanceLoadLoss
}

// DC line control modes (MDC).
const (
	DCBlocked = 0
	DCPower   = 1 // setvl is a power demand in MW
	DCCurrent = 2 // setvl is a current demand in amps
)

// WindingStatus is the decoded form of a transformer status code: one
// in-service flag per leg of the equivalent star.
type WindingStatus struct {
	Leg1 bool
	Leg2 bool
	Leg3 bool
}

// DecodeWindingStatus expands a composite three-winding status code. 0
// takes the whole bank out; 2, 3 and 4 take out only the second, third or
// first winding. Any other value leaves all legs in service.
func DecodeWindingStatus(stat int) WindingStatus {
	return WindingStatus{
		Leg1: stat != 0 && stat != 4,
		Leg2: stat != 0 && stat != 2,
		Leg3: stat != 0 && stat != 3,
	}
}

// InService reports whether a two-winding record with this status code
// carries flow.
func InService(stat int) bool { return stat != 0 }
