// Package casedata holds the normalized power flow case model. Records
// follow the MATPOWER case format: all impedances, ratings and setpoints
// are expressed on the common system MVA base carried by Case.
package casedata

// Out-of-service status for generators, branches and DC lines.
const OutOfService = 0

// In-service status for generators, branches and DC lines.
const InService = 1

// Case is the container-level header of a power flow case.
type Case struct {
	// Case name.
	Name string `json:"casename"`

	// Case format version.
	Version string `json:"version"`

	// System MVA base.
	BaseMVA float64 `json:"base_mva"`

	// Total system cost (US dollars).
	F *float64 `json:"f,omitempty"`
}

// NewCase returns a Case with default version and system MVA base.
func NewCase(name string) Case {
	return Case{
		Name:    name,
		Version: "2",
		BaseMVA: 100.0,
	}
}

// BusIndex maps bus numbers to positions in the bus slice.
func BusIndex(buses []Bus) map[int]int {
	idx := make(map[int]int, len(buses))
	for i, b := range buses {
		idx[b.BusI] = i
	}
	return idx
}
