package convert

import (
	"fmt"
	"strconv"
	"strings"
)

// DanglingRefError reports a record referencing a bus number absent from
// the bus set. Kind names the record class holding the reference.
type DanglingRefError struct {
	Kind string
	Bus  int
}

func (e *DanglingRefError) Error() string {
	return fmt.Sprintf("%s references unknown bus %d", e.Kind, e.Bus)
}

// UnsupportedCodeError reports a winding or impedance data code outside its
// documented set. Buses identifies the offending transformer record.
type UnsupportedCodeError struct {
	Code  string
	Value int
	Valid []int
	Buses []int
}

func (e *UnsupportedCodeError) Error() string {
	return fmt.Sprintf("unsupported %s code %d on transformer %s, valid codes are %s",
		e.Code, e.Value, busList(e.Buses), intList(e.Valid))
}

// NumericDomainError reports an impedance magnitude smaller than its
// resistive part, which admits no real reactance. Both values are p.u. on
// the winding base.
type NumericDomainError struct {
	Z     float64
	R     float64
	Buses []int
}

func (e *NumericDomainError) Error() string {
	return fmt.Sprintf("impedance magnitude %v is less than resistance %v on transformer %s",
		e.Z, e.R, busList(e.Buses))
}

// MissingFieldError reports a field a three-winding record requires but
// does not carry.
type MissingFieldError struct {
	Field string
	Buses []int
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("transformer %s is missing field %s", busList(e.Buses), e.Field)
}

func busList(buses []int) string {
	s := make([]string, len(buses))
	for i, b := range buses {
		s[i] = strconv.Itoa(b)
	}
	return strings.Join(s, "-")
}

func intList(vals []int) string {
	s := make([]string, len(vals))
	for i, v := range vals {
		s[i] = strconv.Itoa(v)
	}
	return strings.Join(s, ", ")
}
