package skemagen

import "github.com/reoring/skemagen/maketype"

// Totality is the per-record field-presence policy.
type Totality int

const (
	Total   Totality = iota // Every declared field appears in a conformant payload.
	Partial                 // Any declared field may be legally absent.
)

func (t Totality) String() string {
	if t == Partial {
		return "partial"
	}
	return "total"
}

// AbsentValue is the type of the Absent sentinel.
type AbsentValue struct{}

// Absent is drawn by partial value strategies to mean "omit this field". It
// is distinct from nil and from every legal field value, so a legitimately
// empty value such as an empty list is never confused with an omitted one.
var Absent AbsentValue

func (AbsentValue) String() string { return "<absent>" }

// Payload maps declared wire keys to drawn field values.
type Payload map[string]any

// ExtraKeySet holds the undeclared keys injected by a corruption wrapper.
type ExtraKeySet map[string]struct{}

// Record pairs a synthesized record definition with a payload that is valid
// for it under its totality policy.
type Record struct {
	Def     *maketype.Definition
	Payload Payload
}

// Corrupted is a Record whose payload additionally carries the undeclared
// keys listed in Extra, each mapped to the fixed sentinel value 1.
type Corrupted struct {
	Record
	Extra ExtraKeySet
}
