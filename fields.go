package skemagen

import (
	"reflect"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
)

// FieldSpec is one drawn field kind: the declared Go type plus the strategy
// for its values and a fallback naming strategy. Names are normally assigned
// in declaration order from the shared supply; the Name strategy exists for
// callers that want collision-free random naming instead.
type FieldSpec struct {
	Type  reflect.Type
	Value gopter.Gen
	Name  gopter.Gen
}

var (
	intType       = reflect.TypeOf(0)
	intSliceType  = reflect.TypeOf([]int(nil))
	timeType      = reflect.TypeOf(time.Time{})
	fieldSpecType = reflect.TypeOf(FieldSpec{})
)

// IntField generates the integer field kind: any integer, or Absent under
// Partial.
func IntField(t Totality) gopter.Gen {
	return gen.Const(FieldSpec{
		Type:  intType,
		Value: withAbsent(gen.Int(), t),
		Name:  lowerText(),
	})
}

// IntSliceField generates the list-of-integers field kind. The empty list is
// a legal present value and is never collapsed into absence.
func IntSliceField(t Totality) gopter.Gen {
	return gen.Const(FieldSpec{
		Type:  intSliceType,
		Value: withAbsent(gen.SliceOf(gen.Int()), t),
		Name:  lowerText(),
	})
}

// TimeField generates the timestamp field kind. Values are truncated to
// whole seconds so second-precision wire formats round-trip them exactly.
func TimeField(t Totality) gopter.Gen {
	return gen.Const(FieldSpec{
		Type:  timeType,
		Value: withAbsent(secondTimes(), t),
		Name:  lowerText(),
	})
}

// anyField unions the supported field kinds under one totality policy.
func anyField(t Totality) gopter.Gen {
	return gen.OneGenOf(IntField(t), IntSliceField(t), TimeField(t))
}

// withAbsent widens a value strategy with the Absent sentinel under Partial.
func withAbsent(values gopter.Gen, t Totality) gopter.Gen {
	if t == Total {
		return values
	}
	return gen.OneGenOf(values, gen.Const(Absent))
}

func secondTimes() gopter.Gen {
	return gen.Time().Map(func(v time.Time) time.Time {
		return v.Truncate(time.Second)
	})
}

// lowerText generates short lowercase text.
func lowerText() gopter.Gen {
	return gen.SliceOf(gen.AlphaLowerChar()).Map(func(rs []rune) string {
		return string(rs)
	})
}
