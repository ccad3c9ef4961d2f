package skemagen_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"

	skemagen "github.com/reoring/skemagen"
)

func drawFieldSpec(t *testing.T, g gopter.Gen, gp *gopter.GenParameters) skemagen.FieldSpec {
	t.Helper()
	v, ok := g(gp).Retrieve()
	if !ok {
		t.Fatalf("field kind draw failed")
	}
	spec, ok := v.(skemagen.FieldSpec)
	if !ok {
		t.Fatalf("unexpected result type %T", v)
	}
	return spec
}

func TestIntField_TotalValues(t *testing.T) {
	gp := gopter.DefaultGenParameters()
	spec := drawFieldSpec(t, skemagen.IntField(skemagen.Total), gp)
	if spec.Type != reflect.TypeOf(0) {
		t.Fatalf("declared type: %v", spec.Type)
	}
	for i := 0; i < 50; i++ {
		v, ok := spec.Value(gp).Retrieve()
		if !ok {
			t.Fatalf("value draw %d failed", i)
		}
		if _, isInt := v.(int); !isInt {
			t.Fatalf("value draw %d: got %T, want int", i, v)
		}
	}
}

func TestIntField_PartialDrawsAbsent(t *testing.T) {
	gp := gopter.DefaultGenParameters()
	spec := drawFieldSpec(t, skemagen.IntField(skemagen.Partial), gp)
	var absents, ints int
	// The value strategy is an even union, so 200 draws miss a branch with
	// probability 2^-200.
	for i := 0; i < 200; i++ {
		v, ok := spec.Value(gp).Retrieve()
		if !ok {
			t.Fatalf("value draw %d failed", i)
		}
		switch v.(type) {
		case skemagen.AbsentValue:
			absents++
		case int:
			ints++
		default:
			t.Fatalf("value draw %d: unexpected %T", i, v)
		}
	}
	if absents == 0 || ints == 0 {
		t.Fatalf("expected both branches, got %d absent / %d int", absents, ints)
	}
}

func TestIntSliceField_Values(t *testing.T) {
	gp := gopter.DefaultGenParameters()
	spec := drawFieldSpec(t, skemagen.IntSliceField(skemagen.Total), gp)
	for i := 0; i < 50; i++ {
		v, ok := spec.Value(gp).Retrieve()
		if !ok {
			t.Fatalf("value draw %d failed", i)
		}
		if _, isSlice := v.([]int); !isSlice {
			t.Fatalf("value draw %d: got %T, want []int", i, v)
		}
	}
}

func TestTimeField_WholeSeconds(t *testing.T) {
	gp := gopter.DefaultGenParameters()
	spec := drawFieldSpec(t, skemagen.TimeField(skemagen.Total), gp)
	for i := 0; i < 50; i++ {
		v, ok := spec.Value(gp).Retrieve()
		if !ok {
			t.Fatalf("value draw %d failed", i)
		}
		ts, isTime := v.(time.Time)
		if !isTime {
			t.Fatalf("value draw %d: got %T, want time.Time", i, v)
		}
		if ts.Nanosecond() != 0 {
			t.Fatalf("value draw %d: sub-second precision survived: %v", i, ts)
		}
	}
}

func TestFieldKinds_CarryNameStrategy(t *testing.T) {
	gp := gopter.DefaultGenParameters()
	for _, tot := range []skemagen.Totality{skemagen.Total, skemagen.Partial} {
		spec := drawFieldSpec(t, skemagen.IntField(tot), gp)
		if spec.Name == nil {
			t.Fatalf("totality %v: missing name strategy", tot)
		}
		v, ok := spec.Name(gp).Retrieve()
		if !ok {
			t.Fatalf("totality %v: name draw failed", tot)
		}
		name, isString := v.(string)
		if !isString {
			t.Fatalf("totality %v: name draw got %T", tot, v)
		}
		for _, r := range name {
			if r < 'a' || r > 'z' {
				t.Fatalf("totality %v: name %q not lowercase", tot, name)
			}
		}
	}
}
