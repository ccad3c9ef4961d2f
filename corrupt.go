package skemagen

import (
	"maps"
	"reflect"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
)

// extraValue is the fixed sentinel stored under every injected key.
const extraValue = 1

var (
	corruptedType = reflect.TypeOf(Corrupted{})
	stringType    = reflect.TypeOf("")
)

// ExtraKeys wraps a record generator so each drawn record comes back with a
// possibly-empty set of undeclared three-character lowercase keys merged
// into a copy of its payload, each mapped to the value 1. Declared names
// never reach three characters, and the draw is additionally checked against
// the definition's key set, so the extras are disjoint from real fields.
func ExtraKeys(records gopter.Gen) gopter.Gen {
	return func(gp *gopter.GenParameters) *gopter.GenResult {
		rec, ok := drawFrom[Record](gp, records)
		if !ok {
			return gopter.NewEmptyResult(corruptedType)
		}
		drawn, ok := drawFrom[[]string](gp, gen.SliceOf(extraKey(), stringType))
		if !ok {
			return gopter.NewEmptyResult(corruptedType)
		}

		declared := make(map[string]struct{})
		for _, k := range rec.Def.Keys() {
			declared[k] = struct{}{}
		}
		payload := maps.Clone(rec.Payload)
		if payload == nil {
			payload = make(Payload, len(drawn))
		}
		extra := make(ExtraKeySet, len(drawn))
		for _, k := range drawn {
			if _, clash := declared[k]; clash {
				continue
			}
			extra[k] = struct{}{}
			payload[k] = extraValue
		}
		return gopter.NewGenResult(Corrupted{
			Record: Record{Def: rec.Def, Payload: payload},
			Extra:  extra,
		}, gopter.NoShrinker)
	}
}

// SimpleWithExtraKeys is ExtraKeys over Simple.
func SimpleWithExtraKeys(opts ...Option) gopter.Gen {
	return ExtraKeys(Simple(opts...))
}

// extraKey generates one three-character lowercase key.
func extraKey() gopter.Gen {
	return gen.SliceOfN(3, gen.AlphaLowerChar()).Map(func(rs []rune) string {
		return string(rs)
	})
}
