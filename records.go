package skemagen

import (
	"reflect"
	"strconv"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"

	"github.com/reoring/skemagen/maketype"
)

const (
	recordName    = "HypRecord"
	inheritedName = "InheritedRecord"
	inheritedKey  = "inherited"

	// maxGenericFields caps how many fields a single draw turns into type
	// parameters.
	maxGenericFields = 3
)

var recordType = reflect.TypeOf(Record{})

// Option configures a record generator.
type Option func(*genConfig)

type genConfig struct {
	totality    Totality
	hasTotality bool
}

// WithTotality pins the totality policy instead of flipping a coin per
// record.
func WithTotality(t Totality) Option {
	return func(c *genConfig) {
		c.totality = t
		c.hasTotality = true
	}
}

func newConfig(opts []Option) genConfig {
	var cfg genConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return cfg
}

// Simple generates records with concrete field types: a drawn totality
// policy (unless pinned), a drawn field list named in declaration order, a
// payload drawn in that same order, and an optional single inherited layer.
// The payload is valid for the returned definition by construction.
func Simple(opts ...Option) gopter.Gen {
	cfg := newConfig(opts)
	return func(gp *gopter.GenParameters) *gopter.GenResult {
		rec, ok := drawSimple(gp, cfg)
		if !ok {
			return gopter.NewEmptyResult(recordType)
		}
		return gopter.NewGenResult(rec, gopter.NoShrinker)
	}
}

// Generic generates records with at least one field, of which one to three
// become type parameters named after their field position (T1 for the first
// field, and so on). The returned definition is already instantiated with
// the displaced concrete types, bound in parameter declaration order after
// the optional inherited layer is applied.
func Generic(opts ...Option) gopter.Gen {
	cfg := newConfig(opts)
	return func(gp *gopter.GenParameters) *gopter.GenResult {
		rec, ok := drawGeneric(gp, cfg)
		if !ok {
			return gopter.NewEmptyResult(recordType)
		}
		return gopter.NewGenResult(rec, gopter.NoShrinker)
	}
}

func drawSimple(gp *gopter.GenParameters, cfg genConfig) (Record, bool) {
	total, ok := cfg.drawTotality(gp)
	if !ok {
		return Record{}, false
	}
	keys, specs, payload, ok := drawFields(gp, total, 0)
	if !ok {
		return Record{}, false
	}
	fields := make([]maketype.Field, len(specs))
	for i, sp := range specs {
		fields[i] = maketype.Field{Key: keys[i], Type: sp.Type}
	}
	def, err := maketype.New(recordName, fields, total == Total)
	if err != nil {
		panic(err)
	}
	def, payload, ok = maybeInherit(gp, def, payload)
	if !ok {
		return Record{}, false
	}
	return Record{Def: def, Payload: payload}, true
}

func drawGeneric(gp *gopter.GenParameters, cfg genConfig) (Record, bool) {
	total, ok := cfg.drawTotality(gp)
	if !ok {
		return Record{}, false
	}
	keys, specs, payload, ok := drawFields(gp, total, 1)
	if !ok {
		return Record{}, false
	}
	chosen, ok := drawGenericIndices(gp, len(specs))
	if !ok {
		return Record{}, false
	}

	// Displace the chosen fields onto parameters. Walking in field order
	// makes parameter order follow field order, and the bound argument list
	// line up with it.
	fields := make([]maketype.Field, len(specs))
	var params []maketype.TypeParam
	var args []reflect.Type
	for i, sp := range specs {
		if _, pick := chosen[i]; pick {
			params = append(params, maketype.TypeParam{Name: "T" + strconv.Itoa(i+1)})
			args = append(args, sp.Type)
			fields[i] = maketype.Field{Key: keys[i], Param: len(params)}
			continue
		}
		fields[i] = maketype.Field{Key: keys[i], Type: sp.Type}
	}

	g, err := maketype.NewGeneric(recordName, fields, total == Total, params)
	if err != nil {
		panic(err)
	}
	g, payload, ok = maybeInherit(gp, g, payload)
	if !ok {
		return Record{}, false
	}
	def, err := g.Instantiate(args...)
	if err != nil {
		panic(err)
	}
	return Record{Def: def, Payload: payload}, true
}

// drawFields draws the field kinds, assigns names in declaration order, and
// draws the payload in that same order, so equal seeds replay equal records.
// Fields whose value strategy yields Absent are left out of the payload.
func drawFields(gp *gopter.GenParameters, total Totality, min int) ([]string, []FieldSpec, Payload, bool) {
	n, ok := drawFieldCount(gp, min)
	if !ok {
		return nil, nil, nil, false
	}
	specs, ok := drawFrom[[]FieldSpec](gp, gen.SliceOfN(n, anyField(total), fieldSpecType))
	if !ok {
		return nil, nil, nil, false
	}
	next := attrNames()
	keys := make([]string, len(specs))
	payload := make(Payload, len(specs))
	for i, sp := range specs {
		keys[i] = next()
		v, ok := drawFrom[any](gp, sp.Value)
		if !ok {
			return nil, nil, nil, false
		}
		if _, absent := v.(AbsentValue); absent {
			continue
		}
		payload[keys[i]] = v
	}
	return keys, specs, payload, true
}

// drawFieldCount bounds the field count by the engine's sizing and by the
// two-character name budget, keeping declared names shorter than the
// three-character corruption keys.
func drawFieldCount(gp *gopter.GenParameters, min int) (int, bool) {
	max := gp.MaxSize
	if max > twoCharNames {
		max = twoCharNames
	}
	if max < min {
		max = min
	}
	return drawFrom[int](gp, gen.IntRange(min, max))
}

// drawGenericIndices picks one to three distinct field indices through the
// engine's replayable source.
func drawGenericIndices(gp *gopter.GenParameters, n int) (map[int]struct{}, bool) {
	max := maxGenericFields
	if n < max {
		max = n
	}
	k, ok := drawFrom[int](gp, gen.IntRange(1, max))
	if !ok {
		return nil, false
	}
	chosen := make(map[int]struct{}, k)
	for _, ix := range gp.Rng.Perm(n)[:k] {
		chosen[ix] = struct{}{}
	}
	return chosen, true
}

// maybeInherit wraps the definition in one inherited layer on a coin flip,
// declaring the always-required integer field "inherited" and drawing its
// payload value. Works on both staged generics and constructed definitions.
func maybeInherit[D interface {
	Extend(string, ...maketype.Field) (D, error)
}](gp *gopter.GenParameters, def D, payload Payload) (D, Payload, bool) {
	flip, ok := drawFrom[bool](gp, gen.Bool())
	if !ok || !flip {
		return def, payload, ok
	}
	ext, err := def.Extend(inheritedName, maketype.Field{Key: inheritedKey, Type: intType})
	if err != nil {
		panic(err)
	}
	v, ok := drawFrom[int](gp, gen.Int())
	if !ok {
		return def, nil, false
	}
	payload[inheritedKey] = v
	return ext, payload, true
}

func (c genConfig) drawTotality(gp *gopter.GenParameters) (Totality, bool) {
	if c.hasTotality {
		return c.totality, true
	}
	flip, ok := drawFrom[bool](gp, gen.Bool())
	if !ok {
		return Total, false
	}
	if flip {
		return Total, true
	}
	return Partial, true
}

// drawFrom draws one value of type T from g. A false result means the
// engine could not produce a value; callers translate that into an empty
// result so the property runner discards the case instead of failing it.
func drawFrom[T any](gp *gopter.GenParameters, g gopter.Gen) (T, bool) {
	v, ok := g(gp).Retrieve()
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
