// Package maketype synthesizes record struct types whose shape is only known
// at runtime.
//
// Overview
//   - New: build a concrete record type from an ordered field list and a
//     totality policy (partial layers declare pointer fields with omitempty,
//     so an absent field disappears on encode while a present-but-empty value
//     survives).
//   - Extend: derive a record that embeds its base and declares extra,
//     always-required fields on top.
//   - NewGeneric/Instantiate: stage a parameterized record whose fields may
//     reference 1-based type-parameter ordinals, then bind concrete types in
//     declaration order.
//   - Every construction re-reads the synthesized type and fails with a
//     ConstructionError unless it exposes exactly the requested keys.
package maketype

import (
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Field declares one record field. Key is the wire name used for the json
// and yaml tags. Exactly one of Type and Param is meaningful on input: a
// zero Param declares a concrete field of Type, a 1-based Param references a
// type parameter and leaves Type to Instantiate. Fields reported back by
// Definition.Fields carry both, so an instantiated field keeps its ordinal
// next to the bound type.
type Field struct {
	Key   string
	Type  reflect.Type
	Param int
}

// TypeParam is one placeholder slot of a Generic.
type TypeParam struct {
	Name string
}

// Binding records the concrete type bound to one parameter during
// Instantiate.
type Binding struct {
	Param TypeParam
	Type  reflect.Type
}

// Definition is a constructed record type: the synthesized struct plus the
// declaration metadata needed to read it back.
type Definition struct {
	name     string
	total    bool
	own      []Field
	base     *Definition
	typ      reflect.Type
	bindings []Binding
}

// Generic is a record definition parameterized over type placeholders. It
// has no struct type of its own; Instantiate performs the substitution and
// the construction.
type Generic struct {
	name   string
	total  bool
	own    []Field
	params []TypeParam
	base   *Generic
}

// New constructs a concrete record type. Fields may not reference type
// parameters; use NewGeneric for that. total=false declares every field as a
// pointer with omitempty.
func New(name string, fields []Field, total bool) (*Definition, error) {
	if err := checkTypeName(name); err != nil {
		return nil, err
	}
	if err := checkFields(name, fields, 0); err != nil {
		return nil, err
	}
	d := &Definition{name: name, total: total, own: cloneFields(fields)}
	typ, err := d.construct()
	if err != nil {
		return nil, err
	}
	d.typ = typ
	return d, nil
}

// Extend derives a definition that embeds d and declares the extra fields on
// top. Extra fields are always required, whatever the base totality. The wire
// view stays flat for both json and yaml.
func (d *Definition) Extend(name string, extra ...Field) (*Definition, error) {
	if err := checkTypeName(name); err != nil {
		return nil, err
	}
	if err := checkFields(name, extra, 0); err != nil {
		return nil, err
	}
	nd := &Definition{name: name, total: true, own: cloneFields(extra), base: d}
	if err := checkDistinct(name, nd.Keys()); err != nil {
		return nil, err
	}
	typ, err := nd.construct()
	if err != nil {
		return nil, err
	}
	nd.typ = typ
	return nd, nil
}

// Name returns the declared type name of the outermost layer.
func (d *Definition) Name() string { return d.name }

// Type returns the synthesized struct type.
func (d *Definition) Type() reflect.Type { return d.typ }

// Total reports the totality policy of the base-most layer. Derived layers
// are always total for their own fields, so the base policy is the one the
// record was declared with.
func (d *Definition) Total() bool {
	if d.base != nil {
		return d.base.Total()
	}
	return d.total
}

// Keys returns every declared wire key in declaration order, base layers
// first.
func (d *Definition) Keys() []string {
	var keys []string
	if d.base != nil {
		keys = d.base.Keys()
	}
	for _, f := range d.own {
		keys = append(keys, f.Key)
	}
	return keys
}

// Fields returns the declared fields in declaration order, base layers
// first. A field instantiated from a type parameter keeps its Param ordinal
// next to the bound concrete type.
func (d *Definition) Fields() []Field {
	var fs []Field
	if d.base != nil {
		fs = d.base.Fields()
	}
	return append(fs, cloneFields(d.own)...)
}

// Base returns the embedded base definition, or nil for a single-layer
// record.
func (d *Definition) Base() *Definition { return d.base }

// Bindings returns the ordered parameter bindings this definition was
// instantiated with. Nil for definitions built directly via New.
func (d *Definition) Bindings() []Binding {
	if d.bindings == nil {
		return nil
	}
	return append([]Binding(nil), d.bindings...)
}

// JSONSchema projects the definition to a plain JSON Schema object document:
// declared properties, a totality-driven required list, and
// additionalProperties=false so undeclared keys are rejected.
func (d *Definition) JSONSchema() map[string]any {
	props := map[string]any{}
	var required []string
	d.schemaInto(props, &required)
	doc := map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

func (d *Definition) schemaInto(props map[string]any, required *[]string) {
	if d.base != nil {
		d.base.schemaInto(props, required)
	}
	for _, f := range d.own {
		props[f.Key] = typeSchema(f.Type)
		if d.total {
			*required = append(*required, f.Key)
		}
	}
}

// construct builds the struct type for this layer, embedding the base when
// present, then verifies the field-count invariant against the flattened key
// list.
func (d *Definition) construct() (reflect.Type, error) {
	n := len(d.own)
	if d.base != nil {
		n++
	}
	sfs := make([]reflect.StructField, 0, n)
	if d.base != nil {
		// json promotes an untagged anonymous field on its own; yaml flattens
		// it only with an explicit inline tag.
		sfs = append(sfs, reflect.StructField{
			Name:      d.base.name,
			Type:      d.base.typ,
			Tag:       `yaml:",inline"`,
			Anonymous: true,
		})
	}
	for _, f := range d.own {
		sf, err := structField(d.name, f, d.total)
		if err != nil {
			return nil, err
		}
		sfs = append(sfs, sf)
	}
	typ, err := structOf(d.name, sfs)
	if err != nil {
		return nil, err
	}
	if err := verify(d.name, typ, d.Keys()); err != nil {
		return nil, err
	}
	return typ, nil
}

// NewGeneric stages a parameterized record. At least one parameter is
// required, and every Field.Param ordinal must address the params list. No
// struct type exists until Instantiate.
func NewGeneric(name string, fields []Field, total bool, params []TypeParam) (*Generic, error) {
	if err := checkTypeName(name); err != nil {
		return nil, err
	}
	if len(params) == 0 {
		return nil, fmt.Errorf("maketype: %s: %w", name, ErrNoParams)
	}
	if err := checkFields(name, fields, len(params)); err != nil {
		return nil, err
	}
	return &Generic{
		name:   name,
		total:  total,
		own:    cloneFields(fields),
		params: append([]TypeParam(nil), params...),
	}, nil
}

// Extend derives a generic definition that embeds g and declares extra,
// always-required fields on top. The parameter list is shared with the base
// and bound by a single Instantiate on the derived definition.
func (g *Generic) Extend(name string, extra ...Field) (*Generic, error) {
	if err := checkTypeName(name); err != nil {
		return nil, err
	}
	if err := checkFields(name, extra, len(g.params)); err != nil {
		return nil, err
	}
	ng := &Generic{name: name, total: true, own: cloneFields(extra), params: g.params, base: g}
	if err := checkDistinct(name, ng.Keys()); err != nil {
		return nil, err
	}
	return ng, nil
}

// Name returns the declared type name of the outermost layer.
func (g *Generic) Name() string { return g.name }

// Total reports the totality policy of the base-most layer.
func (g *Generic) Total() bool {
	if g.base != nil {
		return g.base.Total()
	}
	return g.total
}

// Keys returns every declared wire key, base layers first.
func (g *Generic) Keys() []string {
	var keys []string
	if g.base != nil {
		keys = g.base.Keys()
	}
	for _, f := range g.own {
		keys = append(keys, f.Key)
	}
	return keys
}

// Fields returns the declared fields, base layers first. Parameterized
// fields carry their ordinal and a nil Type.
func (g *Generic) Fields() []Field {
	var fs []Field
	if g.base != nil {
		fs = g.base.Fields()
	}
	return append(fs, cloneFields(g.own)...)
}

// Params returns the declared type parameters in declaration order.
func (g *Generic) Params() []TypeParam {
	return append([]TypeParam(nil), g.params...)
}

// Instantiate binds concrete types to the parameters, in declaration order,
// and constructs the record type. Substitution happens here; the generic
// definition itself is never mutated, so it can be instantiated again with
// different arguments.
func (g *Generic) Instantiate(args ...reflect.Type) (*Definition, error) {
	if len(args) != len(g.params) {
		return nil, fmt.Errorf("maketype: %s: %d arguments for %d parameters: %w",
			g.name, len(args), len(g.params), ErrArityMismatch)
	}
	for i, a := range args {
		if a == nil {
			return nil, &ConstructionError{
				TypeName: g.name,
				Cause:    fmt.Errorf("nil type bound to %s", g.params[i].Name),
			}
		}
	}
	return g.instantiate(args)
}

func (g *Generic) instantiate(args []reflect.Type) (*Definition, error) {
	var base *Definition
	if g.base != nil {
		bd, err := g.base.instantiate(args)
		if err != nil {
			return nil, err
		}
		base = bd
	}
	own := cloneFields(g.own)
	for i, f := range own {
		if f.Param > 0 {
			own[i].Type = args[f.Param-1]
		}
	}
	d := &Definition{name: g.name, total: g.total, own: own, base: base}
	typ, err := d.construct()
	if err != nil {
		return nil, err
	}
	d.typ = typ
	d.bindings = make([]Binding, len(args))
	for i := range args {
		d.bindings[i] = Binding{Param: g.params[i], Type: args[i]}
	}
	return d, nil
}

// KeyFor resolves the wire key of a synthesized struct field: the json tag
// name when present, the Go field name otherwise.
func KeyFor(sf reflect.StructField) string {
	if jt, ok := sf.Tag.Lookup("json"); ok {
		if i := strings.IndexByte(jt, ','); i >= 0 {
			jt = jt[:i]
		}
		if jt != "" && jt != "-" {
			return jt
		}
	}
	return sf.Name
}

// structField renders one declared field. Partial layers declare pointer
// fields tagged omitempty: a nil pointer is an absent field, a pointer to an
// empty value is a present one.
func structField(typeName string, f Field, total bool) (reflect.StructField, error) {
	if f.Type == nil {
		return reflect.StructField{}, &ConstructionError{
			TypeName: typeName,
			Cause:    fmt.Errorf("field %q has no concrete type", f.Key),
		}
	}
	goName, err := fieldName(typeName, f.Key)
	if err != nil {
		return reflect.StructField{}, err
	}
	ft := f.Type
	key := f.Key
	if !total {
		ft = reflect.PointerTo(ft)
		key += ",omitempty"
	}
	return reflect.StructField{
		Name: goName,
		Type: ft,
		Tag:  reflect.StructTag(fmt.Sprintf("json:%q yaml:%q", key, key)),
	}, nil
}

// structOf wraps reflect.StructOf so construction panics surface as typed
// errors instead of aborting the caller.
func structOf(typeName string, sfs []reflect.StructField) (typ reflect.Type, err error) {
	defer func() {
		if r := recover(); r != nil {
			typ = nil
			err = &ConstructionError{
				TypeName: typeName,
				Cause:    fmt.Errorf("reflect.StructOf: %v", r),
			}
		}
	}()
	return reflect.StructOf(sfs), nil
}

// verify re-reads the synthesized type and checks that it exposes exactly
// the requested keys, in declaration order. Promotion shadowing between
// layers would otherwise hide a field silently.
func verify(typeName string, typ reflect.Type, want []string) error {
	got := make([]string, 0, len(want))
	for _, sf := range reflect.VisibleFields(typ) {
		if sf.Anonymous {
			continue
		}
		got = append(got, KeyFor(sf))
	}
	mismatch := len(got) != len(want)
	if !mismatch {
		for i := range want {
			if got[i] != want[i] {
				mismatch = true
				break
			}
		}
	}
	if mismatch {
		return &ConstructionError{
			TypeName: typeName,
			Want:     append([]string(nil), want...),
			Got:      got,
		}
	}
	return nil
}

// checkFields validates keys and parameter references before any
// construction. nparams==0 forbids parameter references entirely.
func checkFields(name string, fields []Field, nparams int) error {
	seenKey := make(map[string]struct{}, len(fields))
	seenName := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		goName, err := fieldName(name, f.Key)
		if err != nil {
			return err
		}
		if _, dup := seenKey[f.Key]; dup {
			return &ConstructionError{
				TypeName: name,
				Cause:    fmt.Errorf("duplicate field key %q", f.Key),
			}
		}
		seenKey[f.Key] = struct{}{}
		if _, dup := seenName[goName]; dup {
			return &ConstructionError{
				TypeName: name,
				Cause:    fmt.Errorf("field key %q collides with another field on Go name %q", f.Key, goName),
			}
		}
		seenName[goName] = struct{}{}
		if f.Param < 0 || f.Param > nparams {
			return fmt.Errorf("maketype: %s: field %q param %d: %w", name, f.Key, f.Param, ErrParamRange)
		}
		if f.Param == 0 && f.Type == nil {
			return &ConstructionError{
				TypeName: name,
				Cause:    fmt.Errorf("field %q has neither a type nor a parameter", f.Key),
			}
		}
	}
	return nil
}

// checkDistinct rejects duplicate keys across layers before construction.
func checkDistinct(name string, keys []string) error {
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			return &ConstructionError{
				TypeName: name,
				Cause:    fmt.Errorf("field key %q is already declared by a base layer", k),
			}
		}
		seen[k] = struct{}{}
	}
	return nil
}

// checkTypeName requires an exported identifier: the name doubles as the
// embedded-field name when the definition becomes a base layer.
func checkTypeName(name string) error {
	if !validKey(name) {
		return &ConstructionError{
			TypeName: name,
			Cause:    fmt.Errorf("type name %q is not a valid identifier", name),
		}
	}
	r, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsUpper(r) {
		return &ConstructionError{
			TypeName: name,
			Cause:    fmt.Errorf("type name %q must start with an upper-case letter", name),
		}
	}
	return nil
}

// fieldName maps a wire key to an exported Go field name by upper-casing the
// first rune.
func fieldName(typeName, key string) (string, error) {
	if !validKey(key) {
		return "", &ConstructionError{
			TypeName: typeName,
			Cause:    fmt.Errorf("field key %q is not a valid identifier", key),
		}
	}
	r, size := utf8.DecodeRuneInString(key)
	return string(unicode.ToUpper(r)) + key[size:], nil
}

// validKey accepts non-empty identifiers that start with a letter and
// continue with letters, digits or underscores.
func validKey(key string) bool {
	for i, r := range key {
		switch {
		case unicode.IsLetter(r):
		case r == '_' || unicode.IsDigit(r):
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return key != ""
}

func cloneFields(fields []Field) []Field {
	return append([]Field(nil), fields...)
}

var timeType = reflect.TypeOf(time.Time{})

// typeSchema maps a field type to a JSON Schema fragment. Pointer wrappers
// from partial layers describe their element.
func typeSchema(t reflect.Type) map[string]any {
	if t == nil {
		return map[string]any{}
	}
	if t.Kind() == reflect.Pointer {
		return typeSchema(t.Elem())
	}
	if t == timeType {
		return map[string]any{"type": "string", "format": "date-time"}
	}
	switch t.Kind() {
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Slice, reflect.Array:
		return map[string]any{"type": "array", "items": typeSchema(t.Elem())}
	case reflect.Map, reflect.Struct:
		return map[string]any{"type": "object"}
	default:
		return map[string]any{}
	}
}
