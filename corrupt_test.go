package skemagen_test

import (
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	skemagen "github.com/reoring/skemagen"
	"github.com/reoring/skemagen/maketype"
)

func TestExtraKeys_ShapeAndDisjointness(t *testing.T) {
	properties := recordProps()
	properties.Property("extras are three lowercase characters, disjoint from declared keys", prop.ForAll(
		func(c skemagen.Corrupted) bool {
			declared := make(map[string]struct{})
			for _, k := range c.Def.Keys() {
				declared[k] = struct{}{}
			}
			for k := range c.Extra {
				if len(k) != 3 {
					return false
				}
				for _, r := range k {
					if r < 'a' || r > 'z' {
						return false
					}
				}
				if _, clash := declared[k]; clash {
					return false
				}
			}
			return true
		},
		skemagen.SimpleWithExtraKeys(),
	))
	properties.TestingRun(t)
}

func TestExtraKeys_PayloadIsDeclaredPlusExtras(t *testing.T) {
	properties := recordProps()
	properties.Property("corrupted payloads hold declared fields plus extras at value 1", prop.ForAll(
		func(c skemagen.Corrupted) bool {
			declared := make(map[string]struct{})
			for _, k := range c.Def.Keys() {
				declared[k] = struct{}{}
			}
			for k, v := range c.Payload {
				if _, isExtra := c.Extra[k]; isExtra {
					if n, isInt := v.(int); !isInt || n != 1 {
						return false
					}
					continue
				}
				if _, ok := declared[k]; !ok {
					return false
				}
			}
			for k := range c.Extra {
				if _, present := c.Payload[k]; !present {
					return false
				}
			}
			return true
		},
		skemagen.SimpleWithExtraKeys(),
	))
	properties.TestingRun(t)
}

func TestExtraKeys_DeclaredNamesAvoidExtraKeyLength(t *testing.T) {
	properties := recordProps()
	properties.Property("no declared key has the three-character extra-key length", prop.ForAll(
		func(c skemagen.Corrupted) bool {
			for _, k := range c.Def.Keys() {
				if len(k) == 3 {
					return false
				}
				// the inherited overlay key is the one declared name outside
				// the two-character supply
				if k != "inherited" && len(k) > 2 {
					return false
				}
			}
			return true
		},
		skemagen.SimpleWithExtraKeys(),
	))
	properties.TestingRun(t)
}

func TestExtraKeys_SourcePayloadUntouched(t *testing.T) {
	def, err := maketype.New("HypRecord", []maketype.Field{{Key: "a", Type: reflect.TypeOf(0)}}, true)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	source := skemagen.Record{Def: def, Payload: skemagen.Payload{"a": 5}}
	g := skemagen.ExtraKeys(gen.Const(source))
	for seed := int64(1); seed <= 50; seed++ {
		v, ok := g(gopter.DefaultGenParameters().CloneWithSeed(seed)).Retrieve()
		if !ok {
			continue
		}
		c := v.(skemagen.Corrupted)
		if len(c.Extra) == 0 {
			continue
		}
		if diff := cmp.Diff(skemagen.Payload{"a": 5}, source.Payload); diff != "" {
			t.Fatalf("source payload mutated (-want +got):\n%s", diff)
		}
		if len(c.Payload) != 1+len(c.Extra) {
			t.Fatalf("corrupted payload size: %d with %d extras", len(c.Payload), len(c.Extra))
		}
		return
	}
	t.Fatalf("no draw produced extra keys")
}

func TestExtraKeys_TwoFieldScenario(t *testing.T) {
	def, err := maketype.New("HypRecord", []maketype.Field{
		{Key: "a", Type: reflect.TypeOf(0)},
		{Key: "b", Type: reflect.TypeOf([]int(nil))},
	}, true)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	source := skemagen.Record{Def: def, Payload: skemagen.Payload{"a": 5, "b": []int{1, 2}}}
	g := skemagen.ExtraKeys(gen.Const(source))
	for seed := int64(1); seed <= 50; seed++ {
		v, ok := g(gopter.DefaultGenParameters().CloneWithSeed(seed)).Retrieve()
		if !ok {
			continue
		}
		c := v.(skemagen.Corrupted)
		if len(c.Extra) == 0 {
			continue
		}
		want := skemagen.Payload{"a": 5, "b": []int{1, 2}}
		for k := range c.Extra {
			want[k] = 1
		}
		if diff := cmp.Diff(want, c.Payload); diff != "" {
			t.Fatalf("corrupted payload (-want +got):\n%s", diff)
		}
		return
	}
	t.Fatalf("no draw produced extra keys")
}

func TestExtraKeys_DeterministicReplay(t *testing.T) {
	g := skemagen.SimpleWithExtraKeys()
	for seed := int64(1); seed <= 25; seed++ {
		first, ok1 := g(gopter.DefaultGenParameters().CloneWithSeed(seed)).Retrieve()
		second, ok2 := g(gopter.DefaultGenParameters().CloneWithSeed(seed)).Retrieve()
		if ok1 != ok2 {
			t.Fatalf("seed %d: replay retrieval disagreement", seed)
		}
		if !ok1 {
			continue
		}
		c1 := first.(skemagen.Corrupted)
		c2 := second.(skemagen.Corrupted)
		if c1.Def.Type() != c2.Def.Type() {
			t.Fatalf("seed %d: types differ", seed)
		}
		if diff := cmp.Diff(c1.Extra, c2.Extra); diff != "" {
			t.Fatalf("seed %d: extra keys mismatch (-first +second):\n%s", seed, diff)
		}
		if diff := cmp.Diff(c1.Payload, c2.Payload); diff != "" {
			t.Fatalf("seed %d: payload mismatch (-first +second):\n%s", seed, diff)
		}
	}
}
