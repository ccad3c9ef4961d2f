package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-json"
	"github.com/leanovate/gopter"

	skemagen "github.com/reoring/skemagen"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "emit":
		emitCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "skemagen CLI\n\nUsage:\n  skemagen emit [-n count] [-seed base] [-kind simple|generic|corrupted] [-totality coin|total|partial]\n\nNotes:\n  - Emits one fixture per line: record name, totality, keys, JSON Schema, payload and injected keys.\n  - Fixture i replays deterministically from seed base+i.")
}

func emitCmd(args []string) {
	fs := flag.NewFlagSet("emit", flag.ExitOnError)
	var (
		n        int
		seed     int64
		kind     string
		totality string
	)
	fs.IntVar(&n, "n", 10, "number of fixtures to emit")
	fs.Int64Var(&seed, "seed", 1, "base seed; fixture i draws from seed+i")
	fs.StringVar(&kind, "kind", "simple", "record kind: simple, generic or corrupted")
	fs.StringVar(&totality, "totality", "coin", "totality policy: coin, total or partial")
	_ = fs.Parse(args)

	var opts []skemagen.Option
	switch totality {
	case "coin":
	case "total":
		opts = append(opts, skemagen.WithTotality(skemagen.Total))
	case "partial":
		opts = append(opts, skemagen.WithTotality(skemagen.Partial))
	default:
		fs.Usage()
		os.Exit(2)
	}

	var g gopter.Gen
	switch kind {
	case "simple":
		g = skemagen.Simple(opts...)
	case "generic":
		g = skemagen.Generic(opts...)
	case "corrupted":
		g = skemagen.SimpleWithExtraKeys(opts...)
	default:
		fs.Usage()
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	emitted := 0
	for i := int64(0); emitted < n; i++ {
		if i > int64(n)*100+1000 {
			fmt.Fprintln(os.Stderr, "emit: generator kept discarding draws")
			os.Exit(1)
		}
		v, ok := g(gopter.DefaultGenParameters().CloneWithSeed(seed + i)).Retrieve()
		if !ok {
			continue
		}
		fx, err := fixture(v)
		if err != nil {
			fmt.Fprintln(os.Stderr, "emit:", err)
			os.Exit(1)
		}
		if err := enc.Encode(fx); err != nil {
			fmt.Fprintln(os.Stderr, "emit:", err)
			os.Exit(1)
		}
		emitted++
	}
}

type fixtureDoc struct {
	Name    string           `json:"name"`
	Total   bool             `json:"total"`
	Keys    []string         `json:"keys"`
	Schema  map[string]any   `json:"schema"`
	Payload skemagen.Payload `json:"payload"`
	Extra   []string         `json:"extra,omitempty"`
}

func fixture(v any) (fixtureDoc, error) {
	switch rec := v.(type) {
	case skemagen.Record:
		return recordFixture(rec, nil), nil
	case skemagen.Corrupted:
		extra := make([]string, 0, len(rec.Extra))
		for k := range rec.Extra {
			extra = append(extra, k)
		}
		sort.Strings(extra)
		return recordFixture(rec.Record, extra), nil
	default:
		return fixtureDoc{}, fmt.Errorf("unexpected draw %T", v)
	}
}

func recordFixture(rec skemagen.Record, extra []string) fixtureDoc {
	return fixtureDoc{
		Name:    rec.Def.Name(),
		Total:   rec.Def.Total(),
		Keys:    rec.Def.Keys(),
		Schema:  rec.Def.JSONSchema(),
		Payload: rec.Payload,
		Extra:   extra,
	}
}
