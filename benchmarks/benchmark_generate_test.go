package skemagen_test

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"

	skemagen "github.com/reoring/skemagen"
	"github.com/reoring/skemagen/maketype"
)

func drawLoop(b *testing.B, g gopter.Gen) {
	b.Helper()
	gp := gopter.DefaultGenParameters().CloneWithSeed(1)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := g(gp).Retrieve(); !ok {
			b.Fatalf("draw %d failed", i)
		}
	}
}

func BenchmarkSimpleDraw(b *testing.B) {
	drawLoop(b, skemagen.Simple())
}

func BenchmarkSimpleDrawTotal(b *testing.B) {
	drawLoop(b, skemagen.Simple(skemagen.WithTotality(skemagen.Total)))
}

func BenchmarkGenericDraw(b *testing.B) {
	drawLoop(b, skemagen.Generic())
}

func BenchmarkCorruptedDraw(b *testing.B) {
	drawLoop(b, skemagen.SimpleWithExtraKeys())
}

func BenchmarkMaketypeNew(b *testing.B) {
	fields := []maketype.Field{
		{Key: "a", Type: reflect.TypeOf(0)},
		{Key: "b", Type: reflect.TypeOf([]int(nil))},
		{Key: "c", Type: reflect.TypeOf(0)},
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := maketype.New("HypRecord", fields, true); err != nil {
			b.Fatalf("err: %v", err)
		}
	}
}

func BenchmarkMaketypeExtend(b *testing.B) {
	base, err := maketype.New("HypRecord", []maketype.Field{
		{Key: "a", Type: reflect.TypeOf(0)},
	}, false)
	if err != nil {
		b.Fatalf("err: %v", err)
	}
	field := maketype.Field{Key: "inherited", Type: reflect.TypeOf(0)}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := base.Extend("InheritedRecord", field); err != nil {
			b.Fatalf("err: %v", err)
		}
	}
}
