package skemagen

// Package skemagen provides:
//
// - Randomized record schemas with matching payloads for exercising structural validation engines
// - Field kinds (integer, integer list, whole-second timestamp) with totality-aware value strategies
// - Simple and generic record generators with an optional single inherited layer
// - A corruption wrapper that merges undeclared three-character keys (value 1) into payload copies
//
// Design policy:
// - Keep only generator APIs in the root package; put runtime type synthesis under maketype/.
// - Generators are plain gopter.Gen values; every draw goes through the engine's parameters, so equal seeds replay equal records.
// - Construction inconsistencies are typed errors, never silently wrong schemas.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  properties := gopter.NewProperties(gopter.DefaultTestParameters())
//  properties.Property("payload decodes into the synthesized type", prop.ForAll(
//      func(rec skemagen.Record) bool {
//          data, err := json.Marshal(rec.Payload)
//          if err != nil {
//              return false
//          }
//          inst := reflect.New(rec.Def.Type()).Interface()
//          return json.Unmarshal(data, inst) == nil
//      },
//      skemagen.Simple(),
//  ))
//  properties.TestingRun(t)
//
