// Package writers turns wire results into serialized outputs.
//
// Design:
//   - Writers own all presentation knowledge (junction maps, tables, JSON/YAML).
//   - The engine stays domain-only; callers convert through pkg/api (v1) first.
//   - Formats are looked up in a registry instead of switch statements.
package writers
