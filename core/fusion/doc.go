// Package fusion holds the per-candidate half of junction selection:
// scanning a sequence for junction candidates, scoring them, detecting
// internal enzyme sites that must become junctions, and validating a chosen
// junction set against size, distance and set-fidelity constraints.
//
// Everything here is a pure function of its inputs. Caches are optional,
// injected by the caller, and never change results.
package fusion
