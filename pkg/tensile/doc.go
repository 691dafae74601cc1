// Package tensile processes the data of tensile tests.
//
// A Test is built from the force, displacement and time series recorded by the testing
// machine and from the Specimen geometry. It exposes the engineering strain and stress
// series, and Analyze derives the usual material properties from them: elastic modulus,
// proportionality limit, offset yield strength, ultimate tensile strength, fracture point,
// elongation after fracture, modulus of resilience, toughness and the Hollomon hardening
// parameters.
//
// All quantities are in SI units: N, m, s, Pa and J/m³.
package tensile
