// Package group defines abstract interfaces for the prime-order groups
// used by the Feldman VSS and DKG packages.
//
// This package provides three core interfaces:
//
//   - [Scalar]: Elements of the scalar field (integers modulo the group order)
//   - [Point]: Elements of the group (points on an elliptic curve)
//   - [Group]: Factory methods for creating scalars and points
//
// # Design Philosophy
//
// The interfaces use a mutable receiver pattern. Operations like Add, Mul,
// and ScalarMult set the receiver to the result and return it:
//
//	// Compute a + b*c
//	result := g.NewScalar().Mul(b, c)
//	result = g.NewScalar().Add(a, result)
//
// Callers that need a value to survive further arithmetic always start
// from a fresh NewScalar or NewPoint.
//
// # Implementations
//
// The bjj package implements the interfaces over Baby Jubjub using
// gnark-crypto. The secp256k1 package implements them over secp256k1
// using the decred implementation.
//
// # Security Considerations
//
// Implementations must ensure:
//
//   - Scalar arithmetic is performed modulo the group order
//   - Point operations are constant-time where the backend allows it
//   - Random scalars are generated from cryptographically secure sources
//   - Invalid curve points are rejected in SetBytes
package group
