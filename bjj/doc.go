// Package bjj provides a Baby Jubjub elliptic curve implementation of the
// [group.Group] interface for use with the vss and dkg packages.
//
// Baby Jubjub is a twisted Edwards curve defined over the scalar field of
// BN254 (also known as alt_bn128). Keys generated over it can be consumed
// by zero-knowledge circuits that verify threshold signatures in-circuit.
//
// This package wraps the Baby Jubjub implementation from gnark-crypto.
//
// # Curve Parameters
//
// Baby Jubjub is defined by the equation:
//
//	a*x^2 + y^2 = 1 + d*x^2*y^2
//
// where a = 168700 and d = 168696 over the BN254 scalar field.
//
// The curve has a prime-order subgroup of size:
//
//	2736030358979909402780800718157159386076813972158567259200215660948447373041
//
// # Usage
//
//	g := &bjj.Curve{}
//	params, err := dkg.NewParameters(threshold, total)
//	sess, out, err := dkg.Start(dkg.Config{Group: g}, params, parties, self, timeout)
package bjj
