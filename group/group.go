package group

import (
	"encoding/binary"
	"io"
)

// Scalar is an integer modulo the order of a [Group]: a polynomial
// coefficient, a share, an evaluation point or a Lagrange weight.
//
// Arithmetic writes its result into the receiver and returns it, so a
// fresh value is built as g.NewScalar().Add(a, b). Results always lie in
// [0, order).
type Scalar interface {
	Add(a, b Scalar) Scalar
	Sub(a, b Scalar) Scalar
	Mul(a, b Scalar) Scalar
	Negate(a Scalar) Scalar
	// Invert fails for zero.
	Invert(a Scalar) (Scalar, error)
	Set(a Scalar) Scalar

	// Bytes is the 32-byte big-endian encoding.
	Bytes() []byte
	// SetBytes accepts at most 32 big-endian bytes and rejects values
	// that are not below the order.
	SetBytes(data []byte) (Scalar, error)

	Equal(b Scalar) bool
	IsZero() bool
}

// Point is a group element: a Feldman commitment, a public share or a
// group public key. It follows the same receiver convention as [Scalar].
type Point interface {
	Add(a, b Point) Point
	Sub(a, b Point) Point
	Negate(a Point) Point
	// ScalarMult sets the receiver to s*p.
	ScalarMult(s Scalar, p Point) Point
	Set(a Point) Point

	// Bytes is the curve's canonical compressed encoding. The identity
	// has an encoding too.
	Bytes() []byte
	// SetBytes rejects anything that is not a valid group element.
	SetBytes(data []byte) (Point, error)

	Equal(b Point) bool
	IsIdentity() bool
}

// Group is everything the sharing and key generation code needs from a
// curve.
//
//	g := &bjj.Curve{}
//	s, _ := g.RandomScalar(rand.Reader)
//	pub := group.BaseMult(g, s)
type Group interface {
	// Name identifies the curve in persisted key material.
	Name() string
	// NewScalar returns zero.
	NewScalar() Scalar
	// NewPoint returns the identity.
	NewPoint() Point
	Generator() Point
	// RandomScalar draws uniformly from [1, order).
	RandomScalar(r io.Reader) (Scalar, error)
}

// ScalarFromUint32 returns n as a scalar of g.
func ScalarFromUint32(g Group, n uint32) Scalar {
	var buf [32]byte
	binary.BigEndian.PutUint32(buf[28:], n)
	s, _ := g.NewScalar().SetBytes(buf[:])
	return s
}

// BaseMult returns s*G.
func BaseMult(g Group, s Scalar) Point {
	return g.NewPoint().ScalarMult(s, g.Generator())
}
