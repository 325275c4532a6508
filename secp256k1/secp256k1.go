package secp256k1

import (
	"errors"
	"io"

	secp "github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/f3rmion/fdkg/group"
)

// Name is the identifier returned by [Curve.Name].
const Name = "secp256k1"

// identityEncoding is the 33-byte all-zero encoding used for the point at
// infinity, which has no SEC1 compressed form.
var identityEncoding [secp.PubKeyBytesLenCompressed]byte

// Scalar is an integer modulo the secp256k1 group order N.
// It implements [group.Scalar] by wrapping decred's ModNScalar.
type Scalar struct {
	inner secp.ModNScalar
}

// Add sets s to a + b (mod N) and returns s.
func (s *Scalar) Add(a, b group.Scalar) group.Scalar {
	s.inner.Add2(&a.(*Scalar).inner, &b.(*Scalar).inner)
	return s
}

// Sub sets s to a - b (mod N) and returns s.
func (s *Scalar) Sub(a, b group.Scalar) group.Scalar {
	var negB secp.ModNScalar
	negB.NegateVal(&b.(*Scalar).inner)
	s.inner.Add2(&a.(*Scalar).inner, &negB)
	return s
}

// Mul sets s to a * b (mod N) and returns s.
func (s *Scalar) Mul(a, b group.Scalar) group.Scalar {
	s.inner.Mul2(&a.(*Scalar).inner, &b.(*Scalar).inner)
	return s
}

// Negate sets s to -a (mod N) and returns s.
func (s *Scalar) Negate(a group.Scalar) group.Scalar {
	s.inner.NegateVal(&a.(*Scalar).inner)
	return s
}

// Invert sets s to a^(-1) (mod N) and returns s.
// Returns an error if a is zero.
func (s *Scalar) Invert(a group.Scalar) (group.Scalar, error) {
	aScalar := a.(*Scalar)
	if aScalar.inner.IsZero() {
		return nil, errors.New("cannot invert zero scalar")
	}
	s.inner.InverseValNonConst(&aScalar.inner)
	return s, nil
}

// Set copies a into s and returns s.
func (s *Scalar) Set(a group.Scalar) group.Scalar {
	s.inner.Set(&a.(*Scalar).inner)
	return s
}

// Bytes returns the 32-byte big-endian encoding of s.
func (s *Scalar) Bytes() []byte {
	b := s.inner.Bytes()
	return b[:]
}

// SetBytes sets s from a big-endian byte slice of at most 32 bytes.
// Values that are not below N are rejected rather than reduced.
func (s *Scalar) SetBytes(data []byte) (group.Scalar, error) {
	if len(data) > 32 {
		return nil, errors.New("scalar encoding longer than 32 bytes")
	}
	var v secp.ModNScalar
	if overflow := v.SetByteSlice(data); overflow {
		return nil, errors.New("scalar encoding exceeds group order")
	}
	s.inner.Set(&v)
	return s, nil
}

// Equal reports whether s and b are the same scalar.
func (s *Scalar) Equal(b group.Scalar) bool {
	return s.inner.Equals(&b.(*Scalar).inner)
}

// IsZero reports whether s is zero.
func (s *Scalar) IsZero() bool {
	return s.inner.IsZero()
}

// Point is a secp256k1 curve point held in Jacobian coordinates.
// The point at infinity is the all-zero value.
type Point struct {
	inner secp.JacobianPoint
}

func (p *Point) normalize() {
	if p.isInfinity() {
		p.inner = secp.JacobianPoint{}
		return
	}
	p.inner.ToAffine()
}

func (p *Point) isInfinity() bool {
	return (p.inner.X.IsZero() && p.inner.Y.IsZero()) || p.inner.Z.IsZero()
}

// Add sets p to a + b and returns p.
func (p *Point) Add(a, b group.Point) group.Point {
	var r secp.JacobianPoint
	secp.AddNonConst(&a.(*Point).inner, &b.(*Point).inner, &r)
	p.inner = r
	p.normalize()
	return p
}

// Sub sets p to a - b and returns p.
func (p *Point) Sub(a, b group.Point) group.Point {
	var negB Point
	negB.Negate(b)
	return p.Add(a, &negB)
}

// Negate sets p to -a and returns p.
func (p *Point) Negate(a group.Point) group.Point {
	p.inner.Set(&a.(*Point).inner)
	if p.isInfinity() {
		p.inner = secp.JacobianPoint{}
		return p
	}
	p.inner.ToAffine()
	p.inner.Y.Negate(1).Normalize()
	return p
}

// ScalarMult sets p to s * q and returns p.
func (p *Point) ScalarMult(s group.Scalar, q group.Point) group.Point {
	var r secp.JacobianPoint
	qPoint := q.(*Point)
	if qPoint.isInfinity() {
		p.inner = secp.JacobianPoint{}
		return p
	}
	secp.ScalarMultNonConst(&s.(*Scalar).inner, &qPoint.inner, &r)
	p.inner = r
	p.normalize()
	return p
}

// Set copies a into p and returns p.
func (p *Point) Set(a group.Point) group.Point {
	p.inner.Set(&a.(*Point).inner)
	return p
}

// Bytes returns the 33-byte SEC1 compressed encoding of p. The point at
// infinity encodes as 33 zero bytes.
func (p *Point) Bytes() []byte {
	if p.isInfinity() {
		out := identityEncoding
		return out[:]
	}
	var affine secp.JacobianPoint
	affine.Set(&p.inner)
	affine.ToAffine()
	return secp.NewPublicKey(&affine.X, &affine.Y).SerializeCompressed()
}

// SetBytes parses a SEC1 compressed or uncompressed encoding.
func (p *Point) SetBytes(data []byte) (group.Point, error) {
	if len(data) == len(identityEncoding) && [33]byte(data) == identityEncoding {
		p.inner = secp.JacobianPoint{}
		return p, nil
	}
	pub, err := secp.ParsePubKey(data)
	if err != nil {
		return nil, err
	}
	pub.AsJacobian(&p.inner)
	return p, nil
}

// Equal reports whether p and b are the same curve point.
func (p *Point) Equal(b group.Point) bool {
	bPoint := b.(*Point)
	pInf, bInf := p.isInfinity(), bPoint.isInfinity()
	if pInf || bInf {
		return pInf == bInf
	}
	var x, y secp.JacobianPoint
	x.Set(&p.inner)
	y.Set(&bPoint.inner)
	x.ToAffine()
	y.ToAffine()
	return x.X.Equals(&y.X) && x.Y.Equals(&y.Y)
}

// IsIdentity reports whether p is the point at infinity.
func (p *Point) IsIdentity() bool {
	return p.isInfinity()
}

// Curve implements [group.Group] for secp256k1.
type Curve struct{}

// Name returns "secp256k1".
func (c *Curve) Name() string {
	return Name
}

// NewScalar returns a zero scalar.
func (c *Curve) NewScalar() group.Scalar {
	return &Scalar{}
}

// NewPoint returns the point at infinity.
func (c *Curve) NewPoint() group.Point {
	return &Point{}
}

// Generator returns the standard base point G.
func (c *Curve) Generator() group.Point {
	var one secp.ModNScalar
	one.SetInt(1)
	var p Point
	secp.ScalarBaseMultNonConst(&one, &p.inner)
	p.normalize()
	return &p
}

// RandomScalar draws a scalar uniformly from [1, N) by rejection sampling
// 32-byte candidates read from r.
func (c *Curve) RandomScalar(r io.Reader) (group.Scalar, error) {
	var buf [32]byte
	s := &Scalar{}
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		if overflow := s.inner.SetBytes(&buf); overflow != 0 {
			continue
		}
		if !s.inner.IsZero() {
			return s, nil
		}
	}
}
