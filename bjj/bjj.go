package bjj

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"

	"github.com/f3rmion/fdkg/group"
)

// Name is the identifier returned by [Curve.Name].
const Name = "bjj"

// Encoded sizes in bytes.
const (
	ScalarSize = 32
	PointSize  = fr.Bytes
)

var (
	// ErrNotOnCurve is returned when decoding bytes that are not a valid
	// point of the prime-order subgroup.
	ErrNotOnCurve = errors.New("bjj: point not in prime-order subgroup")

	errZeroInverse = errors.New("bjj: cannot invert zero scalar")
)

var (
	params = twistededwards.GetEdwardsCurve()
	// order is the prime subgroup order l, not the BN254 scalar field.
	order = new(big.Int).Set(&params.Order)
	// topMask clears the bits of a 32-byte big-endian candidate above
	// the bit length of order.
	topMask = byte(0xff >> (8*ScalarSize - order.BitLen()))
)

// Scalar is an integer modulo the subgroup order.
type Scalar struct {
	v big.Int
}

func asScalar(s group.Scalar) *big.Int {
	return &s.(*Scalar).v
}

func (s *Scalar) mod() group.Scalar {
	s.v.Mod(&s.v, order)
	return s
}

// Add sets s to a + b (mod order) and returns s.
func (s *Scalar) Add(a, b group.Scalar) group.Scalar {
	s.v.Add(asScalar(a), asScalar(b))
	return s.mod()
}

// Sub sets s to a - b (mod order) and returns s.
func (s *Scalar) Sub(a, b group.Scalar) group.Scalar {
	s.v.Sub(asScalar(a), asScalar(b))
	return s.mod()
}

// Mul sets s to a * b (mod order) and returns s.
func (s *Scalar) Mul(a, b group.Scalar) group.Scalar {
	s.v.Mul(asScalar(a), asScalar(b))
	return s.mod()
}

// Negate sets s to -a (mod order) and returns s.
func (s *Scalar) Negate(a group.Scalar) group.Scalar {
	s.v.Neg(asScalar(a))
	return s.mod()
}

// Invert sets s to a^-1. Zero has no inverse.
func (s *Scalar) Invert(a group.Scalar) (group.Scalar, error) {
	av := asScalar(a)
	if av.Sign() == 0 {
		return nil, errZeroInverse
	}
	s.v.ModInverse(av, order)
	return s, nil
}

// Set copies a into s and returns s.
func (s *Scalar) Set(a group.Scalar) group.Scalar {
	s.v.Set(asScalar(a))
	return s
}

// Bytes returns the 32-byte big-endian encoding.
func (s *Scalar) Bytes() []byte {
	return s.v.FillBytes(make([]byte, ScalarSize))
}

// SetBytes decodes a big-endian value of at most 32 bytes. Values not
// below the subgroup order are rejected, so every scalar has exactly one
// encoding.
func (s *Scalar) SetBytes(data []byte) (group.Scalar, error) {
	if len(data) > ScalarSize {
		return nil, fmt.Errorf("bjj: scalar encoding is %d bytes, want at most %d", len(data), ScalarSize)
	}
	var v big.Int
	v.SetBytes(data)
	if v.Cmp(order) >= 0 {
		return nil, errors.New("bjj: scalar encoding exceeds subgroup order")
	}
	s.v.Set(&v)
	return s, nil
}

// Equal reports whether s and b are the same scalar.
func (s *Scalar) Equal(b group.Scalar) bool {
	return s.v.Cmp(asScalar(b)) == 0
}

// IsZero reports whether s is zero.
func (s *Scalar) IsZero() bool {
	return s.v.Sign() == 0
}

// Point is an affine point (x, y) of the twisted Edwards curve. The
// identity is (0, 1).
type Point struct {
	p twistededwards.PointAffine
}

func asPoint(p group.Point) *twistededwards.PointAffine {
	return &p.(*Point).p
}

// Add sets p to a + b and returns p.
func (p *Point) Add(a, b group.Point) group.Point {
	p.p.Add(asPoint(a), asPoint(b))
	return p
}

// Sub sets p to a - b and returns p.
func (p *Point) Sub(a, b group.Point) group.Point {
	var neg twistededwards.PointAffine
	neg.Neg(asPoint(b))
	p.p.Add(asPoint(a), &neg)
	return p
}

// Negate sets p to -a and returns p.
func (p *Point) Negate(a group.Point) group.Point {
	p.p.Neg(asPoint(a))
	return p
}

// ScalarMult sets p to s * q and returns p.
func (p *Point) ScalarMult(s group.Scalar, q group.Point) group.Point {
	p.p.ScalarMultiplication(asPoint(q), asScalar(s))
	return p
}

// Set copies a into p and returns p.
func (p *Point) Set(a group.Point) group.Point {
	p.p.Set(asPoint(a))
	return p
}

// Bytes returns the 32-byte compressed encoding: y little-endian with the
// sign of x in the top bit.
func (p *Point) Bytes() []byte {
	enc := p.p.Bytes()
	return enc[:]
}

// SetBytes decodes a compressed point and checks that it lies in the
// prime-order subgroup.
func (p *Point) SetBytes(data []byte) (group.Point, error) {
	if len(data) != PointSize {
		return nil, fmt.Errorf("bjj: point encoding is %d bytes, want %d", len(data), PointSize)
	}
	var q twistededwards.PointAffine
	if _, err := q.SetBytes(data); err != nil {
		return nil, err
	}
	if !q.IsOnCurve() {
		return nil, ErrNotOnCurve
	}
	var torsion twistededwards.PointAffine
	if !torsion.ScalarMultiplication(&q, order).IsZero() {
		return nil, ErrNotOnCurve
	}
	p.p.Set(&q)
	return p, nil
}

// Equal reports whether p and b are the same curve point.
func (p *Point) Equal(b group.Point) bool {
	return p.p.Equal(asPoint(b))
}

// IsIdentity reports whether p is the identity (0, 1).
func (p *Point) IsIdentity() bool {
	return p.p.IsZero()
}

// Curve implements [group.Group] over the prime-order subgroup of Baby
// Jubjub.
type Curve struct{}

// Name returns "bjj".
func (c *Curve) Name() string {
	return Name
}

// NewScalar returns a zero scalar.
func (c *Curve) NewScalar() group.Scalar {
	return new(Scalar)
}

// NewPoint returns the identity (0, 1).
func (c *Curve) NewPoint() group.Point {
	p := new(Point)
	p.p.Y.SetOne()
	return p
}

// Generator returns the standard base point of the subgroup.
func (c *Curve) Generator() group.Point {
	p := new(Point)
	p.p.Set(&params.Base)
	return p
}

// RandomScalar draws a scalar uniformly from [1, order) by rejection
// sampling 32-byte candidates read from r.
func (c *Curve) RandomScalar(r io.Reader) (group.Scalar, error) {
	var buf [ScalarSize]byte
	s := new(Scalar)
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("bjj: read randomness: %w", err)
		}
		buf[0] &= topMask
		s.v.SetBytes(buf[:])
		if s.v.Sign() != 0 && s.v.Cmp(order) < 0 {
			return s, nil
		}
	}
}
