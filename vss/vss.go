package vss

import (
	"errors"
	"fmt"
	"io"

	"github.com/f3rmion/fdkg/group"
)

var (
	// ErrInvalidThreshold is returned when a sharing is requested with a
	// threshold outside 1 <= t < n.
	ErrInvalidThreshold = errors.New("vss: threshold must satisfy 1 <= t < n")
	// ErrInvalidPoint is returned for evaluation point 0, which would
	// reveal the secret.
	ErrInvalidPoint = errors.New("vss: evaluation point must be non-zero")
	// ErrDuplicatePoint is returned when an interpolation set repeats a point.
	ErrDuplicatePoint = errors.New("vss: duplicate evaluation point")
	// ErrPointNotInSet is returned when the own point is missing from an
	// interpolation set.
	ErrPointNotInSet = errors.New("vss: own point not in interpolation set")
	// ErrMalformedCommitment is returned for a commitment whose length does
	// not match its threshold.
	ErrMalformedCommitment = errors.New("vss: malformed commitment")
)

// Polynomial holds coefficients in ascending degree. Polynomial[0] is the
// shared secret.
type Polynomial []group.Scalar

// Share is a polynomial evaluation sent privately to the party holding
// evaluation point X.
type Share struct {
	X     uint32
	Value group.Scalar
}

// VerifiableSS is the public half of a Feldman sharing: the threshold, the
// number of shares, and Commitment[i] = Polynomial[i]*G.
type VerifiableSS struct {
	Threshold  uint32
	ShareCount uint32
	Commitment []group.Point
}

// PublicKey returns the commitment to the shared secret.
func (v *VerifiableSS) PublicKey() group.Point {
	return v.Commitment[0]
}

// Validate checks the structural invariants of v.
func (v *VerifiableSS) Validate() error {
	if v == nil {
		return fmt.Errorf("%w: nil", ErrMalformedCommitment)
	}
	if v.Threshold == 0 || v.Threshold >= v.ShareCount {
		return fmt.Errorf("%w: threshold %d, shares %d", ErrMalformedCommitment, v.Threshold, v.ShareCount)
	}
	if len(v.Commitment) != int(v.Threshold) {
		return fmt.Errorf("%w: %d points for threshold %d", ErrMalformedCommitment, len(v.Commitment), v.Threshold)
	}
	for i, c := range v.Commitment {
		if c == nil {
			return fmt.Errorf("%w: nil point at %d", ErrMalformedCommitment, i)
		}
	}
	return nil
}

// Scheme performs Feldman secret sharing over a group.
type Scheme struct {
	group group.Group
	rand  io.Reader
}

// New returns a Scheme over g that draws coefficients from r.
// r must be a cryptographically secure source such as crypto/rand.Reader.
func New(g group.Group, r io.Reader) *Scheme {
	return &Scheme{group: g, rand: r}
}

// Group returns the group the scheme operates in.
func (s *Scheme) Group() group.Group {
	return s.group
}

// SamplePolynomial returns a polynomial of degree threshold-1 whose constant
// term is secret. Every other coefficient is freshly drawn from the
// scheme's randomness source.
func (s *Scheme) SamplePolynomial(threshold uint32, secret group.Scalar) (Polynomial, error) {
	if threshold == 0 {
		return nil, ErrInvalidThreshold
	}
	coeffs := make(Polynomial, threshold)
	coeffs[0] = s.group.NewScalar().Set(secret)
	for i := uint32(1); i < threshold; i++ {
		c, err := s.group.RandomScalar(s.rand)
		if err != nil {
			return nil, fmt.Errorf("sample coefficient %d: %w", i, err)
		}
		coeffs[i] = c
	}
	return coeffs, nil
}

// EvaluatePolynomial returns poly(x) using Horner's rule.
func (s *Scheme) EvaluatePolynomial(poly Polynomial, x group.Scalar) group.Scalar {
	if len(poly) == 0 {
		return s.group.NewScalar()
	}
	result := s.group.NewScalar().Set(poly[len(poly)-1])
	for i := len(poly) - 2; i >= 0; i-- {
		result = s.group.NewScalar().Mul(result, x)
		result = s.group.NewScalar().Add(result, poly[i])
	}
	return result
}

// Commit returns the Feldman commitment to poly for a sharing among
// shareCount parties.
func (s *Scheme) Commit(poly Polynomial, shareCount uint32) *VerifiableSS {
	commits := make([]group.Point, len(poly))
	for i, c := range poly {
		commits[i] = group.BaseMult(s.group, c)
	}
	return &VerifiableSS{
		Threshold:  uint32(len(poly)),
		ShareCount: shareCount,
		Commitment: commits,
	}
}

// Share splits secret into shareCount shares evaluated at x = 1..shareCount,
// any threshold of which reconstruct it. It returns the public commitment
// together with the shares in ascending order of x.
func (s *Scheme) Share(threshold, shareCount uint32, secret group.Scalar) (*VerifiableSS, []Share, error) {
	if threshold == 0 || threshold >= shareCount {
		return nil, nil, fmt.Errorf("%w: t=%d n=%d", ErrInvalidThreshold, threshold, shareCount)
	}
	poly, err := s.SamplePolynomial(threshold, secret)
	if err != nil {
		return nil, nil, err
	}

	shares := make([]Share, shareCount)
	for x := uint32(1); x <= shareCount; x++ {
		shares[x-1] = Share{
			X:     x,
			Value: s.EvaluatePolynomial(poly, group.ScalarFromUint32(s.group, x)),
		}
	}
	return s.Commit(poly, shareCount), shares, nil
}

// CommitmentAt evaluates the commitment polynomial at index, giving
// poly(index)*G without knowledge of poly.
func (s *Scheme) CommitmentAt(v *VerifiableSS, index uint32) (group.Point, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if index == 0 || index > v.ShareCount {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPoint, index)
	}
	x := group.ScalarFromUint32(s.group, index)
	result := s.group.NewPoint().Set(v.Commitment[len(v.Commitment)-1])
	for i := len(v.Commitment) - 2; i >= 0; i-- {
		result = s.group.NewPoint().ScalarMult(x, result)
		result = s.group.NewPoint().Add(result, v.Commitment[i])
	}
	return result, nil
}

// ValidateShare reports whether value*G matches the commitment evaluated
// at index. Malformed commitments and out-of-range indices never validate.
func (s *Scheme) ValidateShare(v *VerifiableSS, value group.Scalar, index uint32) bool {
	if value == nil {
		return false
	}
	expected, err := s.CommitmentAt(v, index)
	if err != nil {
		return false
	}
	return group.BaseMult(s.group, value).Equal(expected)
}
