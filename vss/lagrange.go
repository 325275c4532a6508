package vss

import (
	"fmt"

	"github.com/f3rmion/fdkg/group"
)

// PointShare is a public evaluation X -> Value*G, such as a party's
// public key share.
type PointShare struct {
	X     uint32
	Value group.Point
}

func checkPoints(points []uint32) error {
	seen := make(map[uint32]struct{}, len(points))
	for _, x := range points {
		if x == 0 {
			return ErrInvalidPoint
		}
		if _, dup := seen[x]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicatePoint, x)
		}
		seen[x] = struct{}{}
	}
	return nil
}

// LagrangeCoefficient returns the weight of own when interpolating the
// polynomial through points at x = 0:
//
//	λ = Π_{j≠own} x_j / Π_{j≠own} (x_j - x_own)
//
// The own term is left out of both products.
func LagrangeCoefficient(g group.Group, points []uint32, own uint32) (group.Scalar, error) {
	if err := checkPoints(points); err != nil {
		return nil, err
	}
	ownX := group.ScalarFromUint32(g, own)

	num := group.ScalarFromUint32(g, 1)
	den := group.ScalarFromUint32(g, 1)
	found := false
	for _, x := range points {
		if x == own {
			found = true
			continue
		}
		xj := group.ScalarFromUint32(g, x)
		num = g.NewScalar().Mul(num, xj)
		den = g.NewScalar().Mul(den, g.NewScalar().Sub(xj, ownX))
	}
	if !found {
		return nil, fmt.Errorf("%w: %d", ErrPointNotInSet, own)
	}

	denInv, err := g.NewScalar().Invert(den)
	if err != nil {
		return nil, err
	}
	return g.NewScalar().Mul(num, denInv), nil
}

// Reconstruct interpolates shares at x = 0. With at least threshold
// shares of one sharing the result is the secret, whichever shares are
// used.
func Reconstruct(g group.Group, shares []Share) (group.Scalar, error) {
	points := make([]uint32, len(shares))
	for i, sh := range shares {
		points[i] = sh.X
	}
	acc := g.NewScalar()
	for _, sh := range shares {
		lambda, err := LagrangeCoefficient(g, points, sh.X)
		if err != nil {
			return nil, err
		}
		acc = g.NewScalar().Add(acc, g.NewScalar().Mul(lambda, sh.Value))
	}
	return acc, nil
}

// ReconstructPoint interpolates public evaluations at x = 0, e.g. public
// key shares to the group public key.
func ReconstructPoint(g group.Group, shares []PointShare) (group.Point, error) {
	points := make([]uint32, len(shares))
	for i, sh := range shares {
		points[i] = sh.X
	}
	acc := g.NewPoint()
	for _, sh := range shares {
		lambda, err := LagrangeCoefficient(g, points, sh.X)
		if err != nil {
			return nil, err
		}
		acc = g.NewPoint().Add(acc, g.NewPoint().ScalarMult(lambda, sh.Value))
	}
	return acc, nil
}
