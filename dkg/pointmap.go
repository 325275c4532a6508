package dkg

import (
	"fmt"
	"maps"
	"slices"

	"github.com/pkg/errors"

	"github.com/f3rmion/fdkg/group"
	"github.com/f3rmion/fdkg/party"
	"github.com/f3rmion/fdkg/vss"
)

// PointMap assigns each registered party its evaluation point.
// It is read-only once built.
type PointMap struct {
	points map[party.Index]uint32
}

// pointsFor assigns 1..n to sorted in order.
func pointsFor(sorted []party.Index) PointMap {
	points := make(map[party.Index]uint32, len(sorted))
	for i, id := range sorted {
		points[id] = uint32(i + 1)
	}
	return PointMap{points: points}
}

// NewPointMap validates that points is injective and free of zero points
// and zero indices.
func NewPointMap(points map[party.Index]uint32) (PointMap, error) {
	seen := make(map[uint32]party.Index, len(points))
	for id, x := range points {
		if id.IsZero() {
			return PointMap{}, errors.Wrap(ErrConfiguration, "zero party index in point map")
		}
		if x == 0 {
			return PointMap{}, errors.Wrapf(ErrConfiguration, "party %s has point 0", id)
		}
		if other, dup := seen[x]; dup {
			return PointMap{}, errors.Wrapf(ErrConfiguration, "parties %s and %s share point %d", id, other, x)
		}
		seen[x] = id
	}
	return PointMap{points: maps.Clone(points)}, nil
}

// restrict returns the map limited to ids, which must all be present.
func (m PointMap) restrict(ids []party.Index) PointMap {
	out := make(map[party.Index]uint32, len(ids))
	for _, id := range ids {
		out[id] = m.points[id]
	}
	return PointMap{points: out}
}

// Point returns the evaluation point of id.
func (m PointMap) Point(id party.Index) (uint32, bool) {
	x, ok := m.points[id]
	return x, ok
}

// Len returns the number of registered parties.
func (m PointMap) Len() int {
	return len(m.points)
}

// Parties returns the registered parties in index order.
func (m PointMap) Parties() []party.Index {
	ids := slices.Collect(maps.Keys(m.points))
	party.Sort(ids)
	return ids
}

// Points returns a copy of the underlying mapping.
func (m PointMap) Points() map[party.Index]uint32 {
	return maps.Clone(m.points)
}

// MapQualifiedParties returns the evaluation point of every index in
// valid, in the same order. Any index without a point is a protocol
// state inconsistency and fails with ErrInconsistentQuorum.
func (m PointMap) MapQualifiedParties(valid []party.Index) ([]uint32, error) {
	out := make([]uint32, 0, len(valid))
	var absent []party.Index
	for _, id := range valid {
		x, ok := m.points[id]
		if !ok {
			absent = append(absent, id)
			continue
		}
		out = append(out, x)
	}
	if len(absent) > 0 {
		return nil, errors.Wrapf(ErrInconsistentQuorum, "%d of %d parties unmapped, first %s",
			len(absent), len(valid), absent[0])
	}
	return out, nil
}

// LagrangeCoefficient returns the weight of ownPoint when interpolating at
// zero over the points of valid.
func (m PointMap) LagrangeCoefficient(g group.Group, valid []party.Index, ownPoint uint32) (group.Scalar, error) {
	points, err := m.MapQualifiedParties(valid)
	if err != nil {
		return nil, err
	}
	lambda, err := vss.LagrangeCoefficient(g, points, ownPoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInconsistentQuorum, err)
	}
	return lambda, nil
}
