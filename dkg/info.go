package dkg

import (
	"github.com/f3rmion/fdkg/group"
	"github.com/f3rmion/fdkg/party"
	"github.com/f3rmion/fdkg/vss"
)

// MultiPartyInfo is the terminal output of a successful session: this
// party's share of the joint secret and the public material needed to use
// it in threshold protocols.
type MultiPartyInfo struct {
	params      Parameters
	group       group.Group
	ownIndex    party.Index
	share       vss.Share
	publicShare group.Point
	publicKey   group.Point
	pointMap    PointMap
}

// Parameters returns the threshold and share count of the key.
func (m *MultiPartyInfo) Parameters() Parameters { return m.params }

// Group returns the group the key lives in.
func (m *MultiPartyInfo) Group() group.Group { return m.group }

// OwnIndex returns this party's index.
func (m *MultiPartyInfo) OwnIndex() party.Index { return m.ownIndex }

// OwnPoint returns this party's evaluation point.
func (m *MultiPartyInfo) OwnPoint() uint32 { return m.share.X }

// OwnShare returns a copy of this party's combined secret share.
func (m *MultiPartyInfo) OwnShare() group.Scalar {
	return m.group.NewScalar().Set(m.share.Value)
}

// PublicShare returns OwnShare()*G, the verification key of this party's
// share.
func (m *MultiPartyInfo) PublicShare() group.Point {
	return m.group.NewPoint().Set(m.publicShare)
}

// PublicKey returns the joint public key: the sum of the qualified
// parties' secret commitments. Interpolating t public shares at zero
// yields the same point.
func (m *MultiPartyInfo) PublicKey() group.Point {
	return m.group.NewPoint().Set(m.publicKey)
}

// PointMap returns the evaluation points of the qualified parties.
func (m *MultiPartyInfo) PointMap() PointMap { return m.pointMap }

// Qualified returns the parties whose contributions make up the key.
func (m *MultiPartyInfo) Qualified() []party.Index { return m.pointMap.Parties() }

// LagrangeCoefficient returns this party's weight when the parties in
// valid, which must include this party, combine their shares.
func (m *MultiPartyInfo) LagrangeCoefficient(valid []party.Index) (group.Scalar, error) {
	return m.pointMap.LagrangeCoefficient(m.group, valid, m.share.X)
}
