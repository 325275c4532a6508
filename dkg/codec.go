package dkg

import (
	"encoding/hex"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/f3rmion/fdkg/group"
	"github.com/f3rmion/fdkg/party"
	"github.com/f3rmion/fdkg/vss"
)

// infoJSON is the persisted form of a MultiPartyInfo. Scalars and points
// are hex of their canonical encodings.
type infoJSON struct {
	Curve       string                 `json:"curve"`
	Threshold   uint32                 `json:"threshold"`
	ShareCount  uint32                 `json:"share_count"`
	OwnIndex    party.Index            `json:"own_index"`
	OwnPoint    uint32                 `json:"own_point"`
	Share       string                 `json:"share"`
	PublicShare string                 `json:"public_share"`
	PublicKey   string                 `json:"public_key"`
	Points      map[party.Index]uint32 `json:"points"`
}

// MarshalJSON encodes m, including the secret share. Callers persisting
// the result are expected to encrypt it.
func (m *MultiPartyInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(infoJSON{
		Curve:       m.group.Name(),
		Threshold:   m.params.Threshold(),
		ShareCount:  m.params.ShareCount(),
		OwnIndex:    m.ownIndex,
		OwnPoint:    m.share.X,
		Share:       hex.EncodeToString(m.share.Value.Bytes()),
		PublicShare: hex.EncodeToString(m.publicShare.Bytes()),
		PublicKey:   hex.EncodeToString(m.publicKey.Bytes()),
		Points:      m.pointMap.Points(),
	})
}

// UnmarshalInfo decodes data produced by MarshalJSON over g and checks its
// internal consistency.
func UnmarshalInfo(g group.Group, data []byte) (*MultiPartyInfo, error) {
	var raw infoJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decode key share")
	}
	if raw.Curve != g.Name() {
		return nil, errors.Errorf("key share is for curve %q, not %q", raw.Curve, g.Name())
	}
	params, err := NewParameters(raw.Threshold, raw.ShareCount)
	if err != nil {
		return nil, err
	}
	points, err := NewPointMap(raw.Points)
	if err != nil {
		return nil, err
	}
	n := params.ShareCount()
	if uint32(points.Len()) > n {
		return nil, errors.Wrapf(ErrInconsistentQuorum, "%d parties mapped, share count %d", points.Len(), n)
	}
	for id, x := range raw.Points {
		if x > n {
			return nil, errors.Wrapf(ErrInconsistentQuorum, "party %s has point %d, share count %d", id, x, n)
		}
	}
	if x, ok := points.Point(raw.OwnIndex); !ok || x != raw.OwnPoint {
		return nil, errors.Wrapf(ErrInconsistentQuorum, "own index %s does not map to point %d", raw.OwnIndex, raw.OwnPoint)
	}
	if uint32(points.Len()) < params.Threshold() {
		return nil, errors.Wrapf(ErrInsufficientQuorum, "%d qualified, threshold %d", points.Len(), params.Threshold())
	}

	share, err := decodeScalar(g, raw.Share)
	if err != nil {
		return nil, errors.Wrap(err, "share")
	}
	publicShare, err := decodePoint(g, raw.PublicShare)
	if err != nil {
		return nil, errors.Wrap(err, "public share")
	}
	publicKey, err := decodePoint(g, raw.PublicKey)
	if err != nil {
		return nil, errors.Wrap(err, "public key")
	}
	if !group.BaseMult(g, share).Equal(publicShare) {
		return nil, errors.New("public share does not match secret share")
	}

	return &MultiPartyInfo{
		params:      params,
		group:       g,
		ownIndex:    raw.OwnIndex,
		share:       vss.Share{X: raw.OwnPoint, Value: share},
		publicShare: publicShare,
		publicKey:   publicKey,
		pointMap:    points,
	}, nil
}

func decodeScalar(g group.Group, s string) (group.Scalar, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return g.NewScalar().SetBytes(b)
}

func decodePoint(g group.Group, s string) (group.Point, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return g.NewPoint().SetBytes(b)
}
