package dkg

import "github.com/pkg/errors"

// Parameters is a validated (threshold, share count) pair. The zero value
// is invalid; obtain one from NewParameters.
type Parameters struct {
	threshold  uint32
	shareCount uint32
}

// NewParameters checks 2 <= threshold <= shareCount.
func NewParameters(threshold, shareCount uint32) (Parameters, error) {
	switch {
	case threshold > shareCount:
		return Parameters{}, errors.Wrapf(ErrConfiguration,
			"threshold %d cannot be greater than number of shares %d", threshold, shareCount)
	case shareCount < 2:
		return Parameters{}, errors.Wrapf(ErrConfiguration,
			"number of shares must be at least 2, got %d", shareCount)
	case threshold < 2:
		return Parameters{}, errors.Wrapf(ErrConfiguration,
			"threshold must be at least 2, got %d", threshold)
	}
	return Parameters{threshold: threshold, shareCount: shareCount}, nil
}

// Threshold returns t, the number of shares needed to use the key.
func (p Parameters) Threshold() uint32 {
	return p.threshold
}

// ShareCount returns n, the number of participants.
func (p Parameters) ShareCount() uint32 {
	return p.shareCount
}

func (p Parameters) valid() bool {
	return p.threshold >= 2 && p.shareCount >= p.threshold
}
