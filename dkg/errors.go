package dkg

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/f3rmion/fdkg/party"
)

var (
	// ErrConfiguration reports invalid parameters or session inputs.
	ErrConfiguration = errors.New("dkg: invalid configuration")
	// ErrDuplicateParty reports a party listed more than once at start.
	ErrDuplicateParty = errors.New("dkg: duplicate party")
	// ErrSelfNotListed reports that the own index is not a participant.
	ErrSelfNotListed = errors.New("dkg: own index not in party list")
	// ErrVerification marks a rejected incoming share. It is recorded per
	// sender and never fails a session on its own.
	ErrVerification = errors.New("dkg: share verification failed")
	// ErrInsufficientQuorum reports fewer than threshold qualified parties.
	ErrInsufficientQuorum = errors.New("dkg: insufficient quorum")
	// ErrInconsistentQuorum reports a qualified party that has no
	// evaluation point.
	ErrInconsistentQuorum = errors.New("dkg: qualified party missing from point map")
	// ErrTimeout reports a deadline that elapsed before quorum.
	ErrTimeout = errors.New("dkg: timeout")
	// ErrInvalidState reports an operation on a session in the wrong state.
	ErrInvalidState = errors.New("dkg: invalid session state")
)

// VerificationError describes why the share from Sender was rejected.
type VerificationError struct {
	Sender party.Index
	Reason string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%v: sender %s: %s", ErrVerification, e.Sender, e.Reason)
}

// Unwrap returns ErrVerification.
func (e *VerificationError) Unwrap() error {
	return ErrVerification
}
