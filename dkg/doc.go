// Package dkg runs one party's side of a joint-random-secret distributed
// key generation built on Feldman VSS.
//
// Every party samples its own secret, deals it with [vss.Scheme.Share] and
// sends each peer its share together with the public commitment. A party
// accepts a peer's contribution only if the share checks out against the
// commitment. Once at least t parties (itself included) qualify, the
// party's key share is the sum of the qualified shares, and the group key
// is the sum of the qualified commitments to the secrets.
//
// # Lifecycle
//
// A [Session] moves Init -> AwaitingShares -> Finalized or Failed. Each
// transition returns a new value; a session is never mutated in place.
//
//	params, _ := dkg.NewParameters(2, 3)
//	s, out, err := dkg.Start(dkg.Config{Group: g}, params, parties, me, time.Minute)
//	// deliver out.Messages[peer] to each peer, then gather theirs
//	s, err = s.Consume(incoming)
//	info := s.Output()
//
// The session does not keep time. Callers that give up waiting call
// [Session.Expire], which fails the session with [ErrTimeout].
//
// # Evaluation points
//
// Parties are identified by [party.Index]. Start sorts the participant
// list in index order and assigns points 1..n in that order. The
// resulting [PointMap] is what Lagrange coefficients are computed over.
package dkg
