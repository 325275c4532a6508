// Package vss implements Feldman verifiable secret sharing over an
// arbitrary [group.Group].
//
// A dealer samples a polynomial of degree t-1 whose constant term is the
// secret, sends each participant the evaluation at its point, and
// broadcasts commitments to every coefficient. Any recipient checks its
// share against the broadcast without learning anything further:
//
//	scheme := vss.New(g, rand.Reader)
//	pub, shares, err := scheme.Share(2, 3, secret)
//	// send shares[i] to the party with point shares[i].X, broadcast pub
//	ok := scheme.ValidateShare(pub, shares[0].Value, shares[0].X)
//
// Any t shares reconstruct the secret with [Reconstruct], and the result
// does not depend on which t shares are used.
package vss
