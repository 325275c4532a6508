// Package session drives a complete DKG ceremony for one participant over
// a message [Transport].
//
// The [dkg] package is a pure state machine: it neither sends nor waits.
// A [Participant] wires it to a transport and a clock:
//
//	p, err := session.NewParticipant(session.Config{
//		DKG:       dkg.Config{Group: &bjj.Curve{}},
//		Transport: endpoint,
//		Timeout:   30 * time.Second,
//	}, params, parties, me)
//	if err != nil {
//		return err
//	}
//	info, err := p.Run(ctx)
//
// Run returns once every peer has delivered or the timeout has elapsed.
// Peers whose shares fail verification are excluded, and the ceremony
// still succeeds as long as threshold parties qualify.
//
// # Transport
//
// Shares are secret. The transport must deliver each message only to its
// recipient over an authenticated channel. The [memory] transport connects
// participants within one process.
//
// [memory]: https://pkg.go.dev/github.com/f3rmion/fdkg/transport/memory
package session
