package dkg

import (
	"github.com/f3rmion/fdkg/party"
	"github.com/f3rmion/fdkg/vss"
)

// IncomingMessage is one sender's contribution addressed to one receiver:
// the sender's broadcast commitment and the receiver's private share.
type IncomingMessage struct {
	Sender party.Index
	VSS    *vss.VerifiableSS
	Share  vss.Share
}

// Outbound is what Start asks the transport to deliver. Broadcast goes to
// every party; Messages[recipient] must reach only that recipient.
type Outbound struct {
	Broadcast *vss.VerifiableSS
	Messages  map[party.Index]IncomingMessage
}
