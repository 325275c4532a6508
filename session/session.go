package session

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/f3rmion/fdkg/dkg"
	"github.com/f3rmion/fdkg/party"
)

// Transport moves DKG messages between participants. Send must deliver
// msg to to alone; the share inside it is secret.
type Transport interface {
	Send(ctx context.Context, to party.Index, msg dkg.IncomingMessage) error
	Receive(ctx context.Context) (dkg.IncomingMessage, error)
}

// Config configures a Participant.
type Config struct {
	// DKG is passed through to dkg.Start.
	DKG dkg.Config
	// Transport is required.
	Transport Transport
	// Timeout bounds how long Run waits for peers. Zero waits until
	// every peer has delivered or the context ends.
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Participant runs a single party's side of one DKG ceremony. Create
// instances using [NewParticipant].
type Participant struct {
	cfg     Config
	params  dkg.Parameters
	parties []party.Index
	id      party.Index
	session *dkg.Session
}

// NewParticipant prepares a ceremony among parties for the party id.
// Party-list problems surface from Run, where dkg.Start checks them.
func NewParticipant(cfg Config, params dkg.Parameters, parties []party.Index, id party.Index) (*Participant, error) {
	if cfg.Transport == nil {
		return nil, errors.New("session: transport is required")
	}
	return &Participant{
		cfg:     cfg,
		params:  params,
		parties: append([]party.Index(nil), parties...),
		id:      id,
	}, nil
}

// ID returns this participant's index.
func (p *Participant) ID() party.Index {
	return p.id
}

// Session returns the latest DKG session state, or nil before Run.
func (p *Participant) Session() *dkg.Session {
	return p.session
}

// Run starts the session, sends each peer its share, and collects peers'
// messages until all have arrived or the timeout elapses. If by then
// fewer than threshold-1 peers have delivered, the session expires with
// dkg.ErrTimeout. Otherwise whatever arrived is consumed.
//
// A Participant runs at most once.
func (p *Participant) Run(ctx context.Context) (*dkg.MultiPartyInfo, error) {
	if p.session != nil {
		return nil, errors.New("session: ceremony already run")
	}

	s, out, err := dkg.Start(p.cfg.DKG, p.params, p.parties, p.id, p.cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("start dkg: %w", err)
	}
	p.session = s

	log := p.cfg.Logger.With().Str("party", p.id.String()).Logger()
	log.Info().Int("peers", len(s.Others())).Dur("timeout", p.cfg.Timeout).Msg("ceremony started")

	for _, to := range s.Others() {
		if err := p.cfg.Transport.Send(ctx, to, out.Messages[to]); err != nil {
			return nil, fmt.Errorf("send share to %s: %w", to, err)
		}
	}

	msgs, delivered, err := p.collect(ctx, s, log)
	if err != nil {
		return nil, err
	}

	if delivered < int(p.params.Threshold())-1 {
		log.Warn().Int("delivered", delivered).Msg("deadline elapsed")
		p.session = s.Expire()
		return nil, p.session.Err()
	}

	next, err := s.Consume(msgs)
	p.session = next
	if err != nil {
		return nil, err
	}
	info := next.Output()
	log.Info().
		Str("public_key", hex.EncodeToString(info.PublicKey().Bytes())).
		Int("qualified", len(info.Qualified())).
		Msg("ceremony complete")
	return info, nil
}

// collect gathers messages until every peer has been heard from or the
// session deadline passes. It returns the messages and the number of
// distinct peers that delivered.
func (p *Participant) collect(ctx context.Context, s *dkg.Session, log zerolog.Logger) ([]dkg.IncomingMessage, int, error) {
	wait := ctx
	if d, ok := s.Timeout(); ok {
		var cancel context.CancelFunc
		wait, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	pending := make(map[party.Index]struct{}, len(s.Others()))
	for _, id := range s.Others() {
		pending[id] = struct{}{}
	}
	total := len(pending)

	var msgs []dkg.IncomingMessage
	for len(pending) > 0 {
		msg, err := p.cfg.Transport.Receive(wait)
		if err != nil {
			if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
				break
			}
			return nil, 0, fmt.Errorf("receive: %w", err)
		}
		log.Debug().Str("sender", msg.Sender.String()).Msg("message received")
		msgs = append(msgs, msg)
		delete(pending, msg.Sender)
	}
	return msgs, total - len(pending), nil
}
