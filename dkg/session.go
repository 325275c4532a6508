package dkg

import (
	"maps"
	"slices"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/f3rmion/fdkg/group"
	"github.com/f3rmion/fdkg/party"
	"github.com/f3rmion/fdkg/vss"
)

// State is the position of a session in its lifecycle.
type State int

const (
	StateInit State = iota
	StateAwaitingShares
	StateFinalized
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateAwaitingShares:
		return "awaiting_shares"
	case StateFinalized:
		return "finalized"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session is one party's view of a DKG run. Sessions are immutable: Start,
// Consume and Expire return new values and leave their receiver as it was.
type Session struct {
	cfg      Config
	scheme   *vss.Scheme
	log      zerolog.Logger
	params   Parameters
	ownIndex party.Index
	others   []party.Index
	points   PointMap
	ownVSS   *vss.VerifiableSS
	ownShare vss.Share
	timeout  time.Duration

	state    State
	received map[party.Index]vss.Share
	rejected []*VerificationError
	output   *MultiPartyInfo
	err      error
}

// Start validates the party list, samples this party's secret and
// polynomial, and returns the session awaiting shares together with the
// messages to deliver. Evaluation points follow party index order: the
// smallest index gets point 1. A zero timeout means no deadline.
func Start(cfg Config, params Parameters, parties []party.Index, own party.Index, timeout time.Duration) (*Session, *Outbound, error) {
	cfg.setDefaults()
	if cfg.Group == nil {
		return nil, nil, errors.Wrap(ErrConfiguration, "no group configured")
	}
	if !params.valid() {
		return nil, nil, errors.Wrap(ErrConfiguration, "parameters were not built by NewParameters")
	}

	acting, dup := party.Dedup(parties)
	if dup {
		return nil, nil, errors.Wrapf(ErrDuplicateParty, "%d entries, %d distinct", len(parties), len(acting))
	}
	if !party.Contains(acting, own) {
		return nil, nil, errors.Wrapf(ErrSelfNotListed, "own index %s", own)
	}
	if party.Contains(acting, party.Index{}) {
		return nil, nil, errors.Wrap(ErrConfiguration, "zero party index is reserved")
	}
	if uint32(len(acting)) != params.ShareCount() {
		return nil, nil, errors.Wrapf(ErrConfiguration, "%d parties for %d shares", len(acting), params.ShareCount())
	}

	logger := cfg.Logger.With().Str("party", own.String()).Logger()
	logger.Debug().Uint32("threshold", params.Threshold()).Uint32("shares", params.ShareCount()).Msg("dkg starting")

	points := pointsFor(acting)
	others := slices.DeleteFunc(slices.Clone(acting), own.Equal)

	scheme := vss.New(cfg.Group, cfg.Rand)
	secret, err := cfg.Group.RandomScalar(cfg.Rand)
	if err != nil {
		return nil, nil, errors.Wrap(err, "sample secret")
	}
	pub, shares, err := scheme.Share(params.Threshold(), params.ShareCount(), secret)
	if err != nil {
		return nil, nil, errors.Wrapf(ErrConfiguration, "share secret: %v", err)
	}

	out := &Outbound{
		Broadcast: pub,
		Messages:  make(map[party.Index]IncomingMessage, len(others)),
	}
	for _, id := range others {
		x, _ := points.Point(id)
		out.Messages[id] = IncomingMessage{Sender: own, VSS: pub, Share: shares[x-1]}
	}

	ownPoint, _ := points.Point(own)
	s := &Session{
		cfg:      cfg,
		scheme:   scheme,
		log:      logger,
		params:   params,
		ownIndex: own,
		others:   others,
		points:   points,
		ownVSS:   pub,
		ownShare: shares[ownPoint-1],
		timeout:  timeout,
		state:    StateAwaitingShares,
	}
	return s, out, nil
}

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Err returns the failure of a Failed session and nil otherwise.
func (s *Session) Err() error { return s.err }

// Output returns the key material of a Finalized session and nil otherwise.
func (s *Session) Output() *MultiPartyInfo { return s.output }

// Parameters returns the session parameters.
func (s *Session) Parameters() Parameters { return s.params }

// OwnIndex returns this party's index.
func (s *Session) OwnIndex() party.Index { return s.ownIndex }

// OwnPoint returns this party's evaluation point.
func (s *Session) OwnPoint() uint32 { return s.ownShare.X }

// Others returns the other participants in index order.
func (s *Session) Others() []party.Index { return slices.Clone(s.others) }

// Points returns the evaluation points of every registered party.
func (s *Session) Points() PointMap { return s.points }

// Broadcast returns this party's public commitment.
func (s *Session) Broadcast() *vss.VerifiableSS { return s.ownVSS }

// Timeout returns the configured deadline, if any. The session never
// waits on it; the caller compares it against its own clock and calls
// Expire.
func (s *Session) Timeout() (time.Duration, bool) {
	return s.timeout, s.timeout > 0
}

// Rejected returns the verification failures recorded by Consume, ordered
// by sender.
func (s *Session) Rejected() []*VerificationError { return slices.Clone(s.rejected) }

// Received returns the accepted shares keyed by sender.
func (s *Session) Received() map[party.Index]vss.Share { return maps.Clone(s.received) }

// Expire fails a session still awaiting shares with ErrTimeout. Terminal
// sessions are returned unchanged.
func (s *Session) Expire() *Session {
	if s.state != StateAwaitingShares {
		return s
	}
	s.log.Warn().Dur("timeout", s.timeout).Msg("dkg deadline elapsed before quorum")
	s.cfg.Metrics.session(outcomeTimeout, 0)
	return s.fail(errors.Wrapf(ErrTimeout, "after %s", s.timeout))
}

func (s *Session) fail(err error) *Session {
	next := *s
	next.state = StateFailed
	next.err = err
	next.output = nil
	return &next
}

// Consume verifies a batch of incoming messages and, if at least threshold
// parties (self included) qualify, finalizes the session. Messages that
// fail verification exclude their sender without failing the session.
// The result does not depend on the order of msgs.
//
// On failure the returned session is Failed and carries the same error.
func (s *Session) Consume(msgs []IncomingMessage) (*Session, error) {
	if s.state != StateAwaitingShares {
		return s, errors.Wrapf(ErrInvalidState, "consume in state %s", s.state)
	}

	senders := make(map[party.Index]int, len(msgs))
	for _, m := range msgs {
		senders[m.Sender]++
	}

	verdicts := make([]*VerificationError, len(msgs))
	var eg errgroup.Group
	eg.SetLimit(s.cfg.Workers)
	for i := range msgs {
		eg.Go(func() error {
			verdicts[i] = s.verify(&msgs[i], senders[msgs[i].Sender])
			return nil
		})
	}
	_ = eg.Wait()

	received := make(map[party.Index]vss.Share, len(msgs))
	var rejected []*VerificationError
	for i, v := range verdicts {
		if v != nil {
			rejected = append(rejected, v)
			s.log.Warn().Str("sender", v.Sender.String()).Str("reason", v.Reason).Msg("share rejected")
			s.cfg.Metrics.share(false)
			continue
		}
		received[msgs[i].Sender] = msgs[i].Share
		s.log.Debug().Str("sender", msgs[i].Sender.String()).Msg("share verified")
		s.cfg.Metrics.share(true)
	}
	slices.SortStableFunc(rejected, func(a, b *VerificationError) int {
		return a.Sender.Compare(b.Sender)
	})

	qualified := append(slices.Collect(maps.Keys(received)), s.ownIndex)
	party.Sort(qualified)

	next := *s
	next.received = received
	next.rejected = rejected

	if uint32(len(qualified)) < s.params.Threshold() {
		err := errors.Wrapf(ErrInsufficientQuorum, "%d qualified, threshold %d", len(qualified), s.params.Threshold())
		s.log.Error().Int("qualified", len(qualified)).Int("rejected", len(rejected)).Msg("dkg failed")
		s.cfg.Metrics.session(outcomeInsufficient, len(qualified))
		failed := next.fail(err)
		return failed, err
	}

	info, err := next.aggregate(qualified, msgs)
	if err != nil {
		failed := next.fail(err)
		return failed, err
	}
	next.state = StateFinalized
	next.output = info

	s.log.Info().Int("qualified", len(qualified)).Int("rejected", len(rejected)).Msg("dkg finalized")
	s.cfg.Metrics.session(outcomeFinalized, len(qualified))
	return &next, nil
}

// verify checks one message. count is how many messages in the batch
// claim the same sender.
func (s *Session) verify(m *IncomingMessage, count int) *VerificationError {
	reject := func(reason string) *VerificationError {
		return &VerificationError{Sender: m.Sender, Reason: reason}
	}
	ownPoint := s.ownShare.X

	if m.Sender == s.ownIndex {
		return reject("message claims to come from self")
	}
	if _, ok := s.points.Point(m.Sender); !ok {
		return reject("sender is not a participant")
	}
	if count > 1 {
		return reject("sender delivered more than one message")
	}
	if m.Share.X != ownPoint {
		return reject("share addressed to another evaluation point")
	}
	if err := m.VSS.Validate(); err != nil {
		return reject(err.Error())
	}
	if m.VSS.Threshold != s.params.Threshold() || m.VSS.ShareCount != s.params.ShareCount() {
		return reject("commitment parameters differ from session parameters")
	}
	if !s.scheme.ValidateShare(m.VSS, m.Share.Value, ownPoint) {
		return reject("share does not match commitment")
	}
	return nil
}

// aggregate sums the qualified contributions into the key material.
func (s *Session) aggregate(qualified []party.Index, msgs []IncomingMessage) (*MultiPartyInfo, error) {
	g := s.cfg.Group
	if _, err := s.points.MapQualifiedParties(qualified); err != nil {
		return nil, err
	}

	commits := make(map[party.Index]*vss.VerifiableSS, len(s.received)+1)
	commits[s.ownIndex] = s.ownVSS
	for i := range msgs {
		if _, ok := s.received[msgs[i].Sender]; ok {
			commits[msgs[i].Sender] = msgs[i].VSS
		}
	}

	combined := g.NewScalar().Set(s.ownShare.Value)
	publicKey := g.NewPoint()
	for _, id := range qualified {
		if id != s.ownIndex {
			combined = g.NewScalar().Add(combined, s.received[id].Value)
		}
		publicKey = g.NewPoint().Add(publicKey, commits[id].PublicKey())
	}

	pointMap := s.points.restrict(qualified)

	return &MultiPartyInfo{
		params:      s.params,
		group:       g,
		ownIndex:    s.ownIndex,
		share:       vss.Share{X: s.ownShare.X, Value: combined},
		publicShare: group.BaseMult(g, combined),
		publicKey:   publicKey,
		pointMap:    pointMap,
	}, nil
}
