package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/f3rmion/fdkg/bjj"
	"github.com/f3rmion/fdkg/dkg"
	"github.com/f3rmion/fdkg/group"
	"github.com/f3rmion/fdkg/party"
	"github.com/f3rmion/fdkg/secp256k1"
	"github.com/f3rmion/fdkg/transport/memory"
)

type outcome struct {
	info *dkg.MultiPartyInfo
	err  error
}

func partyIDs(n int) []party.Index {
	ids := make([]party.Index, n)
	for i := range ids {
		ids[i] = party.FromUint64(uint64(i + 1))
	}
	return ids
}

// runCeremony runs every party concurrently over hub and returns each
// party's result.
func runCeremony(t *testing.T, g group.Group, hub *memory.Hub, threshold, n uint32, timeout time.Duration) (
	[]party.Index, map[party.Index]outcome) {
	t.Helper()
	params, err := dkg.NewParameters(threshold, n)
	require.NoError(t, err)
	ids := partyIDs(int(n))

	participants := make([]*Participant, len(ids))
	for i, id := range ids {
		p, err := NewParticipant(Config{
			DKG:       dkg.Config{Group: g},
			Transport: hub.Endpoint(id),
			Timeout:   timeout,
		}, params, ids, id)
		require.NoError(t, err)
		participants[i] = p
	}

	results := make([]outcome, len(ids))
	var eg errgroup.Group
	for i, p := range participants {
		eg.Go(func() error {
			info, err := p.Run(context.Background())
			results[i] = outcome{info: info, err: err}
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	out := make(map[party.Index]outcome, len(ids))
	for i, id := range ids {
		out[id] = results[i]
	}
	return ids, out
}

func TestRunHonest(t *testing.T) {
	for _, g := range []group.Group{&bjj.Curve{}, &secp256k1.Curve{}} {
		t.Run(g.Name(), func(t *testing.T) {
			ids, results := runCeremony(t, g, memory.NewHub(8), 3, 5, time.Minute)

			first := results[ids[0]]
			require.NoError(t, first.err)
			for _, id := range ids {
				r := results[id]
				require.NoError(t, r.err)
				require.True(t, r.info.PublicKey().Equal(first.info.PublicKey()))
				require.Equal(t, ids, r.info.Qualified())
			}
		})
	}
}

func TestRunExcludesCorruptParty(t *testing.T) {
	g := &bjj.Curve{}
	hub := memory.NewHub(8)
	corrupt := party.FromUint64(5)
	hub.Intercept(func(to party.Index, msg dkg.IncomingMessage) (dkg.IncomingMessage, bool) {
		if msg.Sender == corrupt {
			msg.Share.Value = g.NewScalar().Add(msg.Share.Value, group.ScalarFromUint32(g, 1))
		}
		return msg, true
	})

	ids, results := runCeremony(t, g, hub, 3, 5, time.Minute)
	honest := ids[:4]
	key := results[honest[0]].info.PublicKey()
	for _, id := range honest {
		r := results[id]
		require.NoError(t, r.err)
		require.Equal(t, honest, r.info.Qualified())
		require.True(t, r.info.PublicKey().Equal(key))
	}
}

func TestRunTimeout(t *testing.T) {
	g := &bjj.Curve{}
	hub := memory.NewHub(8)
	isolated := party.FromUint64(1)
	hub.Intercept(func(to party.Index, msg dkg.IncomingMessage) (dkg.IncomingMessage, bool) {
		return msg, to != isolated
	})

	ids, results := runCeremony(t, g, hub, 3, 5, 50*time.Millisecond)
	require.ErrorIs(t, results[isolated].err, dkg.ErrTimeout)
	require.Nil(t, results[isolated].info)
	for _, id := range ids[1:] {
		require.NoError(t, results[id].err)
	}
}

func TestRunConsumesPartialDeliveryAtDeadline(t *testing.T) {
	g := &bjj.Curve{}
	hub := memory.NewHub(8)
	self := party.FromUint64(1)
	silent := map[party.Index]bool{party.FromUint64(4): true, party.FromUint64(5): true}
	hub.Intercept(func(to party.Index, msg dkg.IncomingMessage) (dkg.IncomingMessage, bool) {
		return msg, !(to == self && silent[msg.Sender])
	})

	ids, results := runCeremony(t, g, hub, 3, 5, 50*time.Millisecond)
	r := results[self]
	require.NoError(t, r.err)
	require.Equal(t, ids[:3], r.info.Qualified())
}

func TestRunOnce(t *testing.T) {
	g := &bjj.Curve{}
	hub := memory.NewHub(8)
	params, err := dkg.NewParameters(2, 3)
	require.NoError(t, err)
	ids := partyIDs(3)
	for _, id := range ids[1:] {
		hub.Endpoint(id)
	}

	p, err := NewParticipant(Config{
		DKG:       dkg.Config{Group: g},
		Transport: hub.Endpoint(ids[0]),
		Timeout:   10 * time.Millisecond,
	}, params, ids, ids[0])
	require.NoError(t, err)
	require.Nil(t, p.Session())

	_, err = p.Run(context.Background())
	require.ErrorIs(t, err, dkg.ErrTimeout)
	require.Equal(t, dkg.StateFailed, p.Session().State())

	_, err = p.Run(context.Background())
	require.Error(t, err)
}

func TestRunStartError(t *testing.T) {
	params, err := dkg.NewParameters(2, 3)
	require.NoError(t, err)
	ids := partyIDs(3)
	hub := memory.NewHub(1)

	p, err := NewParticipant(Config{
		DKG:       dkg.Config{Group: &bjj.Curve{}},
		Transport: hub.Endpoint(ids[0]),
	}, params, ids, party.FromUint64(9))
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	require.ErrorIs(t, err, dkg.ErrSelfNotListed)
}

func TestRunContextCanceled(t *testing.T) {
	params, err := dkg.NewParameters(2, 3)
	require.NoError(t, err)
	ids := partyIDs(3)
	hub := memory.NewHub(8)
	for _, id := range ids[1:] {
		hub.Endpoint(id)
	}
	p, err := NewParticipant(Config{
		DKG:       dkg.Config{Group: &bjj.Curve{}},
		Transport: hub.Endpoint(ids[0]),
		Timeout:   time.Minute,
	}, params, ids, ids[0])
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err = p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewParticipantRequiresTransport(t *testing.T) {
	params, err := dkg.NewParameters(2, 3)
	require.NoError(t, err)
	_, err = NewParticipant(Config{}, params, partyIDs(3), party.FromUint64(1))
	require.Error(t, err)
}
