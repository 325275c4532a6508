package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/f3rmion/fdkg/bjj"
	"github.com/f3rmion/fdkg/dkg"
	"github.com/f3rmion/fdkg/group"
	"github.com/f3rmion/fdkg/keystore"
	"github.com/f3rmion/fdkg/party"
	"github.com/f3rmion/fdkg/secp256k1"
	"github.com/f3rmion/fdkg/session"
	"github.com/f3rmion/fdkg/transport/memory"
)

type simConfig struct {
	threshold   uint32
	parties     uint32
	curve       string
	corrupt     uint32
	timeout     time.Duration
	keystoreDir string
	password    string
}

type simResult struct {
	party   party.Index
	corrupt bool
	info    *dkg.MultiPartyInfo
	err     error
}

func newRunCmd() *cobra.Command {
	var (
		cfg     simConfig
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one ceremony and print every party's group key",
		RunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
				Level(level).
				With().
				Timestamp().
				Logger()

			results, err := simulate(cmd.Context(), cfg, logger, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().Uint32Var(&cfg.threshold, "threshold", 2, "Shares needed to use the key (t)")
	cmd.Flags().Uint32Var(&cfg.parties, "parties", 3, "Number of participants (n)")
	cmd.Flags().StringVar(&cfg.curve, "curve", bjj.Name, "Group: bjj|secp256k1")
	cmd.Flags().Uint32Var(&cfg.corrupt, "corrupt", 0, "Number of parties that deal tampered shares")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", 10*time.Second, "How long each party waits for its peers")
	cmd.Flags().StringVar(&cfg.keystoreDir, "keystore-dir", "", "Persist each party's share under this directory")
	cmd.Flags().StringVar(&cfg.password, "password", "", "Keystore encryption password")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every received share")
	return cmd
}

func groupByName(name string) (group.Group, error) {
	switch name {
	case bjj.Name:
		return &bjj.Curve{}, nil
	case secp256k1.Name:
		return &secp256k1.Curve{}, nil
	default:
		return nil, fmt.Errorf("unknown curve %q (use %s|%s)", name, bjj.Name, secp256k1.Name)
	}
}

// simulate runs cfg.parties participants over an in-memory hub. The last
// cfg.corrupt parties add one to every share they deal.
func simulate(ctx context.Context, cfg simConfig, logger zerolog.Logger, reg prometheus.Registerer) ([]simResult, error) {
	g, err := groupByName(cfg.curve)
	if err != nil {
		return nil, err
	}
	params, err := dkg.NewParameters(cfg.threshold, cfg.parties)
	if err != nil {
		return nil, err
	}
	if cfg.corrupt > cfg.parties {
		return nil, fmt.Errorf("cannot corrupt %d of %d parties", cfg.corrupt, cfg.parties)
	}
	var store *keystore.Manager
	if cfg.keystoreDir != "" {
		if store, err = keystore.NewManager(cfg.keystoreDir, cfg.password); err != nil {
			return nil, err
		}
	}

	ids := make([]party.Index, cfg.parties)
	corrupt := make(map[party.Index]bool, cfg.corrupt)
	for i := range ids {
		ids[i] = party.FromUint64(uint64(i + 1))
		if uint32(i) >= cfg.parties-cfg.corrupt {
			corrupt[ids[i]] = true
		}
	}

	hub := memory.NewHub(int(cfg.parties))
	one := group.ScalarFromUint32(g, 1)
	hub.Intercept(func(to party.Index, msg dkg.IncomingMessage) (dkg.IncomingMessage, bool) {
		if corrupt[msg.Sender] {
			msg.Share.Value = g.NewScalar().Add(msg.Share.Value, one)
		}
		return msg, true
	})

	metrics := dkg.NewMetrics(reg)
	participants := make([]*session.Participant, len(ids))
	for i, id := range ids {
		p, err := session.NewParticipant(session.Config{
			DKG: dkg.Config{
				Group:   g,
				Logger:  logger,
				Metrics: metrics,
			},
			Transport: hub.Endpoint(id),
			Timeout:   cfg.timeout,
			Logger:    logger,
		}, params, ids, id)
		if err != nil {
			return nil, err
		}
		participants[i] = p
	}

	results := make([]simResult, len(ids))
	eg, ctx := errgroup.WithContext(ctx)
	for i, p := range participants {
		eg.Go(func() error {
			info, err := p.Run(ctx)
			results[i] = simResult{party: p.ID(), corrupt: corrupt[p.ID()], info: info, err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if store != nil {
		for _, r := range results {
			if r.info == nil {
				continue
			}
			if err := store.StoreInfo(r.party.String(), r.info); err != nil {
				return nil, fmt.Errorf("store share of %s: %w", r.party, err)
			}
		}
		logger.Info().Str("dir", store.Dir()).Msg("key shares stored")
	}
	return results, nil
}

func report(w io.Writer, results []simResult) error {
	for _, r := range results {
		role := "honest"
		if r.corrupt {
			role = "corrupt"
		}
		if r.err != nil {
			if _, err := fmt.Fprintf(w, "%s %-7s failed: %v\n", r.party, role, r.err); err != nil {
				return err
			}
			continue
		}
		_, err := fmt.Fprintf(w, "%s %-7s qualified=%d public_key=%s\n",
			r.party, role, len(r.info.Qualified()), hex.EncodeToString(r.info.PublicKey().Bytes()))
		if err != nil {
			return err
		}
	}
	return nil
}
