package vss

import (
	"crypto/rand"
	"errors"
	"fmt"
	"testing"

	"github.com/f3rmion/fdkg/bjj"
	"github.com/f3rmion/fdkg/group"
	"github.com/f3rmion/fdkg/secp256k1"
)

var groups = []group.Group{&bjj.Curve{}, &secp256k1.Curve{}}

func forEachGroup(t *testing.T, fn func(t *testing.T, g group.Group)) {
	for _, g := range groups {
		t.Run(g.Name(), func(t *testing.T) { fn(t, g) })
	}
}

func randomScalar(t *testing.T, g group.Group) group.Scalar {
	t.Helper()
	s, err := g.RandomScalar(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// subsets returns every subset of xs with at least k elements.
func subsets(xs []Share, k int) [][]Share {
	var out [][]Share
	n := len(xs)
	for mask := 1; mask < 1<<n; mask++ {
		var sub []Share
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				sub = append(sub, xs[i])
			}
		}
		if len(sub) >= k {
			out = append(out, sub)
		}
	}
	return out
}

func TestSamplePolynomial(t *testing.T) {
	forEachGroup(t, func(t *testing.T, g group.Group) {
		s := New(g, rand.Reader)
		secret := randomScalar(t, g)

		for _, threshold := range []uint32{1, 2, 5} {
			poly, err := s.SamplePolynomial(threshold, secret)
			if err != nil {
				t.Fatal(err)
			}
			if len(poly) != int(threshold) {
				t.Fatalf("len = %d, want %d", len(poly), threshold)
			}
			if !poly[0].Equal(secret) {
				t.Error("constant term must be the secret")
			}
		}

		t.Run("FreshCoefficients", func(t *testing.T) {
			p1, _ := s.SamplePolynomial(3, secret)
			p2, _ := s.SamplePolynomial(3, secret)
			for i := 1; i < 3; i++ {
				if p1[i].Equal(p2[i]) {
					t.Errorf("coefficient %d reused across calls", i)
				}
			}
		})

		t.Run("SecretNotAliased", func(t *testing.T) {
			poly, _ := s.SamplePolynomial(2, secret)
			poly[0].Add(poly[0], poly[1])
			if poly[0].Equal(secret) {
				t.Fatal("test setup: mutation had no effect")
			}
			again, _ := s.SamplePolynomial(2, secret)
			if !again[0].Equal(secret) {
				t.Error("mutating a polynomial must not change the caller's secret")
			}
		})

		t.Run("ZeroThreshold", func(t *testing.T) {
			if _, err := s.SamplePolynomial(0, secret); !errors.Is(err, ErrInvalidThreshold) {
				t.Errorf("err = %v, want ErrInvalidThreshold", err)
			}
		})
	})
}

func TestEvaluatePolynomial(t *testing.T) {
	forEachGroup(t, func(t *testing.T, g group.Group) {
		s := New(g, rand.Reader)

		t.Run("AtZero", func(t *testing.T) {
			poly, _ := s.SamplePolynomial(4, randomScalar(t, g))
			if !s.EvaluatePolynomial(poly, g.NewScalar()).Equal(poly[0]) {
				t.Error("p(0) != p[0]")
			}
		})

		t.Run("KnownValues", func(t *testing.T) {
			// p(x) = 5 + 3x + 2x^2
			poly := Polynomial{
				group.ScalarFromUint32(g, 5),
				group.ScalarFromUint32(g, 3),
				group.ScalarFromUint32(g, 2),
			}
			cases := map[uint32]uint32{1: 10, 2: 19, 3: 32, 10: 235}
			for x, want := range cases {
				got := s.EvaluatePolynomial(poly, group.ScalarFromUint32(g, x))
				if !got.Equal(group.ScalarFromUint32(g, want)) {
					t.Errorf("p(%d) mismatch", x)
				}
			}
		})
	})
}

func TestShare(t *testing.T) {
	forEachGroup(t, func(t *testing.T, g group.Group) {
		s := New(g, rand.Reader)
		secret := randomScalar(t, g)

		pub, shares, err := s.Share(3, 5, secret)
		if err != nil {
			t.Fatal(err)
		}
		if len(shares) != 5 || len(pub.Commitment) != 3 {
			t.Fatalf("got %d shares and %d commitments", len(shares), len(pub.Commitment))
		}
		if !pub.PublicKey().Equal(group.BaseMult(g, secret)) {
			t.Error("commitment[0] must commit to the secret value")
		}
		for i, sh := range shares {
			if sh.X != uint32(i+1) {
				t.Errorf("share %d has point %d", i, sh.X)
			}
		}

		t.Run("InvalidThreshold", func(t *testing.T) {
			for _, tc := range [][2]uint32{{0, 3}, {3, 3}, {4, 3}} {
				if _, _, err := s.Share(tc[0], tc[1], secret); !errors.Is(err, ErrInvalidThreshold) {
					t.Errorf("Share(%d, %d): err = %v, want ErrInvalidThreshold", tc[0], tc[1], err)
				}
			}
		})
	})
}

func TestValidateShare(t *testing.T) {
	forEachGroup(t, func(t *testing.T, g group.Group) {
		s := New(g, rand.Reader)
		pub, shares, err := s.Share(3, 5, randomScalar(t, g))
		if err != nil {
			t.Fatal(err)
		}

		t.Run("AllValid", func(t *testing.T) {
			for _, sh := range shares {
				if !s.ValidateShare(pub, sh.Value, sh.X) {
					t.Errorf("share at %d rejected", sh.X)
				}
			}
		})

		t.Run("BitFlip", func(t *testing.T) {
			for bit := 0; bit < 8; bit++ {
				raw := shares[0].Value.Bytes()
				raw[len(raw)-1] ^= 1 << bit
				tampered, err := g.NewScalar().SetBytes(raw)
				if err != nil {
					t.Fatal(err)
				}
				if s.ValidateShare(pub, tampered, shares[0].X) {
					t.Errorf("flipping bit %d still validates", bit)
				}
			}
		})

		t.Run("WrongIndex", func(t *testing.T) {
			if s.ValidateShare(pub, shares[0].Value, shares[1].X) {
				t.Error("share validated at another party's point")
			}
		})

		t.Run("MismatchedCommitment", func(t *testing.T) {
			other, _, err := s.Share(3, 5, randomScalar(t, g))
			if err != nil {
				t.Fatal(err)
			}
			if s.ValidateShare(other, shares[0].Value, shares[0].X) {
				t.Error("share validated against a foreign commitment")
			}
		})

		t.Run("IndexCommitment", func(t *testing.T) {
			// Committing to coefficient positions instead of values must fail.
			bogus := &VerifiableSS{Threshold: 3, ShareCount: 5, Commitment: make([]group.Point, 3)}
			for i := range bogus.Commitment {
				bogus.Commitment[i] = group.BaseMult(g, group.ScalarFromUint32(g, uint32(i)))
			}
			for _, sh := range shares {
				if s.ValidateShare(bogus, sh.Value, sh.X) {
					t.Error("share validated against index commitment")
				}
			}
		})

		t.Run("OutOfRangeIndex", func(t *testing.T) {
			if s.ValidateShare(pub, shares[0].Value, 0) {
				t.Error("index 0 must not validate")
			}
			if s.ValidateShare(pub, shares[0].Value, 6) {
				t.Error("index beyond share count must not validate")
			}
		})

		t.Run("Malformed", func(t *testing.T) {
			short := &VerifiableSS{Threshold: 3, ShareCount: 5, Commitment: pub.Commitment[:2]}
			if s.ValidateShare(short, shares[0].Value, shares[0].X) {
				t.Error("truncated commitment must not validate")
			}
			if s.ValidateShare(nil, shares[0].Value, shares[0].X) {
				t.Error("nil commitment must not validate")
			}
			if s.ValidateShare(pub, nil, shares[0].X) {
				t.Error("nil share must not validate")
			}
		})
	})
}

func TestReconstruct(t *testing.T) {
	forEachGroup(t, func(t *testing.T, g group.Group) {
		s := New(g, rand.Reader)

		configs := []struct{ threshold, total uint32 }{{2, 3}, {3, 5}, {4, 6}}
		for _, cfg := range configs {
			t.Run(fmt.Sprintf("%d_of_%d", cfg.threshold, cfg.total), func(t *testing.T) {
				secret := randomScalar(t, g)
				_, shares, err := s.Share(cfg.threshold, cfg.total, secret)
				if err != nil {
					t.Fatal(err)
				}

				var first group.Scalar
				for _, sub := range subsets(shares, int(cfg.threshold)) {
					got, err := Reconstruct(g, sub)
					if err != nil {
						t.Fatal(err)
					}
					if !got.Equal(secret) {
						t.Fatalf("subset of size %d did not reconstruct the secret", len(sub))
					}
					if first == nil {
						first = got
					} else if !got.Equal(first) {
						t.Fatal("reconstruction depends on the chosen subset")
					}
				}

				below, err := Reconstruct(g, shares[:cfg.threshold-1])
				if err != nil {
					t.Fatal(err)
				}
				if below.Equal(secret) {
					t.Error("fewer than t shares should not reveal the secret")
				}
			})
		}
	})
}

func TestWorkedExample(t *testing.T) {
	forEachGroup(t, func(t *testing.T, g group.Group) {
		s := New(g, rand.Reader)
		// p(x) = 7 + 4x: shares 11, 15, 19 at x = 1, 2, 3.
		poly := Polynomial{group.ScalarFromUint32(g, 7), group.ScalarFromUint32(g, 4)}
		shares := make([]Share, 3)
		for x := uint32(1); x <= 3; x++ {
			shares[x-1] = Share{X: x, Value: s.EvaluatePolynomial(poly, group.ScalarFromUint32(g, x))}
		}
		if !shares[2].Value.Equal(group.ScalarFromUint32(g, 19)) {
			t.Fatal("p(3) != 19")
		}

		// λ1 = 2/(2-1) = 2 and λ2 = 1/(1-2) = -1 for the set {1, 2}.
		l1, err := LagrangeCoefficient(g, []uint32{1, 2}, 1)
		if err != nil {
			t.Fatal(err)
		}
		if !l1.Equal(group.ScalarFromUint32(g, 2)) {
			t.Error("λ1 over {1,2} != 2")
		}
		l2, _ := LagrangeCoefficient(g, []uint32{1, 2}, 2)
		if !l2.Equal(g.NewScalar().Negate(group.ScalarFromUint32(g, 1))) {
			t.Error("λ2 over {1,2} != -1")
		}

		for _, pair := range [][]Share{{shares[0], shares[1]}, {shares[1], shares[2]}, {shares[0], shares[2]}} {
			got, err := Reconstruct(g, pair)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(group.ScalarFromUint32(g, 7)) {
				t.Errorf("pair {%d,%d} did not reconstruct 7", pair[0].X, pair[1].X)
			}
		}
	})
}

func TestLagrangeCoefficientErrors(t *testing.T) {
	g := &secp256k1.Curve{}

	if _, err := LagrangeCoefficient(g, []uint32{1, 2}, 3); !errors.Is(err, ErrPointNotInSet) {
		t.Errorf("err = %v, want ErrPointNotInSet", err)
	}
	if _, err := LagrangeCoefficient(g, []uint32{1, 2, 2}, 1); !errors.Is(err, ErrDuplicatePoint) {
		t.Errorf("err = %v, want ErrDuplicatePoint", err)
	}
	if _, err := LagrangeCoefficient(g, []uint32{0, 1}, 1); !errors.Is(err, ErrInvalidPoint) {
		t.Errorf("err = %v, want ErrInvalidPoint", err)
	}
}

func TestReconstructPoint(t *testing.T) {
	forEachGroup(t, func(t *testing.T, g group.Group) {
		s := New(g, rand.Reader)
		pub, _, err := s.Share(3, 5, randomScalar(t, g))
		if err != nil {
			t.Fatal(err)
		}

		var pubShares []PointShare
		for _, x := range []uint32{5, 2, 4} {
			p, err := s.CommitmentAt(pub, x)
			if err != nil {
				t.Fatal(err)
			}
			pubShares = append(pubShares, PointShare{X: x, Value: p})
		}
		got, err := ReconstructPoint(g, pubShares)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(pub.PublicKey()) {
			t.Error("public shares did not interpolate to the committed secret")
		}
	})
}
