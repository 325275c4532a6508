// Package grouptest checks that a [group.Group] implementation satisfies
// the algebraic laws the vss and dkg packages rely on.
package grouptest

import (
	"crypto/rand"
	"testing"

	"github.com/f3rmion/fdkg/group"
)

// Run exercises scalar and point arithmetic of g.
func Run(t *testing.T, g group.Group) {
	t.Helper()
	t.Run("Scalar", func(t *testing.T) { testScalar(t, g) })
	t.Run("Point", func(t *testing.T) { testPoint(t, g) })
}

func mustRandom(t *testing.T, g group.Group) group.Scalar {
	t.Helper()
	s, err := g.RandomScalar(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func testScalar(t *testing.T, g group.Group) {
	t.Run("AddSub", func(t *testing.T) {
		a := mustRandom(t, g)
		b := mustRandom(t, g)

		sum := g.NewScalar().Add(a, b)
		diff := g.NewScalar().Sub(sum, b)

		if !diff.Equal(a) {
			t.Error("(a+b)-b != a")
		}
	})

	t.Run("MulInvert", func(t *testing.T) {
		a := mustRandom(t, g)
		aInv, err := g.NewScalar().Invert(a)
		if err != nil {
			t.Fatal(err)
		}

		one := group.ScalarFromUint32(g, 1)
		if !g.NewScalar().Mul(a, aInv).Equal(one) {
			t.Error("a*a^-1 != 1")
		}
	})

	t.Run("InvertZeroFails", func(t *testing.T) {
		if _, err := g.NewScalar().Invert(g.NewScalar()); err == nil {
			t.Error("expected error inverting zero")
		}
	})

	t.Run("Negate", func(t *testing.T) {
		a := mustRandom(t, g)
		negA := g.NewScalar().Negate(a)

		if !g.NewScalar().Add(a, negA).IsZero() {
			t.Error("a + (-a) != 0")
		}
		if a.Equal(negA) {
			t.Error("a should not equal -a")
		}
	})

	t.Run("FromUint32", func(t *testing.T) {
		two := group.ScalarFromUint32(g, 2)
		three := group.ScalarFromUint32(g, 3)
		five := group.ScalarFromUint32(g, 5)
		if !g.NewScalar().Add(two, three).Equal(five) {
			t.Error("2+3 != 5")
		}
		if !group.ScalarFromUint32(g, 0).IsZero() {
			t.Error("scalar from 0 should be zero")
		}
	})

	t.Run("BytesRoundtrip", func(t *testing.T) {
		a := mustRandom(t, g)

		raw := a.Bytes()
		if len(raw) != 32 {
			t.Fatalf("scalar encoding is %d bytes, want 32", len(raw))
		}
		restored, err := g.NewScalar().SetBytes(raw)
		if err != nil {
			t.Fatal(err)
		}
		if !restored.Equal(a) {
			t.Error("scalar bytes roundtrip failed")
		}
	})

	t.Run("RandomNonZero", func(t *testing.T) {
		a := mustRandom(t, g)
		b := mustRandom(t, g)
		if a.IsZero() || b.IsZero() {
			t.Error("random scalar must be non-zero")
		}
		if a.Equal(b) {
			t.Error("two random scalars should differ")
		}
	})

	t.Run("NewScalarIsZero", func(t *testing.T) {
		if !g.NewScalar().IsZero() {
			t.Error("new scalar should be zero")
		}
	})
}

func testPoint(t *testing.T, g group.Group) {
	t.Run("AddSub", func(t *testing.T) {
		P := group.BaseMult(g, mustRandom(t, g))
		Q := group.BaseMult(g, mustRandom(t, g))

		sum := g.NewPoint().Add(P, Q)
		diff := g.NewPoint().Sub(sum, Q)

		if !diff.Equal(P) {
			t.Error("(P+Q)-Q != P")
		}
	})

	t.Run("Negate", func(t *testing.T) {
		P := group.BaseMult(g, mustRandom(t, g))
		negP := g.NewPoint().Negate(P)

		if !g.NewPoint().Add(P, negP).IsIdentity() {
			t.Error("P + (-P) != identity")
		}
	})

	t.Run("Homomorphism", func(t *testing.T) {
		a := mustRandom(t, g)
		b := mustRandom(t, g)

		lhs := group.BaseMult(g, g.NewScalar().Add(a, b))
		rhs := g.NewPoint().Add(group.BaseMult(g, a), group.BaseMult(g, b))
		if !lhs.Equal(rhs) {
			t.Error("(a+b)G != aG + bG")
		}

		ab := group.BaseMult(g, g.NewScalar().Mul(a, b))
		bThenA := g.NewPoint().ScalarMult(a, group.BaseMult(g, b))
		if !ab.Equal(bThenA) {
			t.Error("(ab)G != a(bG)")
		}
	})

	t.Run("IdentityIsNeutral", func(t *testing.T) {
		P := group.BaseMult(g, mustRandom(t, g))
		if !g.NewPoint().Add(P, g.NewPoint()).Equal(P) {
			t.Error("P + identity != P")
		}
		if !g.NewPoint().Add(g.NewPoint(), P).Equal(P) {
			t.Error("identity + P != P")
		}
		if !group.BaseMult(g, g.NewScalar()).IsIdentity() {
			t.Error("0*G should be identity")
		}
	})

	t.Run("BytesRoundtrip", func(t *testing.T) {
		P := group.BaseMult(g, mustRandom(t, g))

		restored, err := g.NewPoint().SetBytes(P.Bytes())
		if err != nil {
			t.Fatal(err)
		}
		if !restored.Equal(P) {
			t.Error("point bytes roundtrip failed")
		}
	})

	t.Run("IsIdentity", func(t *testing.T) {
		if !g.NewPoint().IsIdentity() {
			t.Error("new point should be identity")
		}
		if g.Generator().IsIdentity() {
			t.Error("generator should not be identity")
		}
	})
}
