package party

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestFromUint64(t *testing.T) {
	idx := FromUint64(0x0102)
	if idx[0] != 0x02 || idx[1] != 0x01 {
		t.Errorf("expected little-endian low bytes, got %x", idx[:2])
	}
	for _, b := range idx[8:] {
		if b != 0 {
			t.Fatal("high bytes must stay zero")
		}
	}
}

func TestOrderIsByteLexicographic(t *testing.T) {
	one := FromUint64(1)
	big := FromUint64(256)

	// 256 = 00 01 ..., 1 = 01 00 ...
	if !big.Less(one) {
		t.Error("FromUint64(256) must sort before FromUint64(1)")
	}
	if one.Less(big) {
		t.Error("ordering must not follow integer magnitude")
	}
}

func TestCompareIsStrictTotalOrder(t *testing.T) {
	ids := []Index{
		{},
		FromUint64(1),
		FromUint64(2),
		FromUint64(256),
		FromPublicKey([]byte("alice")),
		FromPublicKey([]byte("bob")),
	}
	for _, a := range ids {
		for _, b := range ids {
			lt, eq, gt := a.Compare(b) < 0, a.Compare(b) == 0, a.Compare(b) > 0
			n := 0
			for _, v := range []bool{lt, eq, gt} {
				if v {
					n++
				}
			}
			if n != 1 {
				t.Fatalf("exactly one relation must hold for %s, %s", a, b)
			}
			if eq != a.Equal(b) {
				t.Fatalf("Compare and Equal disagree for %s, %s", a, b)
			}
			if a.Compare(b) != -b.Compare(a) {
				t.Fatalf("Compare is not antisymmetric for %s, %s", a, b)
			}
		}
	}
}

func TestFromSlice(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		raw := bytes.Repeat([]byte{7}, Size)
		idx, err := FromSlice(raw)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(idx.Bytes(), raw) {
			t.Error("bytes mismatch")
		}
	})

	t.Run("WrongLength", func(t *testing.T) {
		if _, err := FromSlice(make([]byte, 31)); err == nil {
			t.Error("expected error for 31-byte slice")
		}
	})
}

func TestZeroSentinel(t *testing.T) {
	var zero Index
	if !zero.IsZero() {
		t.Error("zero value must be the sentinel")
	}
	if FromUint64(1).IsZero() {
		t.Error("FromUint64(1) must not be zero")
	}
}

func TestString(t *testing.T) {
	s := FromUint64(0xab).String()
	if len(s) != 2*Size {
		t.Fatalf("unexpected length %d", len(s))
	}
	if !strings.HasSuffix(s, "AB") || !strings.HasPrefix(s, "00") {
		t.Errorf("String() = %s, want reversed uppercase hex", s)
	}
}

func TestTextRoundtrip(t *testing.T) {
	idx := FromPublicKey([]byte("carol"))
	raw, err := json.Marshal(map[Index]int{idx: 1})
	if err != nil {
		t.Fatal(err)
	}
	var back map[Index]int
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back[idx] != 1 {
		t.Error("index lost in text roundtrip")
	}
}

func TestDedup(t *testing.T) {
	a, b := FromUint64(1), FromUint64(2)

	out, dup := Dedup([]Index{b, a, b})
	if !dup {
		t.Error("duplicate not reported")
	}
	if len(out) != 2 || !out[0].Equal(a) || !out[1].Equal(b) {
		t.Errorf("unexpected dedup result %v", out)
	}

	if _, dup := Dedup([]Index{a, b}); dup {
		t.Error("no duplicate expected")
	}
}

func TestFromPublicKeyDeterministic(t *testing.T) {
	if FromPublicKey([]byte("k")) != FromPublicKey([]byte("k")) {
		t.Error("derivation must be deterministic")
	}
	if FromPublicKey([]byte("k1")) == FromPublicKey([]byte("k2")) {
		t.Error("different keys should give different indices")
	}
}
