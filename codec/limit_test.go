package codec

import (
	"strings"
	"testing"
)

func TestLimitRejectsOversizedPayloads(t *testing.T) {
	c := Limit[string]{Inner: String{}, MaxDecode: 8}

	small, err := c.Encode("ok")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if v, err := c.Decode(small); err != nil || v != "ok" {
		t.Fatalf("Decode small: v=%q err=%v", v, err)
	}

	big := []byte(strings.Repeat("x", 9))
	if _, err := c.Decode(big); err == nil {
		t.Fatalf("expected oversized payload to be rejected")
	}
}

func TestLimitZeroDisablesCheck(t *testing.T) {
	c := Limit[string]{Inner: String{}}
	v, err := c.Decode([]byte(strings.Repeat("x", 1<<20)))
	if err != nil || len(v) != 1<<20 {
		t.Fatalf("limit disabled: len=%d err=%v", len(v), err)
	}
}

func TestLimitEncodeForwards(t *testing.T) {
	c := Limit[string]{Inner: String{}, MaxDecode: 1}
	b, err := c.Encode("longer than the decode cap")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(b) <= 1 {
		t.Fatalf("encode must not be capped")
	}
}
