package encryption

import (
	"bytes"
	"strings"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext string
	}{
		{"json document", `{"score":82,"decision":"PASS"}`},
		{"empty", ""},
		{"unicode", "候补者回答了问题"},
		{"long transcript", strings.Repeat("the candidate explained the tradeoffs ", 50)},
	}

	for _, alg := range []Algorithm{AlgorithmAESGCM, AlgorithmChaCha20} {
		c, err := New("archive-key", WithAlgorithm(alg))
		if err != nil {
			t.Fatalf("New(%s): %v", alg, err)
		}
		for _, tt := range tests {
			t.Run(string(alg)+"/"+tt.name, func(t *testing.T) {
				sealed, err := c.Seal([]byte(tt.plaintext))
				if err != nil {
					t.Fatalf("Seal: %v", err)
				}
				if sealed == tt.plaintext && tt.plaintext != "" {
					t.Error("sealed output equals plaintext")
				}

				opened, err := c.Open(sealed)
				if err != nil {
					t.Fatalf("Open: %v", err)
				}
				if !bytes.Equal(opened, []byte(tt.plaintext)) {
					t.Errorf("round trip = %q, want %q", opened, tt.plaintext)
				}
			})
		}
	}
}

func TestSealProducesDistinctBlobs(t *testing.T) {
	c, err := New("key")
	if err != nil {
		t.Fatal(err)
	}
	a, _ := c.Seal([]byte("same input"))
	b, _ := c.Seal([]byte("same input"))
	if a == b {
		t.Error("two seals of the same plaintext produced identical blobs")
	}
}

func TestOpenWrongKey(t *testing.T) {
	c1, _ := New("key-one")
	c2, _ := New("key-two")

	sealed, err := c1.Seal([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c2.Open(sealed); err == nil {
		t.Error("expected error opening with a different key")
	}
}

func TestOpenMalformedInput(t *testing.T) {
	c, _ := New("key")

	if _, err := c.Open("not-base64!!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
	if _, err := c.Open("c2hvcnQ="); err == nil {
		t.Error("expected error for truncated ciphertext")
	}
}

func TestNewUnsupportedAlgorithm(t *testing.T) {
	if _, err := New("key", WithAlgorithm("rot13")); err == nil {
		t.Error("expected error for unsupported algorithm")
	}
}
