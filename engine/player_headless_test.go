//go:build headless

package engine

import (
	"bytes"
	"testing"
)

func TestHeadlessPlayerSilenceWithoutSource(t *testing.T) {
	p, err := NewPlayer(8000, 64)
	if err != nil {
		t.Fatal(err)
	}
	b := []byte{1, 2, 3, 4}
	if n, _ := p.Read(b); n != 4 || !bytes.Equal(b, make([]byte, 4)) {
		t.Fatalf("read %d %v, want silence", n, b)
	}

	p.SetSource(New(8000))
	p.Start()
	p.Start()
	p.Stop()
	p.Stop()
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}
