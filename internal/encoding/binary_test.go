package encoding

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
)

func TestWriterLayout(t *testing.T) {
	w := NewWriter(8)
	w.Int(1)
	w.Int(-1)

	want := []byte{0x01, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff}
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("layout %x, want %x", w.Bytes(), want)
	}
}

func TestReaderValues(t *testing.T) {
	w := NewWriter(12)
	w.Int(42)
	w.Float(0.5)
	w.Int(-7)

	r := NewReader(w.Bytes())
	i, err := r.Int()
	if err != nil || i != 42 {
		t.Fatalf("Int: %d %v", i, err)
	}
	f, err := r.Float()
	if err != nil || f != 0.5 {
		t.Fatalf("Float: %v %v", f, err)
	}
	i, err = r.Int()
	if err != nil || i != -7 {
		t.Fatalf("Int: %d %v", i, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("Remaining=%d, want 0", r.Remaining())
	}

	_, err = r.Int()
	if !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("expected ErrShortBuffer, got %v", err)
	}
}

func TestFloatBytes(t *testing.T) {
	if got := FromBytesFloat32(ToBytesFloat32(3.25)); got != 3.25 {
		t.Fatalf("got %v", got)
	}
	if got := FromBytes32(ToBytes32(-123456)); got != -123456 {
		t.Fatalf("got %v", got)
	}
}
