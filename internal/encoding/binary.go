package encoding

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// ErrShortBuffer is returned when a read runs past the end of the data.
var ErrShortBuffer = errors.New("short buffer")

// FromBytes32 turns 4 little endian bytes into an int32
func FromBytes32(data []byte) int32 {
	return int32(binary.LittleEndian.Uint32(data))
}

// ToBytes32 turns an int32 into []byte len 4
func ToBytes32(in int32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(in))
	return buf
}

// FromBytesFloat32 turns 4 little endian bytes into a float32
func FromBytesFloat32(data []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data))
}

// ToBytesFloat32 turns a float32 into []byte len 4
func ToBytesFloat32(in float32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(in))
	return buf
}

// Writer appends fixed width (4 byte) little endian values to a buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with room for `size` bytes before growing.
func NewWriter(size int) *Writer {
	return &Writer{buf: make([]byte, 0, size)}
}

// Int writes i as an int32.
func (w *Writer) Int(i int) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(int32(i)))
}

// Float writes f as a float32.
func (w *Writer) Float(f float64) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(float32(f)))
}

// Bytes returns everything written so far.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Reader consumes fixed width (4 byte) little endian values from a buffer.
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps data for reading.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns how many unread bytes are left.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Int reads the next int32.
func (r *Reader) Int() (int, error) {
	if r.Remaining() < 4 {
		return 0, errors.Wrapf(ErrShortBuffer, "int at offset %d", r.pos)
	}
	v := FromBytes32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return int(v), nil
}

// Float reads the next float32.
func (r *Reader) Float() (float64, error) {
	if r.Remaining() < 4 {
		return 0, errors.Wrapf(ErrShortBuffer, "float at offset %d", r.pos)
	}
	v := FromBytesFloat32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return float64(v), nil
}
