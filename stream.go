package ecs

import (
	"encoding/binary"
	"io"

	"github.com/rotisserie/eris"
)

// Stream is the abstract transport Save/Load operate against. The engine
// never assumes a particular backing (file, memory, network); it only needs
// to read, write, and seek to patch length fields written before their body.
type Stream interface {
	io.Reader
	io.Writer
	Position() (int64, error)
	SetPosition(pos int64) error
}

// MemoryStream is a Stream backed by an in-memory byte slice, growing on
// write the way a plain byte buffer would. It is the default transport for
// tests and for callers with no file or network requirement.
type MemoryStream struct {
	data []byte
	pos  int
}

// NewMemoryStream wraps data (taking ownership of it) in a Stream. A nil or
// empty slice starts an empty, writable stream.
func NewMemoryStream(data []byte) *MemoryStream {
	return &MemoryStream{data: data}
}

// Bytes returns the stream's current backing slice.
func (m *MemoryStream) Bytes() []byte { return m.data }

func (m *MemoryStream) Write(p []byte) (int, error) {
	need := m.pos + len(p)
	if need > len(m.data) {
		grown := make([]byte, need)
		copy(grown, m.data)
		m.data = grown
	}
	copy(m.data[m.pos:], p)
	m.pos += len(p)
	return len(p), nil
}

func (m *MemoryStream) Read(p []byte) (int, error) {
	avail := len(m.data) - m.pos
	if avail <= 0 {
		return 0, io.EOF
	}
	n := len(p)
	if n > avail {
		n = avail
	}
	copy(p, m.data[m.pos:m.pos+n])
	m.pos += n
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

func (m *MemoryStream) Position() (int64, error) { return int64(m.pos), nil }

func (m *MemoryStream) SetPosition(pos int64) error {
	if pos < 0 || pos > int64(len(m.data)) {
		return eris.Errorf("ecs: seek to %d out of range [0,%d]", pos, len(m.data))
	}
	m.pos = int(pos)
	return nil
}

func writeUint8(s Stream, v uint8) error {
	_, err := s.Write([]byte{v})
	return err
}

func readUint8(s Stream) (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(s, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func writeUint32(s Stream, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := s.Write(b[:])
	return err
}

func readUint32(s Stream) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(s, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}
