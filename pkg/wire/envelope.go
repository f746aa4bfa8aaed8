// Package wire implements the self-describing binary envelope of the
// ChronoDB protocols: a little-endian [len u32][type u16][payload] frame.
//
// The payload type tag is opaque to this codec; it is interpreted by the
// payload consumer. Both transport backends carry their payloads (blocks,
// metadata) inside this frame.
package wire

import (
	"context"
	"encoding/binary"
	"io"

	"github.com/ajitpratap0/chronodb-go/pkg/errors"
)

// HeaderLen is the size of the length and type prefix.
const HeaderLen = 6

// Envelope is one decoded wire frame. The backing buffer is always
// self-contained (header re-embedded at the front) and therefore
// re-encodable as-is.
//
// An envelope either owns its buffer or borrows memory provided by the
// caller, typically pages lent by the native library. The accessors behave
// identically for both representations; borrowed envelopes must not be used
// past the scope that produced their memory, and callers must not assume
// exclusive mutation rights over it. Detach converts to an owned envelope.
type Envelope struct {
	data  []byte
	owned bool
}

// New builds an owned envelope around a payload, copying it.
func New(rawType uint16, payload []byte) *Envelope {
	data := make([]byte, HeaderLen+len(payload))
	binary.LittleEndian.PutUint32(data, uint32(len(payload)))
	binary.LittleEndian.PutUint16(data[4:], rawType)
	copy(data[HeaderLen:], payload)
	return &Envelope{data: data, owned: true}
}

// Borrowed wraps a complete frame in caller-provided memory without copying.
// The frame's embedded length must match the actual payload byte count.
func Borrowed(frame []byte) (*Envelope, error) {
	if err := validate(frame); err != nil {
		return nil, err
	}
	return &Envelope{data: frame, owned: false}, nil
}

// FromBytes wraps a complete frame, taking ownership of the slice.
func FromBytes(frame []byte) (*Envelope, error) {
	if err := validate(frame); err != nil {
		return nil, err
	}
	return &Envelope{data: frame, owned: true}, nil
}

func validate(frame []byte) error {
	if len(frame) < HeaderLen {
		return errors.Newf(errors.ErrorTypeFrame, "frame shorter than %d-byte header", HeaderLen)
	}
	want := int(binary.LittleEndian.Uint32(frame))
	if len(frame) != HeaderLen+want {
		return errors.Newf(errors.ErrorTypeFrame,
			"frame length %d inconsistent with embedded payload length %d", len(frame), want)
	}
	return nil
}

// RawLen returns the embedded payload byte count.
func (e *Envelope) RawLen() uint32 {
	return binary.LittleEndian.Uint32(e.data)
}

// RawType returns the payload type tag. The tag is opaque at this layer.
func (e *Envelope) RawType() uint16 {
	return binary.LittleEndian.Uint16(e.data[4:])
}

// Payload returns the payload bytes. For borrowed envelopes the slice
// references foreign memory and shares its lifetime.
func (e *Envelope) Payload() []byte {
	return e.data[HeaderLen:]
}

// Owned reports whether the envelope owns its backing buffer.
func (e *Envelope) Owned() bool {
	return e.owned
}

// Bytes returns the self-contained frame. Borrowed envelopes are copied so
// the result is always safe to retain.
func (e *Envelope) Bytes() []byte {
	if e.owned {
		return e.data
	}
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out
}

// Detach returns an envelope guaranteed to own its buffer, copying only
// when the receiver is borrowed.
func (e *Envelope) Detach() *Envelope {
	if e.owned {
		return e
	}
	return &Envelope{data: e.Bytes(), owned: true}
}

// Encode writes the frame and returns the total bytes written, for
// accounting and flow control.
func (e *Envelope) Encode(w io.Writer) (int, error) {
	n, err := w.Write(e.data)
	if err != nil {
		return n, errors.Wrap(err, errors.ErrorTypeConnection, "writing envelope")
	}
	return n, nil
}

// Encode writes a [len][type][payload] frame without building an Envelope
// and returns the total bytes written.
func Encode(w io.Writer, rawType uint16, payload []byte) (int, error) {
	var hdr [HeaderLen]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(payload)))
	binary.LittleEndian.PutUint16(hdr[4:], rawType)
	if _, err := w.Write(hdr[:]); err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeConnection, "writing envelope header")
	}
	if _, err := w.Write(payload); err != nil {
		return HeaderLen, errors.Wrap(err, errors.ErrorTypeConnection, "writing envelope payload")
	}
	return HeaderLen + len(payload), nil
}

// ReadEnvelope decodes one frame from r into an owned, self-contained
// envelope: the two header fields are re-embedded at the front of the
// buffer so the result is re-encodable as-is.
//
// A stream that ends before the first header byte returns io.EOF untouched.
// Any other short read is a frame error wrapping io.ErrUnexpectedEOF;
// partial payloads are never returned. Callers on streaming transports must
// retry at a higher level.
func ReadEnvelope(r io.Reader) (*Envelope, error) {
	var hdr [HeaderLen]byte
	if _, err := io.ReadFull(r, hdr[:4]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrap(err, errors.ErrorTypeFrame, "reading envelope length")
	}
	if _, err := io.ReadFull(r, hdr[4:]); err != nil {
		return nil, errors.Wrap(eofToUnexpected(err), errors.ErrorTypeFrame, "reading envelope type")
	}

	length := binary.LittleEndian.Uint32(hdr[:])
	data := make([]byte, HeaderLen+int(length))
	copy(data, hdr[:])
	if _, err := io.ReadFull(r, data[HeaderLen:]); err != nil {
		return nil, errors.Wrap(eofToUnexpected(err), errors.ErrorTypeFrame, "reading envelope payload")
	}
	return &Envelope{data: data, owned: true}, nil
}

// ReadEnvelopeContext decodes one frame like ReadEnvelope, observing
// cancellation between the header and payload reads. The reads themselves
// block on r; transports that support deadlines should arm them from ctx
// before calling.
func ReadEnvelopeContext(ctx context.Context, r io.Reader) (*Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeTimeout, "reading envelope")
	}
	var hdr [HeaderLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrap(eofToUnexpected(err), errors.ErrorTypeFrame, "reading envelope header")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeTimeout, "reading envelope")
	}

	length := binary.LittleEndian.Uint32(hdr[:])
	data := make([]byte, HeaderLen+int(length))
	copy(data, hdr[:])
	if _, err := io.ReadFull(r, data[HeaderLen:]); err != nil {
		return nil, errors.Wrap(eofToUnexpected(err), errors.ErrorTypeFrame, "reading envelope payload")
	}
	return &Envelope{data: data, owned: true}, nil
}

// eofToUnexpected normalizes a clean EOF in the middle of a frame: the frame
// is truncated, which is always unexpected.
func eofToUnexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
