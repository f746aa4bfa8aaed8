package mq

import (
	"sync"
	"time"

	"github.com/IBM/sarama"
	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/chronodb-go/pkg/block"
	"github.com/ajitpratap0/chronodb-go/pkg/compression"
	"github.com/ajitpratap0/chronodb-go/pkg/errors"
	"github.com/ajitpratap0/chronodb-go/pkg/wire"
)

// Message header keys carried alongside every broker message.
const (
	headerKind  = "chronodb-kind"
	headerCodec = "chronodb-codec"
)

// Envelope type tags used by the broker transport. The tag space is u16 and
// shared with the native transport.
const (
	// RawTypeBlock tags envelope payloads carrying a columnar block
	RawTypeBlock uint16 = 1
	// RawTypeMeta tags envelope payloads carrying JSON metadata
	RawTypeMeta uint16 = 2
)

// Meta is the JSON metadata payload of table-meta messages.
type Meta struct {
	Database  string    `json:"database"`
	Table     string    `json:"table"`
	Operation string    `json:"operation"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Message is one decoded broker message: its position, its kind, and the
// decompressed envelope it carried.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Kind      MessageKind
	Envelope  *wire.Envelope
}

// Block decodes the envelope payload as a columnar block. Only data-kind
// messages carry blocks.
func (m *Message) Block() (*block.Block, error) {
	if m.Kind != KindData && m.Kind != KindMetaData {
		return nil, errors.Newf(errors.ErrorTypeData,
			"message kind %s does not carry a block", m.Kind)
	}
	if m.Envelope.RawType() != RawTypeBlock {
		return nil, errors.Newf(errors.ErrorTypeData,
			"envelope type %d is not a block payload", m.Envelope.RawType())
	}
	return block.FromWirePayload(m.Envelope.Payload())
}

// Meta decodes the envelope payload as JSON metadata.
func (m *Message) Meta() (*Meta, error) {
	if m.Envelope.RawType() != RawTypeMeta {
		return nil, errors.Newf(errors.ErrorTypeData,
			"envelope type %d is not a metadata payload", m.Envelope.RawType())
	}
	var meta Meta
	if err := gojson.Unmarshal(m.Envelope.Payload(), &meta); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "decoding message metadata")
	}
	return &meta, nil
}

// Decoder turns raw broker messages into decoded Messages. It caches one
// compressor per codec, so it is cheap to reuse across a consumer session.
// Decoder is safe for concurrent use.
type Decoder struct {
	mu    sync.Mutex
	cache map[compression.Codec]compression.Compressor
}

// NewDecoder returns an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{cache: make(map[compression.Codec]compression.Compressor)}
}

func (d *Decoder) compressor(codec compression.Codec) (compression.Compressor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.cache[codec]; ok {
		return c, nil
	}
	c, err := compression.New(codec)
	if err != nil {
		return nil, err
	}
	d.cache[codec] = c
	return c, nil
}

// Decode reads the kind and codec headers, decompresses the value, and wraps
// it as an owned envelope.
func (d *Decoder) Decode(msg *sarama.ConsumerMessage) (*Message, error) {
	kind := KindInvalid
	codec := compression.CodecNone
	for _, h := range msg.Headers {
		switch string(h.Key) {
		case headerKind:
			kind = ParseKind(string(h.Value))
		case headerCodec:
			c, err := compression.ParseCodec(string(h.Value))
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeData, "decoding message codec header")
			}
			codec = c
		}
	}

	comp, err := d.compressor(codec)
	if err != nil {
		return nil, err
	}
	frame, err := comp.Decompress(msg.Value)
	if err != nil {
		return nil, err
	}
	env, err := wire.FromBytes(frame)
	if err != nil {
		return nil, err
	}

	return &Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Kind:      kind,
		Envelope:  env,
	}, nil
}

// NewBlockMessage encodes a block into a compressed envelope frame ready for
// publishing. key partitions messages; an empty key lets the broker balance.
func NewBlockMessage(topic, key string, b *block.Block, comp compression.Compressor) (*sarama.ProducerMessage, error) {
	payload := make([]byte, 0, b.WireSize())
	buf := newSliceWriter(payload)
	if _, err := b.WriteWire(buf); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "encoding block payload")
	}
	return newEnvelopeMessage(topic, key, KindData, wire.New(RawTypeBlock, buf.bytes()), comp)
}

// NewMetaMessage encodes table metadata into a compressed envelope frame.
func NewMetaMessage(topic, key string, meta *Meta, comp compression.Compressor) (*sarama.ProducerMessage, error) {
	payload, err := gojson.Marshal(meta)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "encoding message metadata")
	}
	return newEnvelopeMessage(topic, key, KindTableMeta, wire.New(RawTypeMeta, payload), comp)
}

func newEnvelopeMessage(topic, key string, kind MessageKind, env *wire.Envelope, comp compression.Compressor) (*sarama.ProducerMessage, error) {
	value, err := comp.Compress(env.Bytes())
	if err != nil {
		return nil, err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte(headerKind), Value: []byte(kind.String())},
			{Key: []byte(headerCodec), Value: []byte(comp.Codec().String())},
		},
		Timestamp: time.Now(),
	}
	if key != "" {
		msg.Key = sarama.StringEncoder(key)
	}
	return msg, nil
}

// sliceWriter is an io.Writer over a growable byte slice, avoiding the
// bytes.Buffer bookkeeping for single-shot encodes of known size.
type sliceWriter struct {
	buf []byte
}

func newSliceWriter(buf []byte) *sliceWriter {
	return &sliceWriter{buf: buf}
}

func (w *sliceWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *sliceWriter) bytes() []byte {
	return w.buf
}
