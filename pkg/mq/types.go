// Package mq implements the message-based transport backend: broker messages
// whose payloads are wire envelopes carrying columnar blocks or metadata.
package mq

import (
	"github.com/ajitpratap0/chronodb-go/pkg/errors"
)

// MessageKind tags what a broker message carries. The numeric values are
// part of the wire contract with the server and must not be reordered.
type MessageKind int32

const (
	// KindInvalid marks a message the server could not classify
	KindInvalid MessageKind = -1
	// KindData carries a columnar block
	KindData MessageKind = 1
	// KindTableMeta carries table metadata
	KindTableMeta MessageKind = 2
	// KindMetaData carries combined metadata and data
	KindMetaData MessageKind = 3
)

// String returns the kind name used in message headers.
func (k MessageKind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindTableMeta:
		return "table_meta"
	case KindMetaData:
		return "meta_data"
	default:
		return "invalid"
	}
}

// ParseKind resolves a header value to a message kind. Unknown names map to
// KindInvalid without error; the server may introduce kinds this client
// does not understand yet.
func ParseKind(name string) MessageKind {
	switch name {
	case "data":
		return KindData
	case "table_meta":
		return KindTableMeta
	case "meta_data":
		return KindMetaData
	default:
		return KindInvalid
	}
}

// RespCode is a server response code carried in control-plane replies.
// Zero means success.
type RespCode int32

// Ok reports whether the code signals success.
func (c RespCode) Ok() bool {
	return c == 0
}

// OkOr returns nil for success codes and a DriverStatus error carrying the
// code and message otherwise.
func (c RespCode) OkOr(message string) error {
	if c.Ok() {
		return nil
	}
	return errors.NewDriverStatus(int32(c), message)
}
