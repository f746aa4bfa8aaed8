// Package chronodb provides the Go client driver core for ChronoDB, a
// columnar time-series database. It implements the in-memory representation
// of query results (typed column views, null bitmaps, rectangular blocks),
// the self-describing binary envelope those results travel in, and the
// bridges that connect them to application code and to the two transport
// backends (native library and message broker).
//
// # Architecture
//
// The driver core is built around three ideas:
//
// 1. Columnar blocks: results arrive as blocks of typed columns sharing one
// row count. Columns are views over contiguous byte buffers, reinterpreted
// in place when ingested from a transport so that reading a value never
// copies more than the value itself.
//
// 2. Self-describing frames: every payload crosses the wire as a
// length-prefixed, type-tagged envelope. A decoded envelope is re-encodable
// as-is, whether it wraps an owned buffer or memory lent by the native
// library.
//
// 3. Asynchronous bridging: the native library completes queries through a
// one-shot callback on its own thread. The driver turns that into a
// pollable, context-aware result future with exactly-once completion.
//
// # Key Packages
//
//	pkg/bitmap      - packed per-row null bitmaps
//	pkg/block       - column views, blocks, row iteration, struct scanning
//	pkg/wire        - the [len][type][payload] envelope codec
//	pkg/native      - callback-to-future bridge for the native backend
//	pkg/mq          - message-broker transport for envelope payloads
//	pkg/driver      - backend and statement-binding interfaces
//	pkg/arrowconv   - Block <-> Apache Arrow record conversion
//	pkg/compression - payload compression for the broker transport
//	pkg/errors      - structured error handling
//	pkg/logger      - structured logging
//
// # Quick Start
//
// Decode a block from a wire envelope and scan its rows:
//
//	env, err := wire.ReadEnvelope(conn)
//	if err != nil {
//	    return err
//	}
//	blk, err := block.FromWirePayload(env.Payload())
//	if err != nil {
//	    return err
//	}
//	rows := blk.Rows()
//	for {
//	    row, ok := rows.Next()
//	    if !ok {
//	        break
//	    }
//	    var m Measurement
//	    if err := row.ScanStruct(&m); err != nil {
//	        return err
//	    }
//	}
//
// SQL execution, query planning and transport framing are out of scope;
// this module only represents results once bytes are available and turns
// pending native operations into observable completions.
package chronodb
