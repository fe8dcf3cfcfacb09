package capture

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/egonelbre/exp-netcompress/netcode"
)

// ErrMalformedDump is returned when a capture dump cannot be decoded.
var ErrMalformedDump = errors.New("malformed capture dump")

// Field numbers of the dump message.
const (
	fieldSession     protowire.Number = 1
	fieldFingerprint protowire.Number = 2
	fieldContext     protowire.Number = 3

	fieldContextID     protowire.Number = 1
	fieldContextCounts protowire.Number = 2
	fieldContextValues protowire.Number = 3
)

// WriteTo writes c as a zstd compressed dump.
func (c *Capture) WriteTo(w io.Writer) (int64, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return 0, err
	}
	defer enc.Close()

	n, err := w.Write(enc.EncodeAll(c.appendProto(nil), nil))
	return int64(n), err
}

func (c *Capture) appendProto(b []byte) []byte {
	b = protowire.AppendTag(b, fieldSession, protowire.BytesType)
	b = protowire.AppendBytes(b, c.Session[:])
	b = protowire.AppendTag(b, fieldFingerprint, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, c.Fingerprint)

	var msg, packed []byte
	for _, ctx := range c.ContextIDs() {
		stats := c.Contexts[ctx]

		msg = msg[:0]
		msg = protowire.AppendTag(msg, fieldContextID, protowire.VarintType)
		msg = protowire.AppendVarint(msg, uint64(ctx))

		packed = packed[:0]
		for _, n := range stats.Counts {
			packed = protowire.AppendVarint(packed, n)
		}
		msg = protowire.AppendTag(msg, fieldContextCounts, protowire.BytesType)
		msg = protowire.AppendBytes(msg, packed)

		if len(stats.Values) > 0 {
			packed = packed[:0]
			for _, v := range stats.Values {
				packed = protowire.AppendVarint(packed, uint64(v))
			}
			msg = protowire.AppendTag(msg, fieldContextValues, protowire.BytesType)
			msg = protowire.AppendBytes(msg, packed)
		}

		b = protowire.AppendTag(b, fieldContext, protowire.BytesType)
		b = protowire.AppendBytes(b, msg)
	}
	return b
}

// ReadCapture decodes a dump written by WriteTo.
func ReadCapture(r io.Reader) (*Capture, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decompress capture: %w", err)
	}

	c := &Capture{Contexts: make(map[int]*ContextStats)}
	if err := c.parseProto(data); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Capture) parseProto(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformedDump, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldSession && typ == protowire.BytesType:
			var v []byte
			v, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				session, err := uuid.FromBytes(v)
				if err != nil {
					return fmt.Errorf("%w: session: %v", ErrMalformedDump, err)
				}
				c.Session = session
			}
		case num == fieldFingerprint && typ == protowire.Fixed64Type:
			c.Fingerprint, n = protowire.ConsumeFixed64(b)
		case num == fieldContext && typ == protowire.BytesType:
			var v []byte
			v, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				if err := c.parseContext(v); err != nil {
					return err
				}
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrMalformedDump, num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return nil
}

func (c *Capture) parseContext(b []byte) error {
	var (
		ctx    uint64
		counts []uint64
		values []uint32
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformedDump, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldContextID && typ == protowire.VarintType:
			ctx, n = protowire.ConsumeVarint(b)
		case num == fieldContextCounts && typ == protowire.BytesType:
			var packed []byte
			packed, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				var err error
				counts, err = consumePacked(counts, packed, math.MaxUint64)
				if err != nil {
					return err
				}
			}
		case num == fieldContextValues && typ == protowire.BytesType:
			var packed []byte
			packed, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				raw, err := consumePacked(nil, packed, math.MaxUint32)
				if err != nil {
					return err
				}
				for _, v := range raw {
					values = append(values, uint32(v))
				}
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("%w: context field %d: %v", ErrMalformedDump, num, protowire.ParseError(n))
		}
		b = b[n:]
	}

	if ctx >= netcode.MaxContexts {
		return fmt.Errorf("%w: context %d out of range", ErrMalformedDump, ctx)
	}
	if len(counts) > netcode.AlphabetSize {
		return fmt.Errorf("%w: context %d has %d counts", ErrMalformedDump, ctx, len(counts))
	}

	stats := c.Stats(int(ctx))
	for symbol, n := range counts {
		stats.Counts[symbol] += n
	}
	stats.Values = append(stats.Values, values...)
	return nil
}

func consumePacked(dst []uint64, b []byte, limit uint64) ([]uint64, error) {
	for len(b) > 0 {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return dst, fmt.Errorf("%w: packed field: %v", ErrMalformedDump, protowire.ParseError(n))
		}
		if v > limit {
			return dst, fmt.Errorf("%w: packed value %d out of range", ErrMalformedDump, v)
		}
		dst = append(dst, v)
		b = b[n:]
	}
	return dst, nil
}
