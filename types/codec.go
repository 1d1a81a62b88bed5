// types/codec.go
// 记录编码：8 字节类型鉴别符 + protobuf wire format 字段
package types

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

const DiscriminatorLength = 8

var (
	ErrRecordTooShort        = errors.New("record too short")
	ErrDiscriminatorMismatch = errors.New("record discriminator mismatch")
	ErrMalformedRecord       = errors.New("malformed record")
)

// Discriminator 由记录类型名计算：sha256("account:<Name>")[:8]
func Discriminator(name string) [DiscriminatorLength]byte {
	var d [DiscriminatorLength]byte
	sum := sha256.Sum256([]byte("account:" + name))
	copy(d[:], sum[:DiscriminatorLength])
	return d
}

// hasDiscriminator 判断原始数据是否属于某类记录
func hasDiscriminator(data []byte, d [DiscriminatorLength]byte) bool {
	return len(data) >= DiscriminatorLength && bytes.Equal(data[:DiscriminatorLength], d[:])
}

type recordWriter struct {
	buf []byte
}

func newRecordWriter(d [DiscriminatorLength]byte) *recordWriter {
	w := &recordWriter{buf: make([]byte, 0, 160)}
	w.buf = append(w.buf, d[:]...)
	return w
}

func (w *recordWriter) address(num protowire.Number, a Address) {
	w.buf = protowire.AppendTag(w.buf, num, protowire.BytesType)
	w.buf = protowire.AppendBytes(w.buf, a[:])
}

func (w *recordWriter) uint64(num protowire.Number, v uint64) {
	w.buf = protowire.AppendTag(w.buf, num, protowire.VarintType)
	w.buf = protowire.AppendVarint(w.buf, v)
}

func (w *recordWriter) bool(num protowire.Number, v bool) {
	w.uint64(num, protowire.EncodeBool(v))
}

func (w *recordWriter) bytes() []byte {
	return w.buf
}

// recordFields 解码后的字段表，未知字段忽略（向前兼容）
type recordFields struct {
	varints map[protowire.Number]uint64
	blobs   map[protowire.Number][]byte
}

func readRecord(data []byte, d [DiscriminatorLength]byte) (*recordFields, error) {
	if len(data) < DiscriminatorLength {
		return nil, ErrRecordTooShort
	}
	if !hasDiscriminator(data, d) {
		return nil, ErrDiscriminatorMismatch
	}
	f := &recordFields{
		varints: make(map[protowire.Number]uint64, 4),
		blobs:   make(map[protowire.Number][]byte, 4),
	}
	b := data[DiscriminatorLength:]
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, protowire.ParseError(n))
		}
		b = b[n:]
		switch typ {
		case protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrMalformedRecord, num, protowire.ParseError(m))
			}
			f.varints[num] = v
			b = b[m:]
		case protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrMalformedRecord, num, protowire.ParseError(m))
			}
			f.blobs[num] = v
			b = b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrMalformedRecord, num, protowire.ParseError(m))
			}
			b = b[m:]
		}
	}
	return f, nil
}

func (f *recordFields) address(num protowire.Number) (Address, error) {
	raw, ok := f.blobs[num]
	if !ok {
		return ZeroAddress, nil
	}
	a, err := AddressFromBytes(raw)
	if err != nil {
		return a, fmt.Errorf("%w: field %d: %v", ErrMalformedRecord, num, err)
	}
	return a, nil
}

func (f *recordFields) uint64(num protowire.Number) uint64 {
	return f.varints[num]
}

func (f *recordFields) uint8(num protowire.Number) (uint8, error) {
	v := f.varints[num]
	if v > 0xff {
		return 0, fmt.Errorf("%w: field %d overflows uint8", ErrMalformedRecord, num)
	}
	return uint8(v), nil
}

func (f *recordFields) bool(num protowire.Number) bool {
	return protowire.DecodeBool(f.varints[num])
}
