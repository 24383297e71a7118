package binlog

import (
	"io"
)

// reader is a cursor over the bytes of a single packet.
//
// Errors are sticky: once a read fails, every following read returns
// zero values and r.err keeps the first failure.
type reader struct {
	buf   []byte
	off   int // bytes consumed so far, read at &buf[off]
	limit int // bytes left in the current event region, -1 for no limit
	err   error
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf, limit: -1}
}

func (r *reader) buffer() []byte {
	buf := r.buf[r.off:]
	if r.limit >= 0 && len(buf) > r.limit {
		return buf[:r.limit]
	}
	return buf
}

func (r *reader) ensure(n int) error {
	if r.err != nil {
		return r.err
	}
	if r.limit >= 0 && n > r.limit {
		r.err = ErrMalformedPayload
		return r.err
	}
	if n > len(r.buf)-r.off {
		r.err = io.ErrUnexpectedEOF
	}
	return r.err
}

func (r *reader) skip(n int) error {
	if err := r.ensure(n); err != nil {
		return err
	}
	r.off += n
	if r.limit >= 0 {
		r.limit -= n
	}
	return nil
}

// drain skips whatever is left of the current event region.
func (r *reader) drain() error {
	if r.limit < 0 {
		return r.skip(len(r.buf) - r.off)
	}
	return r.skip(r.limit)
}

func (r *reader) more() bool {
	return r.err == nil && len(r.buffer()) > 0
}

// int ---

func (r *reader) int1() byte {
	if err := r.ensure(1); err != nil {
		return 0
	}
	v := r.buffer()[0]
	r.skip(1)
	return v
}

func (r *reader) int2() uint16 {
	if err := r.ensure(2); err != nil {
		return 0
	}
	buf := r.buffer()
	v := uint16(buf[0]) | uint16(buf[1])<<8
	r.skip(2)
	return v
}

func (r *reader) int4() uint32 {
	if err := r.ensure(4); err != nil {
		return 0
	}
	buf := r.buffer()
	v := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	r.skip(4)
	return v
}

func (r *reader) int8() uint64 {
	if err := r.ensure(8); err != nil {
		return 0
	}
	buf := r.buffer()
	v := uint64(buf[0]) | uint64(buf[1])<<8 | uint64(buf[2])<<16 | uint64(buf[3])<<24 |
		uint64(buf[4])<<32 | uint64(buf[5])<<40 | uint64(buf[6])<<48 | uint64(buf[7])<<56
	r.skip(8)
	return v
}

// bytes, strings ---

// bytesInternal returns a slice aliasing the packet buffer.
func (r *reader) bytesInternal(n int) []byte {
	if n < 0 {
		if r.err == nil {
			r.err = ErrMalformedPayload
		}
		return nil
	}
	if err := r.ensure(n); err != nil {
		return nil
	}
	v := r.buffer()[:n]
	r.skip(n)
	return v
}

func (r *reader) bytes(n int) []byte {
	v := r.bytesInternal(n)
	if v == nil {
		return nil
	}
	return append([]byte(nil), v...)
}

func (r *reader) string(n int) string {
	return string(r.bytesInternal(n))
}

func (r *reader) stringEOF() string {
	return r.string(len(r.buffer()))
}
