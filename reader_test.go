package binlog

import (
	"bytes"
	"io"
	"testing"
)

func TestReader_ints(t *testing.T) {
	r := newReader([]byte{
		0x01,
		0x02, 0x01,
		0x04, 0x03, 0x02, 0x01,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
	})
	if got := r.int1(); got != 0x01 {
		t.Fatalf("int1: got %#x", got)
	}
	if got := r.int2(); got != 0x0102 {
		t.Fatalf("int2: got %#x", got)
	}
	if got := r.int4(); got != 0x01020304 {
		t.Fatalf("int4: got %#x", got)
	}
	if got := r.int8(); got != 0x0102030405060708 {
		t.Fatalf("int8: got %#x", got)
	}
	if r.err != nil {
		t.Fatal(r.err)
	}
	if r.off != 15 {
		t.Fatal("got", r.off, "want", 15)
	}
	if r.more() {
		t.Fatal("more: got true, want false")
	}
}

func TestReader_UnexpectedEOF(t *testing.T) {
	r := newReader([]byte{1, 2, 3})
	if got := r.int4(); got != 0 {
		t.Fatalf("int4: got %#x, want 0", got)
	}
	if r.err != io.ErrUnexpectedEOF {
		t.Fatal("got", r.err, "want", io.ErrUnexpectedEOF)
	}
	// errors are sticky
	if got := r.int1(); got != 0 || r.err != io.ErrUnexpectedEOF {
		t.Fatal("int1 after error: got", got, r.err)
	}
	if r.off != 0 {
		t.Fatal("offset moved after error:", r.off)
	}
}

func TestReader_limit(t *testing.T) {
	r := newReader([]byte("hello world"))
	r.limit = 5
	if s := r.string(5); s != "hello" {
		t.Fatal("got", s, "want", "hello")
	}
	if r.limit != 0 {
		t.Fatal("limit: got", r.limit, "want", 0)
	}
	r.int1()
	if r.err != ErrMalformedPayload {
		t.Fatal("got", r.err, "want", ErrMalformedPayload)
	}
}

func TestReader_drain(t *testing.T) {
	r := newReader([]byte("hello world"))
	r.limit = 8
	r.int2()
	if err := r.drain(); err != nil {
		t.Fatal(err)
	}
	if r.off != 8 {
		t.Fatal("got", r.off, "want", 8)
	}

	r = newReader([]byte("hello"))
	r.limit = 8
	if err := r.drain(); err != io.ErrUnexpectedEOF {
		t.Fatal("got", err, "want", io.ErrUnexpectedEOF)
	}
}

func TestReader_bytes(t *testing.T) {
	buf := []byte("abcdef")
	r := newReader(buf)
	b := r.bytes(3)
	buf[0] = 'x'
	if !bytes.Equal(b, []byte("abc")) {
		t.Fatal("bytes must copy, got", string(b))
	}
	if s := r.stringEOF(); s != "def" {
		t.Fatal("got", s, "want", "def")
	}
	if b := r.bytesInternal(-1); b != nil || r.err != ErrMalformedPayload {
		t.Fatal("negative length: got", b, r.err)
	}
}
