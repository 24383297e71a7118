package binlog

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/juju/errors"
)

// Scanner yields the events of a binlog one packet at a time.
// Next returns io.EOF when there are no more events.
type Scanner interface {
	Next() (*Packet, error)
}

var fileHeader = []byte{0xfe, 'b', 'i', 'n'}

// FileScanner reads the events of a binary log file.
//
// The checksum length is taken from the format description event at the
// start of the file; events are checksum-verified from then on.
type FileScanner struct {
	rd       *bufio.Reader
	closer   io.Closer
	checksum int
}

// OpenFile opens a binary log file and checks its magic number.
func OpenFile(name string) (*FileScanner, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	s, err := NewFileScanner(f)
	if err != nil {
		_ = f.Close()
		return nil, errors.Annotatef(err, "binlog.OpenFile %s", name)
	}
	s.closer = f
	return s, nil
}

// NewFileScanner reads binary log file contents from rd.
func NewFileScanner(rd io.Reader) (*FileScanner, error) {
	s := &FileScanner{rd: bufio.NewReader(rd)}
	header := make([]byte, len(fileHeader))
	if _, err := io.ReadFull(s.rd, header); err != nil {
		return nil, errors.Trace(err)
	}
	if !bytes.Equal(header, fileHeader) {
		return nil, errors.Annotate(ErrMalformedPacket, "invalid file header")
	}
	return s, nil
}

func (s *FileScanner) Next() (*Packet, error) {
	h := make([]byte, eventHeaderLen)
	if _, err := io.ReadFull(s.rd, h); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Trace(err)
	}
	hr := newReader(h)
	var header EventHeader
	if err := header.parse(hr); err != nil {
		return nil, errors.Trace(err)
	}
	if header.EventSize < eventHeaderLen {
		return nil, errors.Annotatef(ErrMalformedPacket, "event size %d smaller than its header", header.EventSize)
	}
	// the declared size is untrusted: grow the buffer as bytes arrive
	var buf bytes.Buffer
	buf.Write(h)
	if _, err := io.CopyN(&buf, s.rd, int64(header.EventSize)-eventHeaderLen); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.Trace(err)
	}
	event := buf.Bytes()
	var err error
	if s.checksum, err = frame(event, header.EventType, s.checksum); err != nil {
		return nil, err
	}
	return openPacket(newReader(event), s.checksum)
}

func (s *FileScanner) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// StreamScanner reads events sent by a server in response to
// COM_BINLOG_DUMP: each event is one protocol packet prefixed by an
// OK byte. The connection itself is owned by the caller.
//
// The server sends an artificial rotate event before the format
// description event, so whether events carry a checksum must be known
// up front; it is the value negotiated through @master_binlog_checksum.
//
// https://dev.mysql.com/doc/internals/en/binlog-network-stream.html
type StreamScanner struct {
	pr       packetReader
	seq      uint8
	checksum int
}

func NewStreamScanner(rd io.Reader, checksum bool) *StreamScanner {
	s := &StreamScanner{}
	if checksum {
		s.checksum = checksumLen
	}
	s.pr = packetReader{rd: rd, seq: &s.seq}
	return s
}

func (s *StreamScanner) Next() (*Packet, error) {
	s.pr.reset()
	data, err := io.ReadAll(&s.pr)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if len(data) == 0 {
		return nil, io.EOF
	}
	r := newReader(data)
	switch data[0] {
	case okMarker:
		r.skip(1)
	case errMarker:
		se := &ServerError{}
		if err := se.parse(r); err != nil {
			return nil, errors.Trace(err)
		}
		return nil, se
	case eofMarker:
		if len(data) < 9 {
			return nil, io.EOF
		}
		fallthrough
	default:
		return nil, errors.Annotatef(ErrMalformedPacket, "unexpected marker %#x", data[0])
	}
	event := data[1:]
	if len(event) < eventHeaderLen {
		return nil, errors.Annotate(ErrMalformedPacket, "short common header")
	}
	typ := EventType(event[4])
	if s.checksum, err = frame(event, typ, s.checksum); err != nil {
		return nil, err
	}
	return openPacket(r, s.checksum)
}

// frame returns the checksum length in effect for event and verifies
// the checksum when there is one.
func frame(event []byte, typ EventType, checksum int) (int, error) {
	if typ == FORMAT_DESCRIPTION_EVENT {
		checksum = detectChecksum(event)
	}
	if checksum == 0 {
		return 0, nil
	}
	size := binary.LittleEndian.Uint32(event[9:13]) // EventHeader.EventSize
	if size < eventHeaderLen+checksumLen {
		return checksum, errors.Annotatef(ErrMalformedPacket, "event size %d leaves no room for checksum", size)
	}
	if err := verifyChecksum(event, size); err != nil {
		return checksum, errors.Trace(err)
	}
	return checksum, nil
}
