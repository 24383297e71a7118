package binlog

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/juju/errors"
)

// ErrMalformedPacket is returned when a packet cannot be framed as a
// binlog event.
var ErrMalformedPacket = errors.New("malformed packet")

// ErrChecksumMismatch is returned when the CRC32 trailing an event does
// not match its contents.
var ErrChecksumMismatch = errors.New("binlog event checksum mismatch")

const (
	checksumAlgCRC32 = 0x01
	checksumLen      = 4
)

// Packet is a single binlog event whose common header has been parsed.
// The cursor is positioned at the start of the event payload.
//
// A Packet must not be shared between goroutines, nor decoded twice.
type Packet struct {
	Header EventHeader

	r        *reader
	checksum int
}

// NewPacket parses the common header of the event in data.
// data holds one event without checksum, starting at its common header.
func NewPacket(data []byte) (*Packet, error) {
	return openPacket(newReader(data), 0)
}

func openPacket(r *reader, checksum int) (*Packet, error) {
	p := &Packet{r: r, checksum: checksum}
	if err := p.Header.parse(r); err != nil {
		return nil, errors.Annotatef(ErrMalformedPacket, "common header: %v", err)
	}
	if p.Header.EventSize < uint32(eventHeaderLen+checksum) {
		return nil, errors.Annotatef(ErrMalformedPacket, "event size %d smaller than its header", p.Header.EventSize)
	}
	return p, nil
}

// EventSize returns the payload length declared by the common header,
// excluding the header itself and the checksum.
func (p *Packet) EventSize() uint32 {
	return p.Header.EventSize - eventHeaderLen - uint32(p.checksum)
}

// ReadBytes returns the number of bytes consumed from the packet so far.
func (p *Packet) ReadBytes() int {
	return p.r.off
}

// verifyChecksum checks the CRC32 stored after the event that starts at
// event[0].
func verifyChecksum(event []byte, size uint32) error {
	if uint32(len(event)) < size {
		return errors.Annotatef(ErrMalformedPacket, "event size %d exceeds packet length %d", size, len(event))
	}
	body, sum := event[:size-checksumLen], event[size-checksumLen:size]
	if crc32.ChecksumIEEE(body) != binary.LittleEndian.Uint32(sum) {
		return ErrChecksumMismatch
	}
	return nil
}

// detectChecksum reports the checksum length announced by the
// format description event starting at event[0].
//
// https://dev.mysql.com/doc/internals/en/format-description-event.html
func detectChecksum(event []byte) int {
	const off = eventHeaderLen + 2 + 50 + 4 + 1 // binlog version, server version, create timestamp, header length
	lengths := event
	if len(lengths) < off+int(FORMAT_DESCRIPTION_EVENT) {
		return 0
	}
	lengths = lengths[off:]
	fdeLen := int(lengths[FORMAT_DESCRIPTION_EVENT-1])
	alg := eventHeaderLen + fdeLen
	if alg >= len(event) || event[alg] != checksumAlgCRC32 {
		return 0
	}
	return checksumLen
}
