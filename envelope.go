package binlog

// https://dev.mysql.com/doc/internals/en/binlog-event-header.html
// https://dev.mysql.com/doc/internals/en/event-header-fields.html

const eventHeaderLen = 19

// EventHeader is the v4 common header that precedes every event.
// EventSize covers the header, the payload and the checksum, if any.
type EventHeader struct {
	Timestamp uint32
	EventType EventType
	ServerID  uint32
	EventSize uint32
	LogPos    uint32
	Flags     uint16
}

func (h *EventHeader) parse(r *reader) error {
	h.Timestamp = r.int4()
	h.EventType = EventType(r.int1())
	h.ServerID = r.int4()
	h.EventSize = r.int4()
	h.LogPos = r.int4()
	h.Flags = r.int2()
	return r.err
}

// Envelope holds the fields shared by all decoded events.
//
// EventSize is the payload length the event was decoded with, excluding
// the common header and the checksum. ReadBytes is the number of bytes
// consumed from the packet once the event was decoded.
type Envelope struct {
	EventType EventType
	Timestamp uint32
	EventSize uint32
	LogPos    uint64
	Flags     uint16
	ReadBytes uint32
}

// newEnvelope records the header values already parsed from p.
func newEnvelope(p *Packet, eventSize uint32) Envelope {
	return Envelope{
		EventType: p.Header.EventType,
		Timestamp: p.Header.Timestamp,
		EventSize: eventSize,
		LogPos:    uint64(p.Header.LogPos),
		Flags:     p.Header.Flags,
		ReadBytes: uint32(p.ReadBytes()),
	}
}

func (e Envelope) Header() Envelope {
	return e
}

func (e *Envelope) setReadBytes(n uint32) {
	e.ReadBytes = n
}

func (e Envelope) fields(class string) Fields {
	return Fields{
		{"class", class},
		{"timestamp", e.Timestamp},
		{"log_pos", e.LogPos},
		{"event_size", e.EventSize},
		{"read_bytes", e.ReadBytes},
		{"flags", e.Flags},
	}
}
