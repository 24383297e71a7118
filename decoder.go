package binlog

import (
	"fmt"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

var (
	// ErrMalformedPayload is returned when the lengths declared inside an
	// event do not fit in its payload.
	ErrMalformedPayload = errors.New("malformed event payload")

	// ErrInvalidText is returned when a field that must be text is not
	// valid UTF-8.
	ErrInvalidText = errors.New("invalid utf-8 text")
)

// DecodeError reports which event failed to decode and where.
type DecodeError struct {
	EventType EventType
	Offset    int // packet offset at which decoding stopped
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("binlog: decode %s event at offset %d: %v", e.EventType, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// minimum payload length of the event kinds with a fixed layout
var minEventSize = map[EventType]uint32{
	GTID_EVENT:   gtidPayloadLen,
	ROTATE_EVENT: rotatePostHeaderLen,
	XID_EVENT:    xidPayloadLen,
	QUERY_EVENT:  queryPostHeaderLen,
}

// Decoder turns packets into events.
//
// A Decoder holds no per-event state, so one value may be used by
// several goroutines as long as each Packet is decoded only once.
type Decoder struct {
	// Tables resolves table ids for row events. It is only read.
	Tables TableMap

	// Options carries the schema filters. They are accepted but not
	// applied by any event kind yet.
	Options Options

	// Log defaults to the logrus standard logger.
	Log logrus.FieldLogger
}

func NewDecoder(tables TableMap, opts Options) *Decoder {
	return &Decoder{Tables: tables, Options: opts}
}

func (d *Decoder) log() logrus.FieldLogger {
	if d.Log == nil {
		return logrus.StandardLogger()
	}
	return d.Log
}

// Decode decodes the payload of p, which must be eventSize bytes long.
//
// Exactly eventSize bytes are consumed from p on success, whether or not
// the event kind interprets all of them. Event types without a decoder
// yield a NotImplementedEvent.
func (d *Decoder) Decode(p *Packet, eventSize uint32) (Event, error) {
	typ := p.Header.EventType
	e, err := d.decode(p, eventSize)
	if err != nil {
		err = &DecodeError{EventType: typ, Offset: p.ReadBytes(), Err: errors.Trace(err)}
		d.log().WithFields(logrus.Fields{
			"event_type": typ,
			"event_size": eventSize,
		}).WithError(err).Debug("binlog event decode failed")
		return nil, err
	}
	d.log().WithFields(logrus.Fields{
		"class":   e.Class(),
		"log_pos": p.Header.LogPos,
	}).Trace("binlog event decoded")
	return e, nil
}

func (d *Decoder) decode(p *Packet, eventSize uint32) (Event, error) {
	typ := p.Header.EventType
	if n, ok := minEventSize[typ]; ok && eventSize < n {
		return nil, errors.Annotatef(ErrMalformedPayload, "event size %d below minimum %d", eventSize, n)
	}

	r := p.r
	r.limit = int(eventSize)
	defer func() { r.limit = -1 }()

	env := newEnvelope(p, eventSize)
	var e Event
	var err error
	switch typ {
	case GTID_EVENT:
		ge := &GtidEvent{Envelope: env}
		err = ge.parse(r)
		e = ge
	case ROTATE_EVENT:
		re := &RotateEvent{Envelope: env}
		err = re.parse(r, eventSize)
		e = re
	case FORMAT_DESCRIPTION_EVENT:
		e = &FormatDescriptionEvent{Envelope: env}
	case STOP_EVENT:
		e = &StopEvent{Envelope: env}
	case XID_EVENT:
		xe := &XidEvent{Envelope: env}
		err = xe.parse(r, d.Options)
		e = xe
	case QUERY_EVENT:
		qe := &QueryEvent{Envelope: env}
		err = qe.parse(r, eventSize, d.Options)
		e = qe
	default:
		if _, ok := eventTypeNames[typ]; !ok {
			d.log().WithFields(logrus.Fields{
				"event_type": typ,
				"event_size": eventSize,
			}).Info("unrecognized binlog event type")
		}
		ne := &NotImplementedEvent{Envelope: env}
		err = ne.parse(r)
		e = ne
	}
	if err != nil {
		return nil, err
	}
	// skip what the event did not interpret
	if err := r.drain(); err != nil {
		return nil, err
	}
	e.setReadBytes(uint32(p.ReadBytes()))
	return e, nil
}
