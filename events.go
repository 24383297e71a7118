package binlog

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/juju/errors"
)

// https://dev.mysql.com/doc/internals/en/binlog-event-type.html
// https://dev.mysql.com/doc/internals/en/event-meanings.html

type EventType uint8

const (
	UNKNOWN_EVENT            EventType = 0x00
	START_EVENT_V3           EventType = 0x01
	QUERY_EVENT              EventType = 0x02
	STOP_EVENT               EventType = 0x03
	ROTATE_EVENT             EventType = 0x04
	INTVAR_EVENT             EventType = 0x05
	LOAD_EVENT               EventType = 0x06
	SLAVE_EVENT              EventType = 0x07
	CREATE_FILE_EVENT        EventType = 0x08
	APPEND_BLOCK_EVENT       EventType = 0x09
	EXEC_LOAD_EVENT          EventType = 0x0a
	DELETE_FILE_EVENT        EventType = 0x0b
	NEW_LOAD_EVENT           EventType = 0x0c
	RAND_EVENT               EventType = 0x0d
	USER_VAR_EVENT           EventType = 0x0e
	FORMAT_DESCRIPTION_EVENT EventType = 0x0f
	XID_EVENT                EventType = 0x10
	BEGIN_LOAD_QUERY_EVENT   EventType = 0x11
	EXECUTE_LOAD_QUERY_EVENT EventType = 0x12
	TABLE_MAP_EVENT          EventType = 0x13
	WRITE_ROWS_EVENTv0       EventType = 0x14
	UPDATE_ROWS_EVENTv0      EventType = 0x15
	DELETE_ROWS_EVENTv0      EventType = 0x16
	WRITE_ROWS_EVENTv1       EventType = 0x17
	UPDATE_ROWS_EVENTv1      EventType = 0x18
	DELETE_ROWS_EVENTv1      EventType = 0x19
	INCIDENT_EVENT           EventType = 0x1a
	HEARTBEAT_EVENT          EventType = 0x1b
	IGNORABLE_EVENT          EventType = 0x1c
	ROWS_QUERY_EVENT         EventType = 0x1d
	WRITE_ROWS_EVENTv2       EventType = 0x1e
	UPDATE_ROWS_EVENTv2      EventType = 0x1f
	DELETE_ROWS_EVENTv2      EventType = 0x20
	GTID_EVENT               EventType = 0x21
	ANONYMOUS_GTID_EVENT     EventType = 0x22
	PREVIOUS_GTIDS_EVENT     EventType = 0x23
)

var eventTypeNames = map[EventType]string{
	UNKNOWN_EVENT:            "unknown",
	START_EVENT_V3:           "startV3",
	QUERY_EVENT:              "query",
	STOP_EVENT:               "stop",
	ROTATE_EVENT:             "rotate",
	INTVAR_EVENT:             "intVar",
	LOAD_EVENT:               "load",
	SLAVE_EVENT:              "slave",
	CREATE_FILE_EVENT:        "createFile",
	APPEND_BLOCK_EVENT:       "appendBlock",
	EXEC_LOAD_EVENT:          "execLoad",
	DELETE_FILE_EVENT:        "deleteFile",
	NEW_LOAD_EVENT:           "newLoad",
	RAND_EVENT:               "rand",
	USER_VAR_EVENT:           "userVar",
	FORMAT_DESCRIPTION_EVENT: "formatDescription",
	XID_EVENT:                "xid",
	BEGIN_LOAD_QUERY_EVENT:   "beginLoadQuery",
	EXECUTE_LOAD_QUERY_EVENT: "executeLoadQuery",
	TABLE_MAP_EVENT:          "tableMap",
	WRITE_ROWS_EVENTv0:       "writeRowsV0",
	UPDATE_ROWS_EVENTv0:      "updateRowsV0",
	DELETE_ROWS_EVENTv0:      "deleteRowsV0",
	WRITE_ROWS_EVENTv1:       "writeRowsV1",
	UPDATE_ROWS_EVENTv1:      "updateRowsV1",
	DELETE_ROWS_EVENTv1:      "deleteRowsV1",
	INCIDENT_EVENT:           "incident",
	HEARTBEAT_EVENT:          "heartbeat",
	IGNORABLE_EVENT:          "ignorable",
	ROWS_QUERY_EVENT:         "rowsQuery",
	WRITE_ROWS_EVENTv2:       "writeRowsV2",
	UPDATE_ROWS_EVENTv2:      "updateRowsV2",
	DELETE_ROWS_EVENTv2:      "deleteRowsV2",
	GTID_EVENT:               "gtid",
	ANONYMOUS_GTID_EVENT:     "anonymousGTID",
	PREVIOUS_GTIDS_EVENT:     "previousGTID",
}

func (t EventType) String() string {
	if s, ok := eventTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("0x%02x", uint8(t))
}

// Event is one decoded binlog event. The concrete type is one of
// *GtidEvent, *RotateEvent, *FormatDescriptionEvent, *StopEvent, *XidEvent,
// *QueryEvent or *NotImplementedEvent.
type Event interface {
	// Header returns the common fields every event carries.
	Header() Envelope

	// Class names the event kind, as reported under "class" by Dump.
	Class() string

	// extra returns the fields this kind adds to the common ones.
	extra() Fields

	setReadBytes(n uint32)
}

// GtidEvent marks the start of a transaction and carries its
// global transaction identifier.
//
// https://dev.mysql.com/doc/refman/5.6/en/replication-gtids-concepts.html
type GtidEvent struct {
	Envelope
	CommitFlag bool
	SID        [16]byte
	GNO        uint64
}

const gtidPayloadLen = 1 + 16 + 8

func (e *GtidEvent) parse(r *reader) error {
	e.CommitFlag = r.int1() == 1
	copy(e.SID[:], r.bytesInternal(len(e.SID)))
	e.GNO = r.int8()
	return r.err
}

// GTID formats the identifier as source_id:transaction_id,
// for example 3e11fa47-71ca-11e1-9e33-c80aa9429562:23.
func (e GtidEvent) GTID() string {
	return uuid.UUID(e.SID).String() + ":" + strconv.FormatUint(e.GNO, 10)
}

func (e GtidEvent) String() string {
	return fmt.Sprintf("<GtidEvent %q>", e.GTID())
}

func (GtidEvent) Class() string { return "GtidEvent" }

func (e GtidEvent) extra() Fields {
	return Fields{
		{"commit_flag", e.CommitFlag},
		{"gtid", e.GTID()},
	}
}

// RotateEvent is written when mysqld switches to a new binary log file.
// This occurs when someone issues a FLUSH LOGS statement or
// the current binary log file becomes too large.
//
// https://dev.mysql.com/doc/internals/en/rotate-event.html
type RotateEvent struct {
	Envelope
	Position   uint64
	NextBinlog string
}

const rotatePostHeaderLen = 8

func (e *RotateEvent) parse(r *reader, eventSize uint32) error {
	e.Position = r.int8()
	e.NextBinlog = r.string(int(eventSize) - rotatePostHeaderLen)
	return r.err
}

func (RotateEvent) Class() string { return "RotateEvent" }

func (e RotateEvent) extra() Fields {
	return Fields{
		{"position", e.Position},
		{"next_binlog", e.NextBinlog},
	}
}

// FormatDescriptionEvent is written to the beginning of each binary log file.
// Its payload is not interpreted.
//
// https://dev.mysql.com/doc/internals/en/format-description-event.html
type FormatDescriptionEvent struct {
	Envelope
}

func (FormatDescriptionEvent) Class() string { return "FormatDescriptionEvent" }
func (FormatDescriptionEvent) extra() Fields { return nil }

// StopEvent signals last event in the file.
//
// https://dev.mysql.com/doc/internals/en/stop-event.html
type StopEvent struct {
	Envelope
}

func (StopEvent) Class() string { return "StopEvent" }
func (StopEvent) extra() Fields { return nil }

// XidEvent is written on COMMIT of a transaction that touched
// transactional tables.
//
// https://dev.mysql.com/doc/internals/en/xid-event.html
type XidEvent struct {
	Envelope

	// Xid is the transaction id used for two-phase commit.
	Xid uint64
}

const xidPayloadLen = 8

// parse takes the schema filter options even though they are not applied
// to xid events yet.
func (e *XidEvent) parse(r *reader, _ Options) error {
	e.Xid = r.int8()
	return r.err
}

func (XidEvent) Class() string { return "XidEvent" }

func (e XidEvent) extra() Fields {
	return Fields{{"xid", e.Xid}}
}

// QueryEvent is written when an updating statement is done.
//
// https://dev.mysql.com/doc/internals/en/query-event.html
type QueryEvent struct {
	Envelope
	SlaveProxyID  uint32
	ExecutionTime uint32
	ErrorCode     uint16
	StatusVars    []byte
	Schema        []byte
	Query         string
}

const queryPostHeaderLen = 4 + 4 + 1 + 2 + 2

// parse takes the schema filter options even though they are not applied
// to query events yet.
func (e *QueryEvent) parse(r *reader, eventSize uint32, _ Options) error {
	e.SlaveProxyID = r.int4()
	e.ExecutionTime = r.int4()
	schemaLen := int(r.int1())
	e.ErrorCode = r.int2()
	statusVarsLen := int(r.int2())
	if r.err != nil {
		return r.err
	}
	queryLen := int(eventSize) - queryPostHeaderLen - statusVarsLen - schemaLen - 1
	if queryLen < 0 {
		return errors.Annotatef(ErrMalformedPayload,
			"status vars (%d) and schema (%d) exceed event size %d", statusVarsLen, schemaLen, eventSize)
	}
	e.StatusVars = r.bytes(statusVarsLen)
	e.Schema = r.bytes(schemaLen)
	r.skip(1) // 0x00
	query := r.bytesInternal(queryLen)
	if r.err != nil {
		return r.err
	}
	if !utf8.Valid(query) {
		return errors.Annotate(ErrInvalidText, "query")
	}
	e.Query = string(query)
	return nil
}

func (QueryEvent) Class() string { return "QueryEvent" }

func (e QueryEvent) extra() Fields {
	return Fields{
		{"schema", e.Schema},
		{"execution_time", e.ExecutionTime},
		{"query", e.Query},
	}
}

// NotImplementedEvent stands for every event whose payload is skipped
// without being interpreted, whether its type is known or not.
type NotImplementedEvent struct {
	Envelope
}

func (e *NotImplementedEvent) parse(r *reader) error {
	return r.drain()
}

func (NotImplementedEvent) Class() string { return "NotImplementedEvent" }
func (NotImplementedEvent) extra() Fields { return nil }
