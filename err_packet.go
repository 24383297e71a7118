package binlog

import (
	"fmt"

	"github.com/juju/errors"
)

const (
	okMarker  = 0x00
	eofMarker = 0xfe
	errMarker = 0xff
)

// ServerError is an ERR_Packet sent by the server in place of an event.
//
// https://dev.mysql.com/doc/internals/en/packet-ERR_Packet.html
type ServerError struct {
	Code     uint16
	SQLState string
	Message  string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("binlog: server error %d (%s): %s", e.Code, e.SQLState, e.Message)
}

// parse assumes CLIENT_PROTOCOL_41, which every server that streams
// v4 binlog events negotiates.
func (e *ServerError) parse(r *reader) error {
	header := r.int1()
	if r.err != nil {
		return r.err
	}
	if header != errMarker {
		return errors.Errorf("ServerError.parse: got header %#x", header)
	}
	e.Code = r.int2()
	r.skip(1) // sql state marker
	e.SQLState = r.string(5)
	e.Message = r.stringEOF()
	return r.err
}
