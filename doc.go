/*
Package binlog decodes mysql binlog events into typed values.

An event is read from a Packet, whose common header has already been
parsed, and decoded by a Decoder into one of GtidEvent, RotateEvent,
FormatDescriptionEvent, StopEvent, XidEvent, QueryEvent or
NotImplementedEvent:

	s, err := binlog.OpenFile("binlog.000002")
	if err != nil {
		return err
	}
	defer s.Close()
	d := binlog.NewDecoder(binlog.Tables{}, binlog.Options{})
	for {
		p, err := s.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		e, err := d.Decode(p, p.EventSize())
		if err != nil {
			return err
		}
		if qe, ok := e.(*binlog.QueryEvent); ok {
			fmt.Println(string(qe.Schema), qe.Query)
		}
	}

Dump flattens an event into ordered Fields, which marshal to JSON.

Events received from a server in response to COM_BINLOG_DUMP can be
read with NewStreamScanner. Establishing that connection is left to the
caller.

for example usage see cmd/binlog/main.go
*/
package binlog
