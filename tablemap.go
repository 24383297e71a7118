package binlog

// Table describes a table announced by a TABLE_MAP_EVENT.
type Table struct {
	ID          uint64 // 6 bytes on the wire
	SchemaName  string
	TableName   string
	ColumnTypes []byte
}

// TableMap resolves table ids to their definition. Decoders only read it.
type TableMap interface {
	Table(id uint64) (*Table, bool)
}

// Tables is a TableMap backed by a map.
type Tables map[uint64]*Table

func (t Tables) Table(id uint64) (*Table, bool) {
	tbl, ok := t[id]
	return tbl, ok
}
