package kvstore

import "github.com/kvrowdb/joinengine/kv"

// StaticRowType is a kv.RowType built directly from a caller-supplied
// column list, for collaborators (the CLI front door, tests) that declare
// a table's schema up front instead of deriving it from another source.
type StaticRowType struct {
	name    string
	columns []kv.ColumnInfo
	byName  map[string]int
	keys    []string
	alt     [][]string
}

// NewStaticRowType builds a StaticRowType named name over columns, in
// declaration order. Columns with KeyRole == kv.PrimaryKeyColumn become
// KeyColumns(), in the order they appear.
func NewStaticRowType(name string, columns []kv.ColumnInfo) *StaticRowType {
	rt := &StaticRowType{name: name, columns: columns, byName: make(map[string]int, len(columns))}
	for i, c := range columns {
		rt.byName[c.Name] = i
		if c.KeyRole == kv.PrimaryKeyColumn {
			rt.keys = append(rt.keys, c.Name)
		}
	}
	return rt
}

func (rt *StaticRowType) Name() string               { return rt.name }
func (rt *StaticRowType) Columns() []kv.ColumnInfo    { return rt.columns }
func (rt *StaticRowType) KeyColumns() []string        { return rt.keys }
func (rt *StaticRowType) AlternateKeys() [][]string   { return rt.alt }

func (rt *StaticRowType) Column(name string) (kv.ColumnInfo, bool) {
	i, ok := rt.byName[name]
	if !ok {
		return kv.ColumnInfo{}, false
	}
	return rt.columns[i], true
}
