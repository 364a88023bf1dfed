package kv

// KeyRole classifies a column's participation in a table's keys.
type KeyRole int

const (
	NoKey KeyRole = iota
	PrimaryKeyColumn
	AlternateKeyColumn
)

// ColumnInfo describes one column of a row type: its name, declared value
// type, nullability, and (for columns that are themselves nested rows) the
// dotted-path prefix/tail used to resolve "source.column.subcolumn" paths.
type ColumnInfo struct {
	Name     string
	Type     ValueType
	Nullable bool
	// Prefix, when non-empty, names the nested row type this column
	// projects into; Tail names the remaining dotted path inside it. Both
	// are empty for a leaf scalar column.
	Prefix  string
	Tail    string
	KeyRole KeyRole
}

// RowType is the per-table metadata external collaborator (§6): an ordered
// column list plus key information used by the filter scorer and key
// matcher.
type RowType interface {
	// Name identifies the row type, e.g. for error messages and TypeMismatch
	// checks.
	Name() string

	// Columns returns the declared columns in declaration order. Callers
	// must not mutate the returned slice.
	Columns() []ColumnInfo

	// Column looks up a single column by name.
	Column(name string) (ColumnInfo, bool)

	// KeyColumns returns the primary key's column names, in key order. Nil
	// if the row type has no primary key.
	KeyColumns() []string

	// AlternateKeys returns zero or more alternate key column-name sets.
	AlternateKeys() [][]string
}

// ValueType is a minimal closed set of primitive value kinds sufficient for
// the predicate evaluator's numeric-promotion and comparison rules (§4.E).
// Nested row-valued columns use TypeRow together with ColumnInfo.Prefix.
type ValueType int

const (
	TypeUnknown ValueType = iota
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeFloat32
	TypeFloat64
	TypeString
	TypeBool
	TypeBytes
	TypeRow
)

func (t ValueType) String() string {
	switch t {
	case TypeInt8:
		return "int8"
	case TypeInt16:
		return "int16"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeUint8:
		return "uint8"
	case TypeUint16:
		return "uint16"
	case TypeUint32:
		return "uint32"
	case TypeUint64:
		return "uint64"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeBytes:
		return "bytes"
	case TypeRow:
		return "row"
	default:
		return "unknown"
	}
}

// IsSignedInt reports whether t is one of the signed integer kinds.
func (t ValueType) IsSignedInt() bool {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		return true
	}
	return false
}

// IsUnsignedInt reports whether t is one of the unsigned integer kinds.
func (t ValueType) IsUnsignedInt() bool {
	switch t {
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		return true
	}
	return false
}

// IsFloat reports whether t is a floating-point kind.
func (t ValueType) IsFloat() bool {
	return t == TypeFloat32 || t == TypeFloat64
}
