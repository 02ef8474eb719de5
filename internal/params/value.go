package params

import (
	"fmt"
	"strconv"
	"strings"
)

// BackendKey is the placeholder whose values are always parsed as a Backend.
const BackendKey = "backend"

// Placeholders bound for every shard of a chunked job.
const (
	ChunkIndexKey = "chunk_index"
	ChunkLabelKey = "chunk_label"
	ChunkCountKey = "chunk_count"
)

// Backend identifies a database a test suite runs against.
type Backend string

const (
	BackendMariaDB10  Backend = "mariadb10"
	BackendPostgres10 Backend = "postgres10"
	BackendMSSQL      Backend = "mssql2017cu9"
	BackendSQLite     Backend = "sqlite"
)

var backendAliases = map[string]Backend{
	"mariadb10":    BackendMariaDB10,
	"mariadb":      BackendMariaDB10,
	"mysql":        BackendMariaDB10,
	"postgres10":   BackendPostgres10,
	"postgres":     BackendPostgres10,
	"postgresql":   BackendPostgres10,
	"pgsql":        BackendPostgres10,
	"mssql2017cu9": BackendMSSQL,
	"mssql":        BackendMSSQL,
	"sqlsrv":       BackendMSSQL,
	"sqlite":       BackendSQLite,
}

// Backends returns every known backend in a stable order.
func Backends() []Backend {
	return []Backend{BackendMariaDB10, BackendPostgres10, BackendMSSQL, BackendSQLite}
}

// ParseBackend accepts a backend identifier or one of its family aliases.
func ParseBackend(s string) (Backend, error) {
	if b, ok := backendAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return b, nil
	}
	return "", fmt.Errorf("unknown database backend %q", s)
}

// Valid reports whether b is one of the enumerated backends.
func (b Backend) Valid() bool {
	switch b {
	case BackendMariaDB10, BackendPostgres10, BackendMSSQL, BackendSQLite:
		return true
	}
	return false
}

// Family returns the driver family: mysql, pgsql, mssql or sqlite.
func (b Backend) Family() string {
	switch b {
	case BackendMariaDB10:
		return "mysql"
	case BackendPostgres10:
		return "pgsql"
	case BackendMSSQL:
		return "mssql"
	case BackendSQLite:
		return "sqlite"
	}
	return ""
}

// Code returns the two letter abbreviation used inside job keys.
func (b Backend) Code() string {
	switch b {
	case BackendMariaDB10:
		return "MY"
	case BackendPostgres10:
		return "PG"
	case BackendMSSQL:
		return "MS"
	case BackendSQLite:
		return "SL"
	}
	return ""
}

// Kind is the type of a bound placeholder value.
type Kind int

const (
	KindString Kind = iota + 1
	KindInt
	KindBackend
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBackend:
		return "backend"
	}
	return "invalid"
}

// Value is a single bound placeholder. The zero Value is invalid.
type Value struct {
	kind    Kind
	str     string
	num     int
	backend Backend
}

// String binds a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int binds an integer value.
func Int(i int) Value { return Value{kind: KindInt, num: i} }

// BackendValue binds a backend identifier.
func BackendValue(b Backend) Value { return Value{kind: KindBackend, backend: b} }

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v was created by one of the constructors.
func (v Value) IsValid() bool { return v.kind != 0 }

// String returns the textual form templates interpolate.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return strconv.Itoa(v.num)
	case KindBackend:
		return string(v.backend)
	}
	return ""
}

// AsInt returns the integer value when v is an int.
func (v Value) AsInt() (int, bool) {
	return v.num, v.kind == KindInt
}

// AsBackend returns the backend when v is a backend.
func (v Value) AsBackend() (Backend, bool) {
	return v.backend, v.kind == KindBackend
}

// Parse builds a Value for name from its textual form. The backend
// placeholder is parsed as a Backend; everything else stays a string.
func Parse(name, raw string) (Value, error) {
	if name == BackendKey {
		b, err := ParseBackend(raw)
		if err != nil {
			return Value{}, err
		}
		return BackendValue(b), nil
	}
	return String(raw), nil
}

// FromAny converts a decoded YAML/JSON scalar into a Value.
func FromAny(name string, raw any) (Value, error) {
	switch v := raw.(type) {
	case string:
		return Parse(name, v)
	case int:
		return Int(v), nil
	case int64:
		return Int(int(v)), nil
	case float64:
		if v != float64(int(v)) {
			return Value{}, fmt.Errorf("parameter %q: %v is not a whole number", name, v)
		}
		return Int(int(v)), nil
	case bool:
		return String(strconv.FormatBool(v)), nil
	case Backend:
		return BackendValue(v), nil
	case Value:
		return v, nil
	}
	return Value{}, fmt.Errorf("parameter %q: unsupported value type %T", name, raw)
}
