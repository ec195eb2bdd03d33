package dtype

import (
	"strings"
)

// Type is an elementary data type of a block interface field.
type Type int

const (
	TYPE_NONE    = Type(0)  // -
	TYPE_BOOL    = Type(1)  // BOOL
	TYPE_BYTE    = Type(2)  // BYTE
	TYPE_CHAR    = Type(3)  // CHAR
	TYPE_WORD    = Type(4)  // WORD
	TYPE_INT     = Type(5)  // INT
	TYPE_S5TIME  = Type(6)  // S5TIME
	TYPE_DATE    = Type(7)  // DATE
	TYPE_DWORD   = Type(8)  // DWORD
	TYPE_DINT    = Type(9)  // DINT
	TYPE_REAL    = Type(10) // REAL
	TYPE_TIME    = Type(11) // TIME
	TYPE_TOD     = Type(12) // TIME_OF_DAY
	TYPE_POINTER = Type(13) // POINTER
)

var typeName = [...]string{
	TYPE_NONE:    "-",
	TYPE_BOOL:    "BOOL",
	TYPE_BYTE:    "BYTE",
	TYPE_CHAR:    "CHAR",
	TYPE_WORD:    "WORD",
	TYPE_INT:     "INT",
	TYPE_S5TIME:  "S5TIME",
	TYPE_DATE:    "DATE",
	TYPE_DWORD:   "DWORD",
	TYPE_DINT:    "DINT",
	TYPE_REAL:    "REAL",
	TYPE_TIME:    "TIME",
	TYPE_TOD:     "TIME_OF_DAY",
	TYPE_POINTER: "POINTER",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeName) {
		return "?"
	}
	return typeName[t]
}

// ParseType parses a type name, case insensitive. TOD is accepted as
// an alias for TIME_OF_DAY.
func ParseType(name string) (t Type, ok bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "TOD" {
		return TYPE_TOD, true
	}
	for n, str := range typeName {
		if n != int(TYPE_NONE) && str == name {
			return Type(n), true
		}
	}
	return
}

// Width returns the storage width of the type in bits.
func (t Type) Width() int {
	switch t {
	case TYPE_BOOL:
		return 1
	case TYPE_BYTE, TYPE_CHAR:
		return 8
	case TYPE_WORD, TYPE_INT, TYPE_S5TIME, TYPE_DATE:
		return 16
	case TYPE_DWORD, TYPE_DINT, TYPE_REAL, TYPE_TIME, TYPE_TOD:
		return 32
	case TYPE_POINTER:
		return 48
	}
	return 0
}

// Signed is true for the two's-complement integer types.
func (t Type) Signed() bool {
	return t == TYPE_INT || t == TYPE_DINT || t == TYPE_TIME
}

// Bytes returns the number of bytes the type occupies, rounding bits up.
func (t Type) Bytes() int {
	return (t.Width() + 7) / 8
}
