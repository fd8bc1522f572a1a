// Package wire defines the byte layout of a graph stream.
//
// A stream is a header followed by records:
//
//	MAGIC [4]byte | FORMAT_VERSION u32
//	TYPE_DEF typeId:string version:u32 count:u32 {name:string kind:string}...
//	OBJECT   objectId:u32 typeId:string version:u32 value...
//	END_OF_STREAM objects:u32
//
// Values are tagged:
//
//	PRIMITIVE code:u8 payload
//	NULL
//	REFERENCE objectId:u32 typeId:string
//	SEQUENCE_START count:u32 value... SEQUENCE_END
//
// Integers are big-endian. Strings and byte blobs are prefixed with a u32 length.
package wire

import "fmt"

const (
	Magic                = "EGRF"
	FormatVersion uint32 = 1
)

// Tag is the one-byte record or value marker.
type Tag byte

const (
	TagTypeDef       Tag = 0x01
	TagObject        Tag = 0x02
	TagReference     Tag = 0x03
	TagPrimitive     Tag = 0x04
	TagNull          Tag = 0x05
	TagSequenceStart Tag = 0x06
	TagSequenceEnd   Tag = 0x07
	TagEndOfStream   Tag = 0x08
)

func (t Tag) String() string {
	switch t {
	case TagTypeDef:
		return "TYPE_DEF"
	case TagObject:
		return "OBJECT"
	case TagReference:
		return "REFERENCE"
	case TagPrimitive:
		return "PRIMITIVE"
	case TagNull:
		return "NULL"
	case TagSequenceStart:
		return "SEQUENCE_START"
	case TagSequenceEnd:
		return "SEQUENCE_END"
	case TagEndOfStream:
		return "END_OF_STREAM"
	}
	return fmt.Sprintf("TAG(0x%02x)", byte(t))
}

// Primitive identifies the payload layout of a PRIMITIVE value.
type Primitive byte

const (
	Bool Primitive = iota + 1
	Int32
	Int64
	Uint32
	Uint64
	Float32
	Float64
	String
	Bytes
	// Time is i64 unix seconds followed by u32 nanoseconds, always UTC.
	Time
)

func (p Primitive) Valid() bool {
	return p >= Bool && p <= Time
}

func (p Primitive) String() string {
	switch p {
	case Bool:
		return "bool"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case String:
		return "string"
	case Bytes:
		return "bytes"
	case Time:
		return "time"
	}
	return fmt.Sprintf("primitive(%d)", byte(p))
}
