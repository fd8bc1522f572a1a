package schema

import "eserial/wire"

// Class is the shape of a field value.
type Class uint8

const (
	ClassPrimitive Class = iota + 1
	ClassReference
	ClassArray
	ClassSequence
)

type Primitive = wire.Primitive

const (
	Bool    = wire.Bool
	Int32   = wire.Int32
	Int64   = wire.Int64
	Uint32  = wire.Uint32
	Uint64  = wire.Uint64
	Float32 = wire.Float32
	Float64 = wire.Float64
	String  = wire.String
	Bytes   = wire.Bytes
	Time    = wire.Time
)

// Kind describes the value a field holds.
//
// Primitive values are the Go types named by their code (bool, int32, ...,
// []byte, time.Time). Reference values are an Object or nil. Array and
// Sequence values are []any whose elements follow Elem; a nil slice is
// encoded as NULL.
type Kind struct {
	Class     Class
	Primitive Primitive
	Elem      *Kind
	// Target names the declared type of a reference. It is documentation
	// only: the runtime type id of the referenced object is what gets written,
	// so a field may hold any registered variant.
	Target string
}

func Prim(p Primitive) Kind {
	return Kind{Class: ClassPrimitive, Primitive: p}
}

func Ref(target string) Kind {
	return Kind{Class: ClassReference, Target: target}
}

// ArrayOf is a fixed-length collection such as [N]T or a slice that is only
// ever replaced wholesale.
func ArrayOf(elem Kind) Kind {
	return Kind{Class: ClassArray, Elem: &elem}
}

// SequenceOf is a growable list.
func SequenceOf(elem Kind) Kind {
	return Kind{Class: ClassSequence, Elem: &elem}
}

// Equal compares two kinds structurally, ignoring reference targets.
func (k Kind) Equal(o Kind) bool {
	return k.String() == o.String()
}

// String is also the signature written into TYPE_DEF records.
func (k Kind) String() string {
	switch k.Class {
	case ClassPrimitive:
		return k.Primitive.String()
	case ClassReference:
		return "ref"
	case ClassArray:
		return "array<" + k.elem() + ">"
	case ClassSequence:
		return "sequence<" + k.elem() + ">"
	}
	return "invalid"
}

func (k Kind) elem() string {
	if k.Elem == nil {
		return "invalid"
	}
	return k.Elem.String()
}

func (k Kind) valid() bool {
	switch k.Class {
	case ClassPrimitive:
		return k.Primitive.Valid()
	case ClassReference:
		return true
	case ClassArray, ClassSequence:
		return k.Elem != nil && k.Elem.valid()
	}
	return false
}
