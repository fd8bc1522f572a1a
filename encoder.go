package eserial

import (
	"context"
	"io"
	"reflect"

	"eserial/internal/errs"
	"eserial/schema"
	"eserial/wire"
)

// encoder writes one graph. Objects are emitted in first-encounter order:
// the root is reserved first, and every reference to an unseen object
// reserves the next id and queues it. A reference only needs the id, so a
// cycle ends the moment it reaches an object that is already reserved.
type encoder struct {
	reg      *schema.Registry
	w        *wire.Writer
	table    *encodeTable
	typeDefs map[string]struct{}
	count    uint32
}

func newEncoder(reg *schema.Registry, w io.Writer) *encoder {
	return &encoder{
		reg:      reg,
		w:        wire.NewWriter(w),
		table:    newEncodeTable(),
		typeDefs: make(map[string]struct{}, 4),
	}
}

func (e *encoder) encode(ctx context.Context, root schema.Object) error {
	e.w.Header()
	if !isNilRef(root) {
		if _, err := e.ref(root); err != nil {
			return err
		}
	}
	for {
		p, ok := e.table.next()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.writeObject(p); err != nil {
			return err
		}
	}
	e.w.Tag(wire.TagEndOfStream)
	e.w.Uint32(e.count)
	return e.w.Flush()
}

// ref returns the id of obj, reserving one if obj has not been seen.
func (e *encoder) ref(obj schema.Object) (uint32, error) {
	// identity is tracked by map key, only pointers qualify
	if reflect.TypeOf(obj).Kind() != reflect.Pointer {
		return 0, &errs.UnsupportedTypeError{TypeID: obj.TypeID()}
	}
	if id, ok := e.table.lookup(obj); ok {
		return id, nil
	}
	desc, ok := e.reg.Lookup(obj.TypeID())
	if !ok {
		return 0, &errs.UnsupportedTypeError{TypeID: obj.TypeID()}
	}
	return e.table.reserve(obj, desc), nil
}

// isNilRef reports whether v is nil or a nil pointer held in an interface.
func isNilRef(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func (e *encoder) writeTypeDef(desc *schema.Descriptor) {
	e.w.Tag(wire.TagTypeDef)
	e.w.String(desc.TypeID)
	e.w.Uint32(desc.Version)
	e.w.Len(len(desc.Fields))
	for _, f := range desc.Fields {
		e.w.String(f.Name)
		e.w.String(f.Kind.String())
	}
	e.typeDefs[desc.TypeID] = struct{}{}
}

func (e *encoder) writeObject(p pending) error {
	desc := p.desc
	if _, ok := e.typeDefs[desc.TypeID]; !ok {
		e.writeTypeDef(desc)
	}
	e.w.Tag(wire.TagObject)
	e.w.Uint32(p.id)
	e.w.String(desc.TypeID)
	e.w.Uint32(desc.Version)
	for _, f := range desc.Fields {
		if err := e.writeValue(desc, f, f.Kind, f.Get(p.obj)); err != nil {
			return err
		}
	}
	e.count++
	return e.w.Err()
}

func (e *encoder) writeValue(desc *schema.Descriptor, f schema.Field, kind schema.Kind, v any) error {
	switch kind.Class {
	case schema.ClassPrimitive:
		if !e.w.Primitive(kind.Primitive, v) {
			return e.mismatch(desc, f, kind, v)
		}
	case schema.ClassReference:
		if isNilRef(v) {
			e.w.Tag(wire.TagNull)
			break
		}
		obj, ok := v.(schema.Object)
		if !ok {
			return e.mismatch(desc, f, kind, v)
		}
		id, err := e.ref(obj)
		if err != nil {
			return err
		}
		e.w.Reference(id, obj.TypeID())
	case schema.ClassArray, schema.ClassSequence:
		if v == nil {
			e.w.Tag(wire.TagNull)
			break
		}
		vs, ok := v.([]any)
		if !ok {
			return e.mismatch(desc, f, kind, v)
		}
		if vs == nil {
			e.w.Tag(wire.TagNull)
			break
		}
		e.w.Tag(wire.TagSequenceStart)
		e.w.Len(len(vs))
		for _, x := range vs {
			if err := e.writeValue(desc, f, *kind.Elem, x); err != nil {
				return err
			}
		}
		e.w.Tag(wire.TagSequenceEnd)
	}
	return e.w.Err()
}

func (e *encoder) mismatch(desc *schema.Descriptor, f schema.Field, kind schema.Kind, v any) error {
	return &errs.FieldValueError{TypeID: desc.TypeID, Field: f.Name, Want: kind.String(), Got: v}
}
