package eserial

import (
	"context"
	"fmt"
	"io"

	"eserial/internal/errs"
	"eserial/schema"
	"eserial/wire"
)

// decoder rebuilds one graph. Every object is allocated and registered in
// the table before any of its fields are read, whether that happens at its
// OBJECT record or at an earlier REFERENCE to it. Back references and
// forward references therefore both land on the one instance that the
// OBJECT record eventually populates.
type decoder struct {
	reg      *schema.Registry
	r        *wire.Reader
	table    *decodeTable
	typeDefs map[string]*schema.Descriptor
	rootType string
}

func newDecoder(reg *schema.Registry, r io.Reader, maxObjects, maxLen uint32) *decoder {
	d := &decoder{
		reg:      reg,
		r:        wire.NewReader(r),
		table:    newDecodeTable(maxObjects),
		typeDefs: make(map[string]*schema.Descriptor, 4),
	}
	d.r.SetMaxLen(maxLen)
	return d
}

func (d *decoder) decode(ctx context.Context) (schema.Object, error) {
	d.r.Header()
	if err := d.r.Err(); err != nil {
		return nil, err
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tag := d.r.Tag()
		if err := d.r.Err(); err != nil {
			return nil, err
		}
		var err error
		switch tag {
		case wire.TagTypeDef:
			err = d.readTypeDef()
		case wire.TagObject:
			err = d.readObject()
		case wire.TagEndOfStream:
			return d.finish()
		default:
			d.r.Fail("unexpected %s between records", tag)
		}
		if err != nil {
			return nil, err
		}
		if err = d.r.Err(); err != nil {
			return nil, err
		}
	}
}

// descriptor resolves a type id against the local registry and applies the
// version gate.
func (d *decoder) descriptor(typeID string, version uint32) (*schema.Descriptor, error) {
	desc, ok := d.reg.Lookup(typeID)
	if !ok {
		return nil, &errs.UnsupportedTypeError{TypeID: typeID}
	}
	if desc.Version != version {
		return nil, &errs.VersionMismatchError{TypeID: typeID, StreamVersion: version, LocalVersion: desc.Version}
	}
	return desc, nil
}

func (d *decoder) readTypeDef() error {
	typeID := d.r.String()
	version := d.r.Uint32()
	n := d.r.Len()
	sig := make([][2]string, 0, capHint(n))
	for i := uint32(0); i < n && d.r.Err() == nil; i++ {
		name := d.r.String()
		kind := d.r.String()
		sig = append(sig, [2]string{name, kind})
	}
	if err := d.r.Err(); err != nil {
		return err
	}
	if _, ok := d.typeDefs[typeID]; ok {
		d.r.Fail("duplicate TYPE_DEF for %q", typeID)
		return nil
	}
	desc, err := d.descriptor(typeID, version)
	if err != nil {
		return err
	}
	local := desc.Signature()
	if len(local) != len(sig) {
		return &errs.SchemaMismatchError{
			TypeID: typeID,
			Reason: fmt.Sprintf("stream has %d fields, local has %d", len(sig), len(local)),
		}
	}
	for i := range sig {
		if sig[i] != local[i] {
			return &errs.SchemaMismatchError{
				TypeID: typeID,
				Reason: fmt.Sprintf("field %d is %s %s in stream, %s %s locally",
					i, sig[i][0], sig[i][1], local[i][0], local[i][1]),
			}
		}
	}
	d.typeDefs[typeID] = desc
	return nil
}

func (d *decoder) readObject() error {
	id := d.r.Uint32()
	typeID := d.r.String()
	version := d.r.Uint32()
	if err := d.r.Err(); err != nil {
		return err
	}
	desc, ok := d.typeDefs[typeID]
	if !ok || desc.Version != version {
		var err error
		if desc, err = d.descriptor(typeID, version); err != nil {
			return err
		}
	}

	s, ok := d.table.get(id)
	switch {
	case !ok:
		if s, ok = d.table.allocate(id, desc); !ok {
			d.r.Fail("object %d exceeds the object limit", id)
			return nil
		}
	case s.defined:
		d.r.Fail("object %d defined twice", id)
		return nil
	case s.typeID != typeID:
		d.r.Fail("object %d is %q but was referenced as %q", id, typeID, s.typeID)
		return nil
	}
	s.defined = true
	d.table.defined++
	if id == 0 {
		d.rootType = typeID
	}

	for _, f := range desc.Fields {
		v, err := d.readValue(f.Kind)
		if err != nil {
			return err
		}
		if err = d.r.Err(); err != nil {
			return err
		}
		if err = f.Set(s.obj, v); err != nil {
			return fmt.Errorf("eserial: set %s.%s: %w", typeID, f.Name, err)
		}
	}
	return nil
}

func (d *decoder) readValue(kind schema.Kind) (any, error) {
	tag := d.r.Tag()
	if d.r.Err() != nil {
		return nil, nil
	}
	switch tag {
	case wire.TagNull:
		if kind.Class == schema.ClassPrimitive {
			d.r.Fail("NULL for %s field", kind)
		}
		return nil, nil
	case wire.TagPrimitive:
		if kind.Class != schema.ClassPrimitive {
			d.r.Fail("PRIMITIVE for %s field", kind)
			return nil, nil
		}
		p, v := d.r.Primitive()
		if d.r.Err() == nil && p != kind.Primitive {
			d.r.Fail("%s value for %s field", p, kind)
		}
		return v, nil
	case wire.TagReference:
		if kind.Class != schema.ClassReference {
			d.r.Fail("REFERENCE for %s field", kind)
			return nil, nil
		}
		id := d.r.Uint32()
		typeID := d.r.String()
		if d.r.Err() != nil {
			return nil, nil
		}
		return d.resolve(id, typeID)
	case wire.TagSequenceStart:
		if kind.Class != schema.ClassArray && kind.Class != schema.ClassSequence {
			d.r.Fail("SEQUENCE_START for %s field", kind)
			return nil, nil
		}
		n := d.r.Len()
		vs := make([]any, 0, capHint(n))
		for i := uint32(0); i < n && d.r.Err() == nil; i++ {
			v, err := d.readValue(*kind.Elem)
			if err != nil {
				return nil, err
			}
			vs = append(vs, v)
		}
		if end := d.r.Tag(); d.r.Err() == nil && end != wire.TagSequenceEnd {
			d.r.Fail("expected SEQUENCE_END, got %s", end)
		}
		return vs, nil
	}
	d.r.Fail("unexpected %s in a value position", tag)
	return nil, nil
}

// resolve returns the instance registered under id, allocating a
// placeholder when the reference arrives before the OBJECT record.
func (d *decoder) resolve(id uint32, typeID string) (any, error) {
	if s, ok := d.table.get(id); ok {
		if s.typeID != typeID {
			d.r.Fail("reference to object %d as %q, registered as %q", id, typeID, s.typeID)
			return nil, nil
		}
		return s.obj, nil
	}
	desc, ok := d.reg.Lookup(typeID)
	if !ok {
		return nil, &errs.UnsupportedTypeError{TypeID: typeID}
	}
	s, ok := d.table.allocate(id, desc)
	if !ok {
		d.r.Fail("object %d exceeds the object limit", id)
		return nil, nil
	}
	return s.obj, nil
}

func (d *decoder) finish() (schema.Object, error) {
	count := d.r.Uint32()
	if err := d.r.Err(); err != nil {
		return nil, err
	}
	if id, ok := d.table.undefined(); ok {
		return nil, &errs.UnknownReferenceError{ID: id}
	}
	if count != d.table.defined {
		d.r.Fail("END_OF_STREAM counts %d objects, stream holds %d", count, d.table.defined)
		return nil, d.r.Err()
	}
	if count == 0 {
		return nil, nil
	}
	root, ok := d.table.get(0)
	if !ok {
		return nil, &errs.UnknownReferenceError{ID: 0}
	}
	return root.obj, nil
}

// capHint bounds preallocation by an untrusted count.
func capHint(n uint32) int {
	if n > 1024 {
		return 1024
	}
	return int(n)
}
