// Package inspect reads a graph stream without a type registry. It relies on
// the TYPE_DEF records to name fields and on value tags for everything else,
// which makes it suitable for dumping streams from unknown producers.
package inspect

import (
	"encoding/base64"
	"io"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"eserial/wire"
)

type ValueKind uint8

const (
	KindPrimitive ValueKind = iota + 1
	KindNull
	KindReference
	KindSequence
)

type Value struct {
	Kind      ValueKind
	Primitive wire.Primitive
	Data      any
	Ref       uint32
	RefType   string
	Elems     []Value
}

type FieldDef struct {
	Name string
	Kind string
}

type TypeDef struct {
	TypeID  string
	Version uint32
	Fields  []FieldDef
}

type FieldValue struct {
	Name  string
	Value Value
}

// ObjectRecord is one OBJECT record as it appears in the stream.
type ObjectRecord struct {
	ID      uint32
	TypeID  string
	Version uint32
	Fields  []FieldValue
}

type Stream struct {
	TypeDefs []TypeDef
	Records  []ObjectRecord
	// Declared is the object count carried by END_OF_STREAM.
	Declared uint32
}

// Scan reads a whole stream. References are reported as ids and are not
// checked for resolution.
func Scan(src io.Reader) (*Stream, error) {
	r := wire.NewReader(src)
	r.Header()
	s := &Stream{}
	defs := make(map[string]int)
	for r.Err() == nil {
		switch tag := r.Tag(); tag {
		case wire.TagTypeDef:
			def := TypeDef{TypeID: r.String(), Version: r.Uint32()}
			n := r.Len()
			for i := uint32(0); i < n && r.Err() == nil; i++ {
				def.Fields = append(def.Fields, FieldDef{Name: r.String(), Kind: r.String()})
			}
			defs[def.TypeID] = len(s.TypeDefs)
			s.TypeDefs = append(s.TypeDefs, def)
		case wire.TagObject:
			rec := ObjectRecord{ID: r.Uint32(), TypeID: r.String(), Version: r.Uint32()}
			i, ok := defs[rec.TypeID]
			if !ok {
				r.Fail("object %d of type %q has no TYPE_DEF", rec.ID, rec.TypeID)
				break
			}
			for _, f := range s.TypeDefs[i].Fields {
				if r.Err() != nil {
					break
				}
				rec.Fields = append(rec.Fields, FieldValue{Name: f.Name, Value: readValue(r)})
			}
			s.Records = append(s.Records, rec)
		case wire.TagEndOfStream:
			s.Declared = r.Uint32()
			if err := r.Err(); err != nil {
				return nil, err
			}
			return s, nil
		default:
			if r.Err() == nil {
				r.Fail("unexpected %s between records", tag)
			}
		}
	}
	return nil, r.Err()
}

func readValue(r *wire.Reader) Value {
	switch tag := r.Tag(); tag {
	case wire.TagNull:
		return Value{Kind: KindNull}
	case wire.TagPrimitive:
		p, v := r.Primitive()
		return Value{Kind: KindPrimitive, Primitive: p, Data: v}
	case wire.TagReference:
		return Value{Kind: KindReference, Ref: r.Uint32(), RefType: r.String()}
	case wire.TagSequenceStart:
		n := r.Len()
		v := Value{Kind: KindSequence, Elems: []Value{}}
		for i := uint32(0); i < n && r.Err() == nil; i++ {
			v.Elems = append(v.Elems, readValue(r))
		}
		if end := r.Tag(); r.Err() == nil && end != wire.TagSequenceEnd {
			r.Fail("expected SEQUENCE_END, got %s", end)
		}
		return v
	default:
		if r.Err() == nil {
			r.Fail("unexpected %s in a value position", tag)
		}
	}
	return Value{}
}

// Proto renders the stream as a protobuf Struct.
func (s *Stream) Proto() (*structpb.Struct, error) {
	types := make([]any, 0, len(s.TypeDefs))
	for _, def := range s.TypeDefs {
		fields := make([]any, 0, len(def.Fields))
		for _, f := range def.Fields {
			fields = append(fields, map[string]any{"name": f.Name, "kind": f.Kind})
		}
		types = append(types, map[string]any{
			"typeId":  def.TypeID,
			"version": def.Version,
			"fields":  fields,
		})
	}
	objects := make([]any, 0, len(s.Records))
	for _, rec := range s.Records {
		fields := make(map[string]any, len(rec.Fields))
		for _, f := range rec.Fields {
			fields[f.Name] = f.Value.plain()
		}
		objects = append(objects, map[string]any{
			"id":      rec.ID,
			"typeId":  rec.TypeID,
			"version": rec.Version,
			"fields":  fields,
		})
	}
	return structpb.NewStruct(map[string]any{
		"types":    types,
		"objects":  objects,
		"declared": s.Declared,
	})
}

// JSON renders Proto as indented JSON.
func (s *Stream) JSON() ([]byte, error) {
	st, err := s.Proto()
	if err != nil {
		return nil, err
	}
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(st)
}

func (v Value) plain() any {
	switch v.Kind {
	case KindPrimitive:
		switch d := v.Data.(type) {
		case time.Time:
			return d.Format(time.RFC3339Nano)
		case []byte:
			return base64.StdEncoding.EncodeToString(d)
		}
		return v.Data
	case KindReference:
		return map[string]any{"$ref": v.Ref, "$type": v.RefType}
	case KindSequence:
		res := make([]any, len(v.Elems))
		for i, e := range v.Elems {
			res[i] = e.plain()
		}
		return res
	}
	return nil
}
