// Package demo holds the sample type used by the CLI demo and by tests.
package demo

import (
	"io"
	"math"
	"time"

	"eserial/schema"
)

const TypeID = "demo.Sample"

// DefaultValue is what a freshly constructed Sample holds in Value.
var DefaultValue = math.Pi

type Sample struct {
	Value float64
	Mark  bool
	Name  string
	Date  time.Time
	Array []*Sample
	List  []*Sample

	// Output and Secret are never persisted.
	Output io.Writer
	Secret string
}

func NewSample() *Sample {
	return &Sample{Value: DefaultValue}
}

func (s *Sample) TypeID() string {
	return TypeID
}

func (s *Sample) AddAllFromArrayToList() {
	s.List = append(s.List, s.Array...)
}

// Register declares Sample in r under the given version.
func Register(r *schema.Registry, version uint32) *schema.Descriptor {
	return r.MustRegister(TypeID, version, func() schema.Object { return NewSample() },
		schema.Field{
			Name: "value",
			Kind: schema.Prim(schema.Float64),
			Get:  func(o schema.Object) any { return o.(*Sample).Value },
			Set: func(o schema.Object, v any) error {
				o.(*Sample).Value = v.(float64)
				return nil
			},
		},
		schema.Field{
			Name: "mark",
			Kind: schema.Prim(schema.Bool),
			Get:  func(o schema.Object) any { return o.(*Sample).Mark },
			Set: func(o schema.Object, v any) error {
				o.(*Sample).Mark = v.(bool)
				return nil
			},
		},
		schema.Field{
			Name: "name",
			Kind: schema.Prim(schema.String),
			Get:  func(o schema.Object) any { return o.(*Sample).Name },
			Set: func(o schema.Object, v any) error {
				o.(*Sample).Name = v.(string)
				return nil
			},
		},
		schema.Field{
			Name: "date",
			Kind: schema.Prim(schema.Time),
			Get:  func(o schema.Object) any { return o.(*Sample).Date },
			Set: func(o schema.Object, v any) error {
				o.(*Sample).Date = v.(time.Time)
				return nil
			},
		},
		schema.Field{
			Name: "array",
			Kind: schema.ArrayOf(schema.Ref(TypeID)),
			Get:  func(o schema.Object) any { return schema.RefValues(o.(*Sample).Array) },
			Set: func(o schema.Object, v any) (err error) {
				o.(*Sample).Array, err = schema.AsSlice[*Sample](v)
				return
			},
		},
		schema.Field{
			Name: "list",
			Kind: schema.SequenceOf(schema.Ref(TypeID)),
			Get:  func(o schema.Object) any { return schema.RefValues(o.(*Sample).List) },
			Set: func(o schema.Object, v any) (err error) {
				o.(*Sample).List, err = schema.AsSlice[*Sample](v)
				return
			},
		},
		schema.Field{Name: "output", Transient: true},
		schema.Field{Name: "secret", Transient: true},
	)
}
