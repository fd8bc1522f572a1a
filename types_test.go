package eserial

import (
	"math"

	"eserial/schema"
)

type node struct {
	Name     string
	Weight   int64
	Next     *node
	Left     *node
	Right    *node
	Children []*node
	Tags     []string
	Blob     []byte

	Scratch string
}

func (n *node) TypeID() string { return "test.node" }

func registerNode(r *schema.Registry, version uint32) {
	r.MustRegister("test.node", version, func() schema.Object { return &node{} },
		schema.Field{
			Name: "name",
			Kind: schema.Prim(schema.String),
			Get:  func(o schema.Object) any { return o.(*node).Name },
			Set: func(o schema.Object, v any) error {
				o.(*node).Name = v.(string)
				return nil
			},
		},
		schema.Field{
			Name: "weight",
			Kind: schema.Prim(schema.Int64),
			Get:  func(o schema.Object) any { return o.(*node).Weight },
			Set: func(o schema.Object, v any) error {
				o.(*node).Weight = v.(int64)
				return nil
			},
		},
		refField("next", func(n *node) **node { return &n.Next }),
		refField("left", func(n *node) **node { return &n.Left }),
		refField("right", func(n *node) **node { return &n.Right }),
		schema.Field{
			Name: "children",
			Kind: schema.SequenceOf(schema.Ref("test.node")),
			Get:  func(o schema.Object) any { return schema.RefValues(o.(*node).Children) },
			Set: func(o schema.Object, v any) (err error) {
				o.(*node).Children, err = schema.AsSlice[*node](v)
				return
			},
		},
		schema.Field{
			Name: "tags",
			Kind: schema.ArrayOf(schema.Prim(schema.String)),
			Get:  func(o schema.Object) any { return schema.Values(o.(*node).Tags) },
			Set: func(o schema.Object, v any) (err error) {
				o.(*node).Tags, err = schema.FromValues[string](v)
				return
			},
		},
		schema.Field{
			Name: "blob",
			Kind: schema.Prim(schema.Bytes),
			Get:  func(o schema.Object) any { return o.(*node).Blob },
			Set: func(o schema.Object, v any) error {
				o.(*node).Blob = v.([]byte)
				return nil
			},
		},
		schema.Field{Name: "scratch", Transient: true},
	)
}

func refField(name string, at func(n *node) **node) schema.Field {
	return schema.Field{
		Name: name,
		Kind: schema.Ref("test.node"),
		Get:  func(o schema.Object) any { return schema.RefValue(*at(o.(*node))) },
		Set: func(o schema.Object, v any) (err error) {
			*at(o.(*node)), err = schema.As[*node](v)
			return
		},
	}
}

type shape interface {
	schema.Object
	Area() float64
}

type circle struct {
	R float64
}

func (c *circle) TypeID() string { return "test.circle" }

func (c *circle) Area() float64 { return math.Pi * c.R * c.R }

type square struct {
	Side float32
}

func (s *square) TypeID() string { return "test.square" }

func (s *square) Area() float64 { return float64(s.Side * s.Side) }

type drawing struct {
	Main   shape
	Shapes []shape
}

func (d *drawing) TypeID() string { return "test.drawing" }

func registerShapes(r *schema.Registry) {
	r.MustRegister("test.circle", 1, func() schema.Object { return &circle{} },
		schema.Field{
			Name: "r",
			Kind: schema.Prim(schema.Float64),
			Get:  func(o schema.Object) any { return o.(*circle).R },
			Set: func(o schema.Object, v any) error {
				o.(*circle).R = v.(float64)
				return nil
			},
		},
	)
	r.MustRegister("test.square", 1, func() schema.Object { return &square{} },
		schema.Field{
			Name: "side",
			Kind: schema.Prim(schema.Float32),
			Get:  func(o schema.Object) any { return o.(*square).Side },
			Set: func(o schema.Object, v any) error {
				o.(*square).Side = v.(float32)
				return nil
			},
		},
	)
	r.MustRegister("test.drawing", 1, func() schema.Object { return &drawing{} },
		schema.Field{
			Name: "main",
			Kind: schema.Ref("test.shape"),
			Get:  func(o schema.Object) any { return schema.RefValue(o.(*drawing).Main) },
			Set: func(o schema.Object, v any) (err error) {
				o.(*drawing).Main, err = schema.As[shape](v)
				return
			},
		},
		schema.Field{
			Name: "shapes",
			Kind: schema.SequenceOf(schema.Ref("test.shape")),
			Get:  func(o schema.Object) any { return schema.RefValues(o.(*drawing).Shapes) },
			Set: func(o schema.Object, v any) (err error) {
				o.(*drawing).Shapes, err = schema.AsSlice[shape](v)
				return
			},
		},
	)
}

func newTestRegistry() *schema.Registry {
	r := schema.NewRegistry()
	registerNode(r, 1)
	registerShapes(r)
	return r
}
