package schema

// Object is a value that can take part in a graph. Implementations must be
// pointer types: the codec tracks identity by comparing Object values.
type Object interface {
	TypeID() string
}

// Field declares one member of a type together with its accessors.
type Field struct {
	Name string
	Kind Kind
	// Get returns the current value in the representation documented on
	// Kind.
	Get func(obj Object) any
	// Set stores a decoded value. Reference values may point at objects
	// whose own fields are not populated yet.
	Set func(obj Object, v any) error
	// Transient fields are declared for documentation and never persisted.
	Transient bool
}

// Descriptor is the schema of one serializable type.
type Descriptor struct {
	TypeID  string
	Version uint32
	// New allocates an instance holding default values.
	New    func() Object
	Fields []Field

	index map[string]int
}

// Field looks up a persistent field by name.
func (d *Descriptor) Field(name string) (Field, bool) {
	i, ok := d.index[name]
	if !ok {
		return Field{}, false
	}
	return d.Fields[i], true
}

// Signature lists the persistent field names with their kind signatures in
// declaration order.
func (d *Descriptor) Signature() [][2]string {
	res := make([][2]string, len(d.Fields))
	for i, f := range d.Fields {
		res[i] = [2]string{f.Name, f.Kind.String()}
	}
	return res
}
