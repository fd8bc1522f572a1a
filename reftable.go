package eserial

import "eserial/schema"

// pending is an object whose id is reserved but whose record is not written.
type pending struct {
	id   uint32
	obj  schema.Object
	desc *schema.Descriptor
}

// encodeTable assigns ids in first-seen order and doubles as the worklist.
type encodeTable struct {
	ids   map[schema.Object]uint32
	queue []pending
	head  int
}

func newEncodeTable() *encodeTable {
	return &encodeTable{ids: make(map[schema.Object]uint32, 16)}
}

func (t *encodeTable) lookup(obj schema.Object) (uint32, bool) {
	id, ok := t.ids[obj]
	return id, ok
}

func (t *encodeTable) reserve(obj schema.Object, desc *schema.Descriptor) uint32 {
	id := uint32(len(t.queue))
	t.ids[obj] = id
	t.queue = append(t.queue, pending{id: id, obj: obj, desc: desc})
	return id
}

func (t *encodeTable) next() (pending, bool) {
	if t.head == len(t.queue) {
		return pending{}, false
	}
	p := t.queue[t.head]
	t.queue[t.head] = pending{}
	t.head++
	return p, true
}

type slot struct {
	obj     schema.Object
	typeID  string
	defined bool
}

// decodeTable holds every instance allocated during a decode, whether its
// OBJECT record has been read yet or not.
type decodeTable struct {
	slots   map[uint32]*slot
	defined uint32
	max     uint32
}

func newDecodeTable(max uint32) *decodeTable {
	return &decodeTable{slots: make(map[uint32]*slot, 16), max: max}
}

func (t *decodeTable) get(id uint32) (*slot, bool) {
	s, ok := t.slots[id]
	return s, ok
}

// allocate registers a fresh default instance under id. It reports false
// once the table holds max objects.
func (t *decodeTable) allocate(id uint32, desc *schema.Descriptor) (*slot, bool) {
	if t.max > 0 && uint32(len(t.slots)) >= t.max {
		return nil, false
	}
	s := &slot{obj: desc.New(), typeID: desc.TypeID}
	t.slots[id] = s
	return s, true
}

// undefined returns the smallest id that was referenced but never defined.
func (t *decodeTable) undefined() (uint32, bool) {
	var (
		lowest uint32
		found  bool
	)
	for id, s := range t.slots {
		if !s.defined && (!found || id < lowest) {
			lowest, found = id, true
		}
	}
	return lowest, found
}
