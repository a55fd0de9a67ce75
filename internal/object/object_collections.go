package object

import "strings"

// ProtoKey is the inheritance-link key that guest code may never write.
const ProtoKey = "__proto__"

// Entry is a single own property.
type Entry struct {
	Key   string
	Value Object
}

// properties is an insertion-ordered property map with a frozen bit.
type properties struct {
	keys   []string
	vals   map[string]Object
	frozen bool
}

func (p *properties) Get(key string) (Object, bool) {
	if p.vals == nil {
		return nil, false
	}
	v, ok := p.vals[key]
	return v, ok
}

func (p *properties) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

func (p *properties) Len() int { return len(p.keys) }

func (p *properties) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Entries returns a snapshot of the own properties in insertion order.
func (p *properties) Entries() []Entry {
	out := make([]Entry, len(p.keys))
	for i, k := range p.keys {
		out[i] = Entry{Key: k, Value: p.vals[k]}
	}
	return out
}

func (p *properties) IsFrozen() bool { return p.frozen }

func (p *properties) freeze() { p.frozen = true }

// put stores without any checks; callers go through SetComputedIndex.
func (p *properties) put(key string, val Object) {
	if p.vals == nil {
		p.vals = make(map[string]Object)
	}
	if _, ok := p.vals[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.vals[key] = val
}

// Record is a plain guest object.
type Record struct {
	properties
}

func NewRecord(entries ...Entry) *Record {
	r := &Record{}
	for _, e := range entries {
		r.put(e.Key, e.Value)
	}
	return r
}

func (r *Record) Type() ObjectType { return RECORD_OBJ }
func (r *Record) Inspect() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, e := range r.Entries() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.Key)
		sb.WriteString(": ")
		sb.WriteString(e.Value.Inspect())
	}
	sb.WriteString("}")
	return sb.String()
}

// Array is an indexable guest sequence.
type Array struct {
	Elements []Object
	frozen   bool
}

func NewArray(elements ...Object) *Array {
	if elements == nil {
		elements = []Object{}
	}
	return &Array{Elements: elements}
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	parts := make([]string, len(a.Elements))
	for i, el := range a.Elements {
		parts[i] = el.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (a *Array) Len() int { return len(a.Elements) }

// At returns element i, or undefined when i is out of range.
func (a *Array) At(i int) Object {
	if i < 0 || i >= len(a.Elements) {
		return UNDEFINED
	}
	return a.Elements[i]
}

func (a *Array) IsFrozen() bool { return a.frozen }

// Entries lists the elements keyed by their decimal index.
func (a *Array) Entries() []Entry {
	out := make([]Entry, len(a.Elements))
	for i, el := range a.Elements {
		out[i] = Entry{Key: FormatNumber(float64(i)), Value: el}
	}
	return out
}
