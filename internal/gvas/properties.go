package gvas

import "iter"

// Terminator records how a property list ended on disk.
type Terminator uint8

const (
	EndNone  Terminator = iota // "None" sentinel
	EndEmpty                   // empty name
	EndEOF                     // buffer exhausted
)

const sentinel = "None"

// Property is one named entry of a list.
type Property struct {
	Name  string
	Value Node
}

// Properties is an ordered name→Node list. Setting an existing name
// replaces its value in place.
type Properties struct {
	items []Property
	index map[string]int
	End   Terminator
}

func NewProperties() *Properties {
	return &Properties{index: make(map[string]int)}
}

func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.items)
}

// Get returns the node stored under name.
func (p *Properties) Get(name string) (Node, bool) {
	if p == nil {
		return nil, false
	}
	i, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return p.items[i].Value, true
}

// Has reports whether name is present.
func (p *Properties) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Set stores v under name, keeping the original position of an existing entry.
func (p *Properties) Set(name string, v Node) {
	if p.index == nil {
		p.index = make(map[string]int)
	}
	if i, ok := p.index[name]; ok {
		p.items[i].Value = v
		return
	}
	p.index[name] = len(p.items)
	p.items = append(p.items, Property{Name: name, Value: v})
}

// Delete removes name and reports whether it was present.
func (p *Properties) Delete(name string) bool {
	if p == nil {
		return false
	}
	i, ok := p.index[name]
	if !ok {
		return false
	}
	p.items = append(p.items[:i], p.items[i+1:]...)
	delete(p.index, name)
	for j := i; j < len(p.items); j++ {
		p.index[p.items[j].Name] = j
	}
	return true
}

// Names returns property names in order.
func (p *Properties) Names() []string {
	if p == nil {
		return nil
	}
	names := make([]string, len(p.items))
	for i, it := range p.items {
		names[i] = it.Name
	}
	return names
}

// All iterates name/value pairs in order.
func (p *Properties) All() iter.Seq2[string, Node] {
	return func(yield func(string, Node) bool) {
		if p == nil {
			return
		}
		for _, it := range p.items {
			if !yield(it.Name, it.Value) {
				return
			}
		}
	}
}

// Clone returns a deep copy.
func (p *Properties) Clone() *Properties {
	if p == nil {
		return nil
	}
	c := &Properties{
		items: make([]Property, len(p.items)),
		index: make(map[string]int, len(p.items)),
		End:   p.End,
	}
	for i, it := range p.items {
		c.items[i] = Property{Name: it.Name, Value: CloneNode(it.Value)}
		c.index[it.Name] = i
	}
	return c
}
