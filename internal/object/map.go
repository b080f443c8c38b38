package object

import "io"

// Map is the open-addressed hash table spec.md §3-§4.1 grounds on the
// source's o_map.c: a mapper array of slot indices probed with
// CPython-style perturbed-linear probing, and two parallel dense arrays
// (keys, vals) that keep insertion order and are what grow() copies
// verbatim into the next, larger mapper.
//
// Both the lexical-scope Closure frame and every user-facing map value
// are this same concrete type — the source draws no distinction, and
// neither do we.
type Map struct {
	base

	mapper []int32 // mapperSize slots; -1 means empty, else an index into keys/vals
	keys   []Object
	vals   []Object
	count  int
}

var MapType = newType("map", AtomicComposite)

const (
	mapHeaderSize = 24
	mapMinMapper  = 8
)

// calcCapacity mirrors the source's calc_capacity: floor(mapperSize*2/3).
func calcCapacity(mapperSize int) int {
	return mapperSize * 2 / 3
}

func newMapper(size int) []int32 {
	m := make([]int32, size)
	for i := range m {
		m[i] = -1
	}
	return m
}

// NewMap allocates a Map sized to hold at least numHint entries without
// growing, mirroring Object_NewMap's doubling-from-8 search.
func NewMap(h *Heap, numHint int) (*Map, error) {
	if numHint < 0 {
		numHint = 0
	}
	mapperSize := mapMinMapper
	for calcCapacity(mapperSize) < numHint {
		mapperSize *= 2
	}
	capacity := calcCapacity(mapperSize)

	if err := h.charge(mapHeaderSize); err != nil {
		return nil, err
	}
	if err := h.AllocRaw(mapperSize*4 + capacity*16); err != nil {
		return nil, err
	}

	return &Map{
		base:   newBase(MapType),
		mapper: newMapper(mapperSize),
		keys:   make([]Object, 0, capacity),
		vals:   make([]Object, 0, capacity),
	}, nil
}

func (m *Map) mapperSize() int { return len(m.mapper) }
func (m *Map) capacity() int   { return cap(m.keys) }

// Count is the number of live entries.
func (m *Map) Count() int { return m.count }

// probe runs the perturbed-linear search described in o_map.c's select():
// mask = mapperSize-1; i = hash & mask; on miss, pert >>= 5; i = (i*5+pert+1) & mask.
// It returns the slot in `mapper` landed on, which is either -1 (empty,
// key absent) or an index into keys/vals (key may or may not match —
// callers compare).
func (m *Map) probe(hash int64) func() (slotIdx int, entryIdx int32) {
	mask := int64(m.mapperSize() - 1)
	i := hash & mask
	pert := hash
	first := true
	return func() (int, int32) {
		if !first {
			pert >>= 5
			i = (i*5 + pert + 1) & mask
		}
		first = false
		return int(i), m.mapper[i]
	}
}

// Get looks up key, returning (value, true) on hit and (nil, false) on a
// genuine miss. It short-circuits to a miss on an empty map without
// calling Hash at all — spec.md §8's "select on the empty map returns
// None without calling hash" boundary case.
func (m *Map) Get(key Object) (Object, bool, error) {
	if m.count == 0 {
		return nil, false, nil
	}
	hash, err := Hash(key)
	if err != nil {
		return nil, false, ErrUnhashable{Type: key.Type().Name}
	}
	next := m.probe(hash)
	for {
		slot, entry := next()
		if entry == -1 {
			return nil, false, nil
		}
		eq, err := Compare(key, m.keys[entry])
		if err != nil {
			return nil, false, ErrIncomparable{Type: key.Type().Name}
		}
		if eq {
			return m.vals[entry], true, nil
		}
		_ = slot
	}
}

// Set inserts or overwrites key -> val, growing first if the dense arrays
// are full, exactly as o_map.c's insert() does.
func (m *Map) Set(h *Heap, key, val Object) error {
	if m.count == m.capacity() {
		if err := m.grow(h); err != nil {
			return err
		}
	}

	hash, err := Hash(key)
	if err != nil {
		return ErrUnhashable{Type: key.Type().Name}
	}

	next := m.probe(hash)
	for {
		slot, entry := next()
		if entry == -1 {
			keyCopy, err := Copy(key, h)
			if err != nil {
				return err
			}
			idx := int32(m.count)
			m.mapper[slot] = idx
			m.keys = append(m.keys, keyCopy)
			m.vals = append(m.vals, val)
			m.count++
			return nil
		}
		eq, err := Compare(key, m.keys[entry])
		if err != nil {
			return ErrIncomparable{Type: key.Type().Name}
		}
		if eq {
			m.vals[entry] = val
			return nil
		}
	}
}

// grow doubles mapperSize, recomputes capacity, and rebuilds the mapper
// from scratch over the existing dense keys/vals slice (which is copied
// verbatim, preserving insertion order) — mirroring o_map.c's grow().
func (m *Map) grow(h *Heap) error {
	oldMapperBytes := m.mapperSize()*4 + m.capacity()*16

	newMapperSize := m.mapperSize() * 2
	newCapacity := calcCapacity(newMapperSize)

	if err := h.AllocRaw(newMapperSize*4 + newCapacity*16); err != nil {
		return err
	}

	newMapper := newMapper(newMapperSize)
	newKeys := make([]Object, len(m.keys), newCapacity)
	newVals := make([]Object, len(m.vals), newCapacity)
	copy(newKeys, m.keys)
	copy(newVals, m.vals)

	mask := int64(newMapperSize - 1)
	for idx, k := range newKeys {
		hash, err := Hash(k)
		if err != nil {
			return ErrUnhashable{Type: k.Type().Name}
		}
		i := hash & mask
		pert := hash
		for newMapper[i] != -1 {
			pert >>= 5
			i = (i*5 + pert + 1) & mask
		}
		newMapper[i] = int32(idx)
	}

	m.mapper = newMapper
	m.keys = newKeys
	m.vals = newVals

	h.ReleaseRaw(oldMapperBytes)
	return nil
}

// Keys returns the live keys in insertion order.
func (m *Map) Keys() []Object {
	out := make([]Object, m.count)
	copy(out, m.keys[:m.count])
	return out
}

func init() {
	MapType.Count = func(o Object) int { return o.(*Map).Count() }
	MapType.Select = func(o Object, key Object, h *Heap) (Object, error) {
		v, ok, err := o.(*Map).Get(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return None_(), nil
		}
		return v, nil
	}
	MapType.Insert = func(o Object, key, val Object, h *Heap) error {
		return o.(*Map).Set(h, key, val)
	}
	MapType.Copy = func(o Object, h *Heap) (Object, error) {
		src := o.(*Map)
		dst, err := NewMap(h, src.count)
		if err != nil {
			return nil, err
		}
		for i := 0; i < src.count; i++ {
			if err := dst.Set(h, src.keys[i], src.vals[i]); err != nil {
				return nil, err
			}
		}
		return dst, nil
	}
	MapType.ToBool = func(o Object) bool { return o.(*Map).Count() != 0 }
	MapType.Walk = func(o Object, visit func(slot *Object)) {
		m := o.(*Map)
		for i := range m.keys[:m.count] {
			visit(&m.keys[i])
		}
		for i := range m.vals[:m.count] {
			visit(&m.vals[i])
		}
	}
	MapType.Print = func(o Object, w io.Writer) {
		m := o.(*Map)
		io.WriteString(w, "{")
		for i := 0; i < m.count; i++ {
			if i > 0 {
				io.WriteString(w, ", ")
			}
			Print(m.keys[i], w)
			io.WriteString(w, ": ")
			Print(m.vals[i], w)
		}
		io.WriteString(w, "}")
	}
}
