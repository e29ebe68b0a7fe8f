package ecs

import "fmt"

// Table stores one row of T per entity in a dense array split in two
// partitions: rows [0, DisabledStart) belong to enabled entities and rows
// [DisabledStart, Len) to disabled (sleeping or inactive) ones.
//
// Pointers returned by Get and At stay valid until the next Add, Remove or
// SetDisabled call.
type Table[T any] struct {
	name          string
	rows          []T
	entities      []Entity
	index         map[Entity]int
	disabledStart int
}

func NewTable[T any](name string, capacity int) *Table[T] {
	return &Table[T]{
		name:     name,
		rows:     make([]T, 0, capacity),
		entities: make([]Entity, 0, capacity),
		index:    make(map[Entity]int, capacity),
	}
}

func (t *Table[T]) Name() string { return t.name }

func (t *Table[T]) Len() int { return len(t.rows) }

// DisabledStart is the index of the first disabled row, which is also the
// number of enabled rows.
func (t *Table[T]) DisabledStart() int { return t.disabledStart }

func (t *Table[T]) Has(e Entity) bool {
	_, ok := t.index[e]
	return ok
}

// Add inserts a row for e at the end of the requested partition.
func (t *Table[T]) Add(e Entity, disabled bool, row T) {
	if _, ok := t.index[e]; ok {
		panic(fmt.Sprintf("ecs: %s already has a row for %v", t.name, e))
	}

	var zero T
	t.rows = append(t.rows, zero)
	t.entities = append(t.entities, 0)
	last := len(t.rows) - 1

	var at int
	if disabled {
		at = last
	} else {
		if t.disabledStart != last {
			// make room by moving the first disabled row to the end
			t.move(t.disabledStart, last)
		}
		at = t.disabledStart
		t.disabledStart++
	}
	t.rows[at] = row
	t.entities[at] = e
	t.index[e] = at
}

// Remove deletes the row of e, filling the hole with the last row of the
// same partition so both partitions stay contiguous.
func (t *Table[T]) Remove(e Entity) {
	idx := t.mustIndex(e)
	last := len(t.rows) - 1

	if idx >= t.disabledStart {
		if idx != last {
			t.move(last, idx)
		}
	} else {
		lastEnabled := t.disabledStart - 1
		if idx != lastEnabled {
			t.move(lastEnabled, idx)
		}
		if t.disabledStart != len(t.rows) {
			t.move(last, lastEnabled)
		}
		t.disabledStart--
	}

	delete(t.index, e)
	var zero T
	t.rows[last] = zero
	t.rows = t.rows[:last]
	t.entities = t.entities[:last]
}

// SetDisabled moves the row of e across the partition boundary if needed.
func (t *Table[T]) SetDisabled(e Entity, disabled bool) {
	idx := t.mustIndex(e)
	switch {
	case !disabled && idx >= t.disabledStart:
		if idx != t.disabledStart {
			t.swap(idx, t.disabledStart)
		}
		t.disabledStart++
	case disabled && idx < t.disabledStart:
		if idx != t.disabledStart-1 {
			t.swap(idx, t.disabledStart-1)
		}
		t.disabledStart--
	}
}

func (t *Table[T]) IsDisabled(e Entity) bool {
	return t.mustIndex(e) >= t.disabledStart
}

// Get returns the row of e. Asking for an entity without a row panics.
func (t *Table[T]) Get(e Entity) *T {
	return &t.rows[t.mustIndex(e)]
}

func (t *Table[T]) Lookup(e Entity) (*T, bool) {
	idx, ok := t.index[e]
	if !ok {
		return nil, false
	}
	return &t.rows[idx], true
}

func (t *Table[T]) IndexOf(e Entity) int {
	return t.mustIndex(e)
}

func (t *Table[T]) At(i int) *T { return &t.rows[i] }

func (t *Table[T]) EntityAt(i int) Entity { return t.entities[i] }

// Enabled returns the enabled rows. The slice aliases the table storage.
func (t *Table[T]) Enabled() []T { return t.rows[:t.disabledStart] }

// Entities returns the entity of every row, enabled rows first.
func (t *Table[T]) Entities() []Entity { return t.entities }

func (t *Table[T]) mustIndex(e Entity) int {
	idx, ok := t.index[e]
	if !ok {
		panic(fmt.Sprintf("ecs: %s has no row for %v", t.name, e))
	}
	return idx
}

func (t *Table[T]) move(src, dst int) {
	t.rows[dst] = t.rows[src]
	t.entities[dst] = t.entities[src]
	t.index[t.entities[dst]] = dst
}

func (t *Table[T]) swap(i, j int) {
	t.rows[i], t.rows[j] = t.rows[j], t.rows[i]
	t.entities[i], t.entities[j] = t.entities[j], t.entities[i]
	t.index[t.entities[i]] = i
	t.index[t.entities[j]] = j
}
