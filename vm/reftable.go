package vm

// RefTable is the heap-keyed mutable reference table: an open-addressed hash
// table mapping stable 64-bit keys to Values, linearly probed, with
// tombstone-preserving deletes and a monotonically increasing key counter.
// It backs every ObjRef cell a program creates; a Ref's "identity" is its
// key, not a Go pointer, so that continuations and GC can treat it as a
// plain integer everywhere except here.
//
// This is deliberately NOT dolthub/swiss (used elsewhere in this package for
// ObjMap, see object_map.go): swiss's SIMD-probed, Robin-Hood-free design
// does not expose the tombstone/shrink/grow policy this table needs (load
// factor 75%, growth 2x, shrink at capacity/4*3/4 with a floor of 16), so
// the table here is hand-rolled, with keys hashed by a small Thomas
// Wang-style bit-mixer instead of swiss's.
type RefTable struct {
	slots []refSlot
	count int // live entries (excludes tombstones)
	used  int // live entries + tombstones

	nextKey uint64 // monotonically increasing; starts at 2 (0, 1 reserved)
}

type refSlotState uint8

const (
	refSlotEmpty refSlotState = iota
	refSlotTombstone
	refSlotLive
)

type refSlot struct {
	key   uint64
	value Value
	state refSlotState
}

const (
	refTableMinCapacity = 16
	refKeyEmpty         = 0
	refKeyTombstone     = 1
	refKeyFirst         = 2
)

func newRefTable() *RefTable {
	return &RefTable{
		slots:   make([]refSlot, refTableMinCapacity),
		nextKey: refKeyFirst,
	}
}

// wangHash64 is a small bit-mixing integer hash, Thomas Wang-style.
func wangHash64(key uint64) uint64 {
	key = (^key) + (key << 21)
	key = key ^ (key >> 24)
	key = key + (key << 3) + (key << 8)
	key = key ^ (key >> 14)
	key = key + (key << 2) + (key << 4)
	key = key ^ (key >> 28)
	key = key + (key << 31)
	return key
}

// NewRef allocates a fresh key, stores value under it, and returns the key.
// Keys are never reused: once a ref is deleted its key is tombstoned and
// retired for the lifetime of the table.
// TODO: recycle tombstoned keys after a generation epoch once a delete-heavy
// workload actually needs the table to stop growing.
func (t *RefTable) NewRef(value Value) uint64 {
	key := t.nextKey
	t.nextKey++
	t.insert(key, value)
	return key
}

// Get returns the value stored under key and whether it was found. A
// tombstoned or never-allocated key reports false; a live Ref always
// resolves to the last value written.
func (t *RefTable) Get(key uint64) (Value, bool) {
	idx, found := t.find(key)
	if !found {
		return Nil, false
	}
	return t.slots[idx].value, true
}

// Set overwrites the value stored under an already-allocated key.
func (t *RefTable) Set(key uint64, value Value) bool {
	idx, found := t.find(key)
	if !found {
		return false
	}
	t.slots[idx].value = value
	return true
}

// Delete tombstones key's slot, if present.
func (t *RefTable) Delete(key uint64) bool {
	idx, found := t.find(key)
	if !found {
		return false
	}
	t.slots[idx].state = refSlotTombstone
	t.count--
	t.maybeShrink()
	return true
}

func (t *RefTable) find(key uint64) (int, bool) {
	if len(t.slots) == 0 {
		return 0, false
	}
	mask := uint64(len(t.slots) - 1)
	i := wangHash64(key) & mask
	for {
		s := &t.slots[i]
		switch s.state {
		case refSlotEmpty:
			return 0, false
		case refSlotLive:
			if s.key == key {
				return int(i), true
			}
		case refSlotTombstone:
			// preserved on get: probing continues past tombstones.
		}
		i = (i + 1) & mask
	}
}

func (t *RefTable) insert(key uint64, value Value) {
	if float64(t.used+1) > float64(len(t.slots))*0.75 {
		t.resize(len(t.slots) * 2)
	}
	mask := uint64(len(t.slots) - 1)
	i := wangHash64(key) & mask
	firstTombstone := -1
	for {
		s := &t.slots[i]
		if s.state == refSlotEmpty {
			target := i
			if firstTombstone >= 0 {
				target = uint64(firstTombstone)
			} else {
				t.used++
			}
			t.slots[target] = refSlot{key: key, value: value, state: refSlotLive}
			t.count++
			return
		}
		if s.state == refSlotTombstone && firstTombstone < 0 {
			firstTombstone = int(i)
		}
		if s.state == refSlotLive && s.key == key {
			s.value = value
			return
		}
		i = (i + 1) & mask
	}
}

func (t *RefTable) maybeShrink() {
	cap := len(t.slots)
	if cap <= refTableMinCapacity {
		return
	}
	threshold := cap / 4 * 3 / 4
	if t.count < threshold {
		newCap := cap / 2
		if newCap < refTableMinCapacity {
			newCap = refTableMinCapacity
		}
		t.resize(newCap)
	}
}

// resize rebuilds the table at newCap. Tombstones are preserved on get but
// reclaimed here, on grow/shrink.
func (t *RefTable) resize(newCap int) {
	if newCap < refTableMinCapacity {
		newCap = refTableMinCapacity
	}
	old := t.slots
	t.slots = make([]refSlot, newCap)
	t.used = 0
	t.count = 0
	mask := uint64(newCap - 1)
	for _, s := range old {
		if s.state != refSlotLive {
			continue
		}
		i := wangHash64(s.key) & mask
		for t.slots[i].state == refSlotLive {
			i = (i + 1) & mask
		}
		t.slots[i] = refSlot{key: s.key, value: s.value, state: refSlotLive}
		t.used++
		t.count++
	}
}
