package request

// AuxStore is the per-request scratch mapping handler code mutates
// freely. It preserves insertion order and needs no locking: the
// request record has a single owner.
type AuxStore struct {
	entries []auxEntry
}

type auxEntry struct {
	key   any
	value any
}

// Get returns the value stored under key.
func (a *AuxStore) Get(key any) (value any, found bool) {
	for _, e := range a.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return nil, false
}

// Set replaces the value in place when key exists, otherwise inserts
// the entry at the front.
func (a *AuxStore) Set(key, value any) {
	for i := range a.entries {
		if a.entries[i].key == key {
			a.entries[i].value = value
			return
		}
	}

	a.entries = append([]auxEntry{{key: key, value: value}}, a.entries...)
}

// Delete removes every entry matching key.
func (a *AuxStore) Delete(key any) {
	kept := a.entries[:0]
	for _, e := range a.entries {
		if e.key != key {
			kept = append(kept, e)
		}
	}
	a.entries = kept
}

func (a *AuxStore) Len() int { return len(a.entries) }
