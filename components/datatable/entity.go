package datatable

// IDField is the attribute every entity carries as its unique identifier.
const IDField = "id"

// Entity is one record of a resource collection (product, order, pin, design).
// Attributes are dynamically keyed; only IDField is required.
type Entity map[string]any

// ID returns the string form of the entity identifier.
func (e Entity) ID() string {
	return AsString(e[IDField])
}

// Get returns the raw attribute value, nil when missing.
func (e Entity) Get(field string) any {
	if e == nil {
		return nil
	}
	return e[field]
}

// Clone returns a shallow copy so callers can patch without mutating snapshots.
func (e Entity) Clone() Entity {
	if e == nil {
		return nil
	}
	out := make(Entity, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// IDs returns the identifiers of the given entities in order.
func IDs(entities []Entity) []string {
	ids := make([]string, len(entities))
	for i, e := range entities {
		ids[i] = e.ID()
	}
	return ids
}

// Index maps identifiers to entities. Later duplicates win.
func Index(entities []Entity) map[string]Entity {
	index := make(map[string]Entity, len(entities))
	for _, e := range entities {
		index[e.ID()] = e
	}
	return index
}
