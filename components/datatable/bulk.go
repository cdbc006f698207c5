package datatable

import "errors"

var (
	// ErrEmptySelection is returned by bulk operations without target ids.
	ErrEmptySelection = errors.New("datatable: no items selected")
	// ErrEmptyPatch is returned by BulkUpdate without attributes to set.
	ErrEmptyPatch = errors.New("datatable: patch is empty")
)

// ApplyPatch returns a copy of e with patch merged in. The identifier is never
// overwritten.
func ApplyPatch(e Entity, patch map[string]any) Entity {
	out := e.Clone()
	if out == nil {
		out = Entity{}
	}
	for k, v := range patch {
		if k == IDField {
			continue
		}
		out[k] = v
	}
	return out
}

// BulkUpdate returns a new slice where every entity whose id is in ids has the
// patch applied, along with the number of updated entities. The input slice
// and its maps are left untouched.
func BulkUpdate(data []Entity, ids []string, patch map[string]any) ([]Entity, int, error) {
	if len(ids) == 0 {
		return data, 0, ErrEmptySelection
	}
	if len(patch) == 0 {
		return data, 0, ErrEmptyPatch
	}
	targets := idSet(ids)
	out := make([]Entity, len(data))
	updated := 0
	for i, e := range data {
		if _, ok := targets[e.ID()]; ok {
			out[i] = ApplyPatch(e, patch)
			updated++
			continue
		}
		out[i] = e
	}
	return out, updated, nil
}

// BulkDelete returns a new slice without the entities whose id is in ids,
// along with the number of removed entities.
func BulkDelete(data []Entity, ids []string) ([]Entity, int, error) {
	if len(ids) == 0 {
		return data, 0, ErrEmptySelection
	}
	targets := idSet(ids)
	out := make([]Entity, 0, len(data))
	for _, e := range data {
		if _, ok := targets[e.ID()]; ok {
			continue
		}
		out = append(out, e)
	}
	return out, len(data) - len(out), nil
}

// BulkUpdate patches entities in the working set and prunes nothing.
func (t *Table) BulkUpdate(ids []string, patch map[string]any) (int, error) {
	out, n, err := BulkUpdate(t.data, ids, patch)
	if err != nil {
		return 0, err
	}
	t.data = out
	t.clampPage()
	return n, nil
}

// BulkDelete removes entities from the working set and from the selection.
func (t *Table) BulkDelete(ids []string) (int, error) {
	out, n, err := BulkDelete(t.data, ids)
	if err != nil {
		return 0, err
	}
	t.SetData(out)
	return n, nil
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
