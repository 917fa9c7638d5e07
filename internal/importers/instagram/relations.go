package instagram

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mrlokans/companion/internal/entities"
	"github.com/mrlokans/companion/internal/textfix"
)

const relationshipsKeyPrefix = "relationships_"

// relationElements returns the relation records of a followers or following
// file. Newer exports wrap the array in an object keyed "relationships_*".
func relationElements(data []byte) ([]json.RawMessage, error) {
	elements, object, err := topLevel(data)
	if err != nil {
		return nil, err
	}
	if object == nil {
		return elements, nil
	}

	keys := make([]string, 0, len(object))
	for key := range object {
		if strings.HasPrefix(key, relationshipsKeyPrefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		var wrapped []json.RawMessage
		if err := json.Unmarshal(object[key], &wrapped); err == nil {
			return wrapped, nil
		}
	}
	return nil, fmt.Errorf("%w: no relationships array found", ErrParse)
}

// decodeRelations maps every string_list_data pair of every record, keeping
// order and duplicates.
func decodeRelations(data []byte, ref string) (Batch[entities.Relation], error) {
	var batch Batch[entities.Relation]

	elements, err := relationElements(data)
	if err != nil {
		return batch, err
	}

	for i, raw := range elements {
		var rel rawRelation
		if err := json.Unmarshal(raw, &rel); err != nil {
			batch.Fail(ItemError{Scope: ScopeRelation, Index: i, Ref: ref, Err: errFieldMalformed})
			continue
		}
		for _, entry := range rel.StringListData {
			name := entry.Value
			if name == "" {
				name = rel.Title
			}
			if name == "" && entry.Href == "" {
				continue
			}
			batch.Add(entities.Relation{
				Name:       textfix.Repair(name),
				ProfileURL: entry.Href,
			})
		}
	}
	return batch, nil
}
