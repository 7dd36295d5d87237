package codec

import (
	ie "github.com/sahib/arbor/errors"
	"github.com/sahib/arbor/tree"
)

const (
	dictKeyData     = "data"
	dictKeyChildren = "children"
)

// ToDictList converts the descendants of `origin` to nested maps of the
// form {"data": ..., "children": [...]}. Data is encoded like in Record,
// but clones are written out in full.
func ToDictList(origin *tree.Node, mapper SerializeMapper) ([]map[string]interface{}, error) {
	calcID := origin.Tree().IdentityFunc()
	list := []map[string]interface{}{}

	for _, child := range origin.Children() {
		data, err := makeEntry(child, calcID, mapper)
		if err != nil {
			return nil, err
		}

		entry := map[string]interface{}{dictKeyData: data}
		if child.HasChildren() {
			children, err := ToDictList(child, mapper)
			if err != nil {
				return nil, err
			}

			entry[dictKeyChildren] = children
		}

		list = append(list, entry)
	}

	return list, nil
}

// FromDictList adds the nodes of a ToDictList result below `target`.
// It also accepts the generic form produced by decoding JSON or YAML.
func FromDictList(target *tree.Node, list interface{}, mapper DeserializeMapper) error {
	entries, err := asEntries(list)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		var nd *tree.Node
		switch data := entry[dictKeyData].(type) {
		case string:
			nd, err = target.Add(data)
		case map[string]interface{}:
			nd, err = addEntry(target, data, mapper)
		default:
			return ie.Usage("unsupported dict data %v (%T)", data, data)
		}

		if err != nil {
			return err
		}

		if children, ok := entry[dictKeyChildren]; ok && children != nil {
			if err := FromDictList(nd, children, mapper); err != nil {
				return err
			}
		}
	}

	return nil
}

func asEntries(list interface{}) ([]map[string]interface{}, error) {
	switch v := normalize(list).(type) {
	case []map[string]interface{}:
		return v, nil
	case []interface{}:
		entries := make([]map[string]interface{}, 0, len(v))
		for _, item := range v {
			entry, ok := item.(map[string]interface{})
			if !ok {
				return nil, ie.Usage("dict list entry is not a map: %v", item)
			}

			entries = append(entries, entry)
		}

		return entries, nil
	default:
		return nil, ie.Usage("not a dict list: %T", list)
	}
}
