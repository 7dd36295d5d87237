package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	e "github.com/pkg/errors"
	ie "github.com/sahib/arbor/errors"
	"github.com/sahib/arbor/tree"
)

// Keys of the record maps before key compression.
const (
	keyString   = "str"
	keyIdentity = "data_id"
	keyKind     = "kind"
)

// DefaultKeyMap shortens the keys that arbor writes itself.
var DefaultKeyMap = map[string]string{
	keyIdentity: "i",
	keyString:   "s",
	keyKind:     "k",
}

// Record is one entry of the compact list form: the generation index of
// the parent (0 is the hidden root) and the node data. Data is one of:
//
//   - a string: a string payload with default identity and no kind,
//   - an int: index of the first clone with the same identity and kind,
//   - a map: everything else (custom identity, kind, mapper output).
//
// Records encode as two element arrays in JSON and YAML.
type Record struct {
	Parent int
	Data   interface{}
}

// MarshalJSON writes the record as [parent, data].
func (rc Record) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{rc.Parent, rc.Data})
}

// UnmarshalJSON reads a [parent, data] pair.
func (rc *Record) UnmarshalJSON(data []byte) error {
	pair := []json.RawMessage{}
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}

	if len(pair) != 2 {
		return fmt.Errorf("record needs two elements, got %d", len(pair))
	}

	if err := json.Unmarshal(pair[0], &rc.Parent); err != nil {
		return e.Wrap(err, "record parent")
	}

	dec := json.NewDecoder(bytes.NewReader(pair[1]))
	dec.UseNumber()
	if err := dec.Decode(&rc.Data); err != nil {
		return e.Wrap(err, "record data")
	}

	rc.Data = normalize(rc.Data)
	return nil
}

// MarshalYAML writes the record as [parent, data].
func (rc Record) MarshalYAML() (interface{}, error) {
	return []interface{}{rc.Parent, rc.Data}, nil
}

// UnmarshalYAML reads a [parent, data] pair.
func (rc *Record) UnmarshalYAML(unmarshal func(interface{}) error) error {
	pair := []interface{}{}
	if err := unmarshal(&pair); err != nil {
		return err
	}

	if len(pair) != 2 {
		return fmt.Errorf("record needs two elements, got %d", len(pair))
	}

	parent, ok := asInt(pair[0])
	if !ok {
		return fmt.Errorf("record parent is not an int: %v", pair[0])
	}

	rc.Parent = parent
	rc.Data = normalize(pair[1])
	return nil
}

// SerializeMapper converts a non-string payload to a map of plain values.
// `data` is pre-filled with the keys arbor needs and should be extended.
type SerializeMapper func(nd *tree.Node, data map[string]interface{}) (map[string]interface{}, error)

// DeserializeMapper creates a payload from the map a SerializeMapper wrote.
// `parent` is the node the payload will be attached to.
type DeserializeMapper func(parent *tree.Node, data map[string]interface{}) (interface{}, error)

// EncodeOptions tunes ToList.
type EncodeOptions struct {
	// Mapper is required if the tree holds non-string payloads.
	Mapper SerializeMapper

	// KeyMap renames keys of map records (long name to short name).
	KeyMap map[string]string

	// ValueMap replaces string values of the given keys by their index
	// in the list, e.g. {"type": {"person", "dept"}}.
	ValueMap map[string][]string
}

// DecodeOptions tunes FromList.
type DecodeOptions struct {
	// Mapper is required if the records hold mapper output.
	Mapper DeserializeMapper

	// KeyMap and ValueMap must be the ones used when encoding.
	KeyMap   map[string]string
	ValueMap map[string][]string
}

type cloneRef struct {
	index int
	kind  string
}

// ToList converts the subtree below `origin` (not including it) into the
// compact list form, in pre-order.
func ToList(origin *tree.Node, opts EncodeOptions) ([]Record, error) {
	calcID := origin.Tree().IdentityFunc()
	indexes := map[*tree.Node]int{origin: 0}
	clones := make(map[tree.IdentityKey]cloneRef)

	valueIndexes := make(map[string]map[string]int)
	for key, values := range opts.ValueMap {
		valueIndexes[key] = make(map[string]int)
		for idx, value := range values {
			valueIndexes[key][value] = idx
		}
	}

	records := []Record{}
	generation := 0

	for nd := range origin.All() {
		generation++
		indexes[nd] = generation
		parent := indexes[parentOf(nd, origin)]

		if ref, ok := clones[nd.Identity()]; ok {
			if ref.kind == nd.Kind() {
				records = append(records, Record{Parent: parent, Data: ref.index})
				continue
			}
		} else if nd.IsClone() {
			clones[nd.Identity()] = cloneRef{index: generation, kind: nd.Kind()}
		}

		data, err := makeEntry(nd, calcID, opts.Mapper)
		if err != nil {
			return nil, err
		}

		if entry, ok := data.(map[string]interface{}); ok {
			data = compressEntry(entry, opts.KeyMap, valueIndexes)
		}

		records = append(records, Record{Parent: parent, Data: data})
	}

	return records, nil
}

func parentOf(nd, origin *tree.Node) *tree.Node {
	if nd.Parent() == nil {
		// Top level node; its parent is the hidden root.
		return origin
	}

	return nd.Parent()
}

func makeEntry(nd *tree.Node, calcID tree.IdentityFunc, mapper SerializeMapper) (interface{}, error) {
	isCustomID := nd.Identity() != calcID(nd.Payload())
	str, isString := nd.Payload().(string)

	if isString && !isCustomID && nd.Kind() == "" {
		return str, nil
	}

	data := make(map[string]interface{})
	if isCustomID {
		data[keyIdentity] = string(nd.Identity())
	}

	if nd.Kind() != "" {
		data[keyKind] = nd.Kind()
	}

	if isString {
		data[keyString] = str
		return data, nil
	}

	if mapper == nil {
		return nil, ie.Usage("need a serialize mapper for %s (%T)", nd, nd.Payload())
	}

	return mapper(nd, data)
}

func compressEntry(data map[string]interface{}, keyMap map[string]string, valueIndexes map[string]map[string]int) map[string]interface{} {
	if len(keyMap) == 0 && len(valueIndexes) == 0 {
		return data
	}

	compressed := make(map[string]interface{}, len(data))
	for key, value := range data {
		if indexes, ok := valueIndexes[key]; ok {
			if str, ok := value.(string); ok {
				if idx, ok := indexes[str]; ok {
					value = idx
				}
			}
		}

		if short, ok := keyMap[key]; ok {
			key = short
		}

		compressed[key] = value
	}

	return compressed
}

func uncompressEntry(data map[string]interface{}, inverseKeyMap map[string]string, valueMap map[string][]string) map[string]interface{} {
	if len(inverseKeyMap) == 0 && len(valueMap) == 0 {
		return data
	}

	uncompressed := make(map[string]interface{}, len(data))
	for key, value := range data {
		if long, ok := inverseKeyMap[key]; ok {
			key = long
		}

		if values, ok := valueMap[key]; ok {
			if idx, ok := asInt(value); ok && idx >= 0 && idx < len(values) {
				value = values[idx]
			}
		}

		uncompressed[key] = value
	}

	return uncompressed
}

// FromList adds the nodes described by `records` below `target`.
func FromList(target *tree.Node, records []Record, opts DecodeOptions) error {
	inverseKeyMap := make(map[string]string, len(opts.KeyMap))
	for long, short := range opts.KeyMap {
		inverseKeyMap[short] = long
	}

	nodes := map[int]*tree.Node{0: target}

	for idx, rc := range records {
		generation := idx + 1

		parent, ok := nodes[rc.Parent]
		if !ok {
			return ie.Usage("record %d refers to unknown parent %d", generation, rc.Parent)
		}

		var nd *tree.Node
		var err error

		switch data := rc.Data.(type) {
		case string:
			nd, err = parent.Add(data)
		case map[string]interface{}:
			nd, err = addEntry(parent, uncompressEntry(data, inverseKeyMap, opts.ValueMap), opts.Mapper)
		default:
			ref, isRef := asInt(data)
			if !isRef {
				return ie.Usage("record %d has unsupported data %v (%T)", generation, data, data)
			}

			first, ok := nodes[ref]
			if !ok || ref == 0 {
				return ie.Usage("record %d refers to unknown clone %d", generation, ref)
			}

			nd, err = parent.AddCopy(first, tree.Append, false)
		}

		if err != nil {
			return e.Wrapf(err, "record %d", generation)
		}

		nodes[generation] = nd
	}

	return nil
}

func addEntry(parent *tree.Node, data map[string]interface{}, mapper DeserializeMapper) (*tree.Node, error) {
	opts := tree.AddOptions{}
	if id, ok := data[keyIdentity].(string); ok {
		opts.Identity = tree.IdentityKey(id)
	}

	if kind, ok := data[keyKind].(string); ok {
		opts.Kind = kind
	}

	if str, ok := data[keyString].(string); ok {
		return parent.AddWith(str, opts)
	}

	if mapper == nil {
		return nil, ie.Usage("need a deserialize mapper for %v", data)
	}

	payload, err := mapper(parent, data)
	if err != nil {
		return nil, err
	}

	return parent.AddWith(payload, opts)
}

////////////// VALUE HELPERS //////////////

// asInt accepts the integer types the JSON and YAML decoders produce.
func asInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := strconv.Atoi(v.String())
		return n, err == nil
	default:
		return 0, false
	}
}

// normalize converts the map[interface{}]interface{} values of yaml.v2
// into map[string]interface{} and json.Number into int or float64.
func normalize(value interface{}) interface{} {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}

		f, _ := v.Float64()
		return f
	case map[interface{}]interface{}:
		conv := make(map[string]interface{}, len(v))
		for key, val := range v {
			conv[fmt.Sprintf("%v", key)] = normalize(val)
		}
		return conv
	case map[string]interface{}:
		for key, val := range v {
			v[key] = normalize(val)
		}
		return v
	case []interface{}:
		for idx, val := range v {
			v[idx] = normalize(val)
		}
		return v
	default:
		return v
	}
}
