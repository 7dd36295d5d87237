package codec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	e "github.com/pkg/errors"
	ie "github.com/sahib/arbor/errors"
	"github.com/sahib/arbor/tree"
	"github.com/sahib/arbor/util/compression"
	"github.com/stretchr/testify/require"
)

// requireSameShape checks that both trees have the same nodes in the same
// order with the same clone and kind information.
func requireSameShape(t *testing.T, expected, got *tree.Tree) {
	require.Nil(t, got.SelfCheck())
	require.Equal(t, expected.Len(), got.Len())
	require.Equal(t, expected.CountUnique(), got.CountUnique())

	expNodes, gotNodes := []*tree.Node{}, []*tree.Node{}
	for nd := range expected.All() {
		expNodes = append(expNodes, nd)
	}

	for nd := range got.All() {
		gotNodes = append(gotNodes, nd)
	}

	require.Len(t, gotNodes, len(expNodes))
	for idx, expNd := range expNodes {
		gotNd := gotNodes[idx]
		require.Equal(t, expNd.Name(), gotNd.Name())
		require.Equal(t, expNd.Depth(), gotNd.Depth())
		require.Equal(t, expNd.IsClone(), gotNd.IsClone(), expNd.String())
		require.Equal(t, expNd.Kind(), gotNd.Kind())
		require.Equal(t, expNd.Identity(), gotNd.Identity())
	}
}

func TestToListFixture(t *testing.T) {
	fixture := tree.NewFixture(t, "fixture", true)

	records, err := ToList(fixture.Root(), EncodeOptions{})
	require.Nil(t, err)
	require.Equal(t, []Record{
		{0, "A"},
		{1, "a1"},
		{2, "a11"},
		{2, "a12"},
		{1, "a2"},
		{0, "B"},
		{6, "b1"},
		{7, 3},
		{7, "b11"},
	}, records)

	loaded := tree.New("loaded")
	require.Nil(t, FromList(loaded.Root(), records, DecodeOptions{}))
	requireSameShape(t, fixture, loaded)
}

func TestToListSubtree(t *testing.T) {
	fixture := tree.NewFixture(t, "fixture", false)
	a := tree.MustGet(t, fixture, "A")

	records, err := ToList(a, EncodeOptions{})
	require.Nil(t, err)
	require.Equal(t, []Record{{0, "a1"}, {1, "a11"}, {1, "a12"}, {0, "a2"}}, records)
}

func TestToListCustomIdentityAndKind(t *testing.T) {
	orig := tree.New("kinds")
	_, err := orig.Root().AppendChild("x", "custom")
	require.Nil(t, err)

	dept, err := orig.AddKind("dept", "dev")
	require.Nil(t, err)
	alice, err := dept.AddKind("person", "alice")
	require.Nil(t, err)

	// Same identity, but another kind: no back reference.
	lead, err := orig.AddKind("lead", "alice")
	require.Nil(t, err)

	// Same identity and kind: back reference.
	_, err = lead.AddCopy(alice, tree.Append, false)
	require.Nil(t, err)

	records, err := ToList(orig.Root(), EncodeOptions{KeyMap: DefaultKeyMap})
	require.Nil(t, err)
	require.Equal(t, []Record{
		{0, map[string]interface{}{"s": "x", "i": "custom"}},
		{0, map[string]interface{}{"s": "dev", "k": "dept"}},
		{2, map[string]interface{}{"s": "alice", "k": "person"}},
		{0, map[string]interface{}{"s": "alice", "k": "lead"}},
		{4, 3},
	}, records)

	loaded := tree.New("loaded")
	require.Nil(t, FromList(loaded.Root(), records, DecodeOptions{KeyMap: DefaultKeyMap}))
	requireSameShape(t, orig, loaded)

	// Without key map, the long names are used.
	records, err = ToList(orig.Root(), EncodeOptions{})
	require.Nil(t, err)
	require.Equal(t, map[string]interface{}{"str": "x", "data_id": "custom"}, records[0].Data)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		for _, algo := range []compression.AlgorithmType{compression.AlgoNone, compression.AlgoSnappy, compression.AlgoLZ4} {
			t.Run(fmt.Sprintf("%s-%s", format, algo), func(t *testing.T) {
				orig := tree.NewFixture(t, "fixture", true)
				_, err := orig.Root().AppendChild("custom", "my-id")
				require.Nil(t, err)

				buf := &bytes.Buffer{}
				err = Save(context.Background(), buf, orig, SaveOptions{
					Format:      format,
					Compression: algo,
					Meta:        map[string]interface{}{"author": "me", "$generator": "evil"},
				})
				require.Nil(t, err)

				loaded, header, err := Load(buf, LoadOptions{})
				require.Nil(t, err)
				require.Equal(t, "fixture", loaded.Name())
				require.Equal(t, "me", header["author"])
				require.Contains(t, header[HeaderGenerator], "arbor/")
				requireSameShape(t, orig, loaded)
			})
		}
	}
}

func TestSaveLoadEmpty(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		buf := &bytes.Buffer{}
		require.Nil(t, Save(context.Background(), buf, tree.New("empty"), SaveOptions{Format: format}))

		loaded, _, err := Load(buf, LoadOptions{Name: "renamed"})
		require.Nil(t, err)
		require.Equal(t, 0, loaded.Len())
		require.Equal(t, "renamed", loaded.Name())
	}
}

func TestSaveInsideAtomic(t *testing.T) {
	orig := tree.NewFixture(t, "locked", false)
	buf := &bytes.Buffer{}

	err := orig.Atomic(context.Background(), func(ctx context.Context) error {
		return Save(ctx, buf, orig, SaveOptions{})
	})

	require.Nil(t, err)
	require.NotZero(t, buf.Len())
}

func TestSaveLoadFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "arbor-codec-test")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "tree.json.snappy")
	orig := tree.NewFixture(t, "file", true)
	require.Nil(t, SaveFile(context.Background(), path, orig, SaveOptions{
		Compression: compression.AlgoSnappy,
	}))

	loaded, _, err := LoadFile(path, LoadOptions{})
	require.Nil(t, err)
	requireSameShape(t, orig, loaded)

	_, _, err = LoadFile(filepath.Join(dir, "nope"), LoadOptions{})
	require.True(t, os.IsNotExist(e.Cause(err)))
}

////////////

type person struct {
	GUID string
	Name string
	Role string
}

func (p *person) String() string {
	return p.Name
}

func personIdentity(payload interface{}) tree.IdentityKey {
	if p, ok := payload.(*person); ok {
		return tree.IdentityKey(p.GUID)
	}

	return tree.DefaultIdentity(payload)
}

func serializePerson(nd *tree.Node, data map[string]interface{}) (map[string]interface{}, error) {
	p, ok := nd.Payload().(*person)
	if !ok {
		return nil, fmt.Errorf("unexpected payload %T", nd.Payload())
	}

	data["guid"] = p.GUID
	data["name"] = p.Name
	data["role"] = p.Role
	return data, nil
}

func deserializePerson(parent *tree.Node, data map[string]interface{}) (interface{}, error) {
	return &person{
		GUID: fmt.Sprintf("%v", data["guid"]),
		Name: fmt.Sprintf("%v", data["name"]),
		Role: fmt.Sprintf("%v", data["role"]),
	}, nil
}

func TestMapperRoundTrip(t *testing.T) {
	orig := tree.NewWithOptions(tree.Options{Name: "org", Identity: personIdentity})
	dev := tree.MustAdd(t, orig.Root(), "dev")
	ops := tree.MustAdd(t, orig.Root(), "ops")

	alice := &person{GUID: "1", Name: "Alice", Role: "lead"}
	tree.MustAdd(t, dev, alice)
	tree.MustAdd(t, dev, &person{GUID: "2", Name: "Bob", Role: "dev"})
	tree.MustAdd(t, ops, alice)

	opts := SaveOptions{
		EncodeOptions: EncodeOptions{
			Mapper:   serializePerson,
			KeyMap:   map[string]string{"guid": "g", "name": "n", "role": "r"},
			ValueMap: map[string][]string{"role": {"dev", "lead"}},
		},
	}

	snap, err := Encode(orig, opts)
	require.Nil(t, err)
	require.Equal(t, map[string]interface{}{"g": "1", "n": "Alice", "r": 1}, snap.Nodes[1].Data)
	require.Equal(t, 2, snap.Nodes[4].Data)

	for _, format := range []Format{FormatJSON, FormatYAML} {
		opts.Format = format
		buf := &bytes.Buffer{}
		require.Nil(t, Save(context.Background(), buf, orig, opts))

		_, _, err = Load(bytes.NewReader(buf.Bytes()), LoadOptions{Identity: personIdentity})
		require.True(t, ie.IsUsage(err), "%v", err)

		loaded, _, err := Load(buf, LoadOptions{Identity: personIdentity, Mapper: deserializePerson})
		require.Nil(t, err)
		requireSameShape(t, orig, loaded)

		clones := loaded.FindByIdentity("1", 0)
		require.Len(t, clones, 2)
		require.True(t, clones[0].Payload() == clones[1].Payload())
		require.Equal(t, "lead", clones[0].Payload().(*person).Role)
	}
}

func TestEncodeNeedsMapper(t *testing.T) {
	orig := tree.New("ints")
	tree.MustAdd(t, orig.Root(), 42)

	_, err := Encode(orig, SaveOptions{})
	require.True(t, ie.IsUsage(err))
}

func TestLoadErrors(t *testing.T) {
	orig := tree.NewFixture(t, "broken", false)
	snap, err := Encode(orig, SaveOptions{})
	require.Nil(t, err)

	data, err := json.Marshal(snap)
	require.Nil(t, err)

	// Tampered node list.
	tampered := bytes.Replace(data, []byte(`"a12"`), []byte(`"a13"`), 1)
	_, _, err = Load(bytes.NewReader(tampered), LoadOptions{})
	require.Equal(t, ErrChecksum, e.Cause(err))

	loaded, _, err := Load(bytes.NewReader(tampered), LoadOptions{SkipVerify: true})
	require.Nil(t, err)
	require.True(t, loaded.Contains("a13"))

	// Foreign generator.
	foreign := bytes.Replace(data, []byte(`arbor/`), []byte(`other/`), 1)
	_, _, err = Load(bytes.NewReader(foreign), LoadOptions{})
	require.Equal(t, ErrBadSnapshot, e.Cause(err))

	// Not a snapshot at all.
	_, _, err = Load(bytes.NewReader([]byte(`[1, 2, 3]`)), LoadOptions{})
	require.Equal(t, ErrBadSnapshot, e.Cause(err))

	// Broken parent references.
	err = FromList(tree.New("x").Root(), []Record{{5, "a"}}, DecodeOptions{})
	require.True(t, ie.IsUsage(err))

	err = FromList(tree.New("x").Root(), []Record{{0, "a"}, {0, 7}}, DecodeOptions{})
	require.True(t, ie.IsUsage(err))

	err = FromList(tree.New("x").Root(), []Record{{0, 1.5}}, DecodeOptions{})
	require.True(t, ie.IsUsage(err))
}

func TestDictList(t *testing.T) {
	orig := tree.NewFixture(t, "dict", true)

	list, err := ToDictList(orig.Root(), nil)
	require.Nil(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "A", list[0]["data"])

	loaded := tree.New("loaded")
	require.Nil(t, FromDictList(loaded.Root(), list, nil))
	requireSameShape(t, orig, loaded)

	// The generic form of a JSON round trip is accepted too.
	data, err := json.Marshal(list)
	require.Nil(t, err)

	generic := []interface{}{}
	require.Nil(t, json.Unmarshal(data, &generic))

	loaded = tree.New("generic")
	require.Nil(t, FromDictList(loaded.Root(), generic, nil))
	requireSameShape(t, orig, loaded)

	require.True(t, ie.IsUsage(FromDictList(loaded.Root(), "garbage", nil)))
}

func TestFormatFromString(t *testing.T) {
	for _, format := range []Format{FormatAuto, FormatJSON, FormatYAML} {
		parsed, err := FormatFromString(format.String())
		require.Nil(t, err)
		require.Equal(t, format, parsed)
	}

	_, err := FormatFromString("xml")
	require.NotNil(t, err)
}
