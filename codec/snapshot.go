// Package codec implements the snapshot format of arbor trees.
//
// A snapshot is a header (the "meta" map) plus the compact list form of
// all nodes (see Record). Clones are written only once; later occurrences
// refer back to the first one, so clone relationships survive a round
// trip. Snapshots can be encoded as JSON or YAML and are optionally
// compressed with snappy or lz4.
package codec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	e "github.com/pkg/errors"
	"github.com/sahib/arbor/tree"
	"github.com/sahib/arbor/util/compression"
	"github.com/sahib/arbor/util/hashlib"
	"github.com/sahib/arbor/version"
	log "github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"
)

// Well known header keys.
const (
	HeaderGenerator     = "$generator"
	HeaderFormatVersion = "$format_version"
	HeaderChecksum      = "$checksum"
	HeaderName          = "$name"
	HeaderKeyMap        = "$key_map"
	HeaderValueMap      = "$value_map"
)

var (
	// ErrBadSnapshot is returned for data that is not an arbor snapshot.
	ErrBadSnapshot = errors.New("invalid snapshot")

	// ErrChecksum is returned when the stored checksum does not match.
	ErrChecksum = errors.New("snapshot checksum mismatch")
)

// Format is the encoding of a snapshot.
type Format uint8

const (
	// FormatAuto detects the format when loading and means JSON when saving.
	FormatAuto = Format(iota)
	// FormatJSON encodes snapshots as JSON.
	FormatJSON
	// FormatYAML encodes snapshots as YAML.
	FormatYAML
)

var formatToString = map[Format]string{
	FormatAuto: "auto",
	FormatJSON: "json",
	FormatYAML: "yaml",
}

func (f Format) String() string {
	if name, ok := formatToString[f]; ok {
		return name
	}

	return "unknown"
}

// FormatFromString parses "auto", "json" or "yaml".
func FormatFromString(s string) (Format, error) {
	for format, name := range formatToString {
		if name == s {
			return format, nil
		}
	}

	return FormatAuto, fmt.Errorf("unknown snapshot format: %q", s)
}

// Header holds the snapshot meta data.
type Header map[string]interface{}

// Snapshot is the decoded form of a snapshot file.
type Snapshot struct {
	Meta  Header   `json:"meta" yaml:"meta"`
	Nodes []Record `json:"nodes" yaml:"nodes"`
}

// SaveOptions tunes Encode and Save.
type SaveOptions struct {
	EncodeOptions

	// Format defaults to JSON.
	Format Format

	// Compression of the encoded snapshot.
	Compression compression.AlgorithmType

	// NoKeyMap disables DefaultKeyMap if KeyMap is nil.
	NoKeyMap bool

	// Meta is merged into the header. Keys starting with "$" are reserved.
	Meta map[string]interface{}
}

// LoadOptions tunes Decode and Load.
type LoadOptions struct {
	// Mapper is needed if the snapshot was saved with a SerializeMapper.
	Mapper DeserializeMapper

	// Format of the input; detected if FormatAuto.
	Format Format

	// Name of the new tree; the stored name is used if empty.
	Name string

	// Identity of the new tree; see tree.Options.
	Identity tree.IdentityFunc

	// SkipVerify does not check the stored checksum.
	SkipVerify bool
}

func checksumOf(records []Record) (hashlib.Checksum, error) {
	if records == nil {
		// Empty node lists must hash the same, no matter how they were decoded.
		records = []Record{}
	}

	digest := hashlib.NewDigest()
	if err := json.NewEncoder(digest).Encode(records); err != nil {
		return nil, err
	}

	return digest.Checksum(), nil
}

// Encode converts `t` to a snapshot. It does not lock the tree;
// see Save for a locked variant.
func Encode(t *tree.Tree, opts SaveOptions) (*Snapshot, error) {
	encOpts := opts.EncodeOptions
	if encOpts.KeyMap == nil && !opts.NoKeyMap {
		encOpts.KeyMap = DefaultKeyMap
	}

	records, err := ToList(t.Root(), encOpts)
	if err != nil {
		return nil, err
	}

	checksum, err := checksumOf(records)
	if err != nil {
		return nil, e.Wrap(err, "checksum")
	}

	header := Header{}
	for key, value := range opts.Meta {
		if !strings.HasPrefix(key, "$") {
			header[key] = value
		}
	}

	header[HeaderGenerator] = version.Generator()
	header[HeaderFormatVersion] = version.FormatVersion
	header[HeaderChecksum] = checksum.String()
	header[HeaderName] = t.Name()

	if len(encOpts.KeyMap) > 0 {
		header[HeaderKeyMap] = encOpts.KeyMap
	}

	if len(encOpts.ValueMap) > 0 {
		header[HeaderValueMap] = encOpts.ValueMap
	}

	return &Snapshot{Meta: header, Nodes: records}, nil
}

func (hdr Header) stringMap(key string) (map[string]string, error) {
	conv := make(map[string]string)
	switch v := hdr[key].(type) {
	case nil:
		return conv, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		for mapKey, mapValue := range v {
			str, ok := mapValue.(string)
			if !ok {
				return nil, e.Wrapf(ErrBadSnapshot, "%s: %s is not a string", key, mapKey)
			}

			conv[mapKey] = str
		}

		return conv, nil
	default:
		return nil, e.Wrapf(ErrBadSnapshot, "%s is not a map", key)
	}
}

func (hdr Header) listMap(key string) (map[string][]string, error) {
	conv := make(map[string][]string)
	switch v := hdr[key].(type) {
	case nil:
		return conv, nil
	case map[string][]string:
		return v, nil
	case map[string]interface{}:
		for mapKey, mapValue := range v {
			list, ok := mapValue.([]interface{})
			if !ok {
				return nil, e.Wrapf(ErrBadSnapshot, "%s: %s is not a list", key, mapKey)
			}

			for _, item := range list {
				conv[mapKey] = append(conv[mapKey], fmt.Sprintf("%v", item))
			}
		}

		return conv, nil
	default:
		return nil, e.Wrapf(ErrBadSnapshot, "%s is not a map", key)
	}
}

// Decode validates `snap` and builds a new tree from it.
func Decode(snap *Snapshot, opts LoadOptions) (*tree.Tree, error) {
	if snap.Meta == nil {
		return nil, e.Wrap(ErrBadSnapshot, "no header")
	}

	generator, _ := snap.Meta[HeaderGenerator].(string)
	if !strings.HasPrefix(generator, "arbor/") {
		return nil, e.Wrapf(ErrBadSnapshot, "unknown generator %q", generator)
	}

	formatVersion, _ := snap.Meta[HeaderFormatVersion].(string)
	if majorOf(formatVersion) != majorOf(version.FormatVersion) {
		return nil, e.Wrapf(ErrBadSnapshot, "unsupported format version %q", formatVersion)
	}

	if checksum, ok := snap.Meta[HeaderChecksum].(string); ok && !opts.SkipVerify {
		expected, err := hashlib.Parse(checksum)
		if err != nil {
			return nil, e.Wrapf(ErrBadSnapshot, "bad checksum %q: %v", checksum, err)
		}

		got, err := checksumOf(snap.Nodes)
		if err != nil {
			return nil, e.Wrap(err, "checksum")
		}

		if !got.Equal(expected) {
			return nil, e.Wrapf(ErrChecksum, "expected %s, got %s", expected, got)
		}
	}

	keyMap, err := snap.Meta.stringMap(HeaderKeyMap)
	if err != nil {
		return nil, err
	}

	valueMap, err := snap.Meta.listMap(HeaderValueMap)
	if err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name, _ = snap.Meta[HeaderName].(string)
	}

	t := tree.NewWithOptions(tree.Options{Name: name, Identity: opts.Identity})
	err = FromList(t.Root(), snap.Nodes, DecodeOptions{
		Mapper:   opts.Mapper,
		KeyMap:   keyMap,
		ValueMap: valueMap,
	})

	if err != nil {
		return nil, err
	}

	return t, nil
}

func majorOf(v string) string {
	return strings.SplitN(v, ".", 2)[0]
}

// Save writes `t` to `w`. The tree is locked with Atomic() while it is
// converted, so `ctx` should be the context of the caller's Atomic()
// scope if there is one.
func Save(ctx context.Context, w io.Writer, t *tree.Tree, opts SaveOptions) error {
	var snap *Snapshot
	err := t.Atomic(ctx, func(ctx context.Context) error {
		var err error
		snap, err = Encode(t, opts)
		return err
	})

	if err != nil {
		return err
	}

	var data []byte
	switch opts.Format {
	case FormatAuto, FormatJSON:
		data, err = json.Marshal(snap)
	case FormatYAML:
		data, err = yaml.Marshal(snap)
	default:
		return fmt.Errorf("unknown snapshot format: %d", opts.Format)
	}

	if err != nil {
		return e.Wrap(err, "encode snapshot")
	}

	packed, err := compression.Pack(opts.Compression, data)
	if err != nil {
		return e.Wrap(err, "compress snapshot")
	}

	log.Debugf(
		"codec: saving %d records of %s (%s, %s, %d bytes)",
		len(snap.Nodes), t, opts.Format, opts.Compression, len(packed),
	)

	_, err = w.Write(packed)
	return err
}

// Load reads a snapshot written by Save and returns the new tree
// together with the snapshot header.
func Load(r io.Reader, opts LoadOptions) (*tree.Tree, Header, error) {
	packed, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}

	data, algo, err := compression.Unpack(packed)
	if err != nil {
		return nil, nil, e.Wrapf(err, "decompress snapshot (%s)", algo)
	}

	format := opts.Format
	if format == FormatAuto {
		format = detectFormat(data)
	}

	snap := &Snapshot{}
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, snap)
	case FormatYAML:
		err = yaml.Unmarshal(data, snap)
		if header, ok := normalize(map[string]interface{}(snap.Meta)).(map[string]interface{}); ok {
			snap.Meta = header
		}
	default:
		return nil, nil, fmt.Errorf("unknown snapshot format: %d", format)
	}

	if err != nil {
		return nil, nil, e.Wrapf(ErrBadSnapshot, "decode %s: %v", format, err)
	}

	t, err := Decode(snap, opts)
	if err != nil {
		return nil, nil, err
	}

	log.Debugf("codec: loaded %d records into %s (%s, %s)", len(snap.Nodes), t, format, algo)
	return t, snap.Meta, nil
}

func detectFormat(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}

	return FormatYAML
}

// SaveFile is Save for a file path.
func SaveFile(ctx context.Context, path string, t *tree.Tree, opts SaveOptions) error {
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if err := Save(ctx, fd, t, opts); err != nil {
		fd.Close()
		return err
	}

	return fd.Close()
}

// LoadFile is Load for a file path.
func LoadFile(path string, opts LoadOptions) (*tree.Tree, Header, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	defer fd.Close()
	return Load(fd, opts)
}
