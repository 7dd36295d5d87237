package tree

import (
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/cespare/xxhash"
)

// IdentityKey is derived from a payload and identifies clones:
// all nodes that share an IdentityKey reference the same logical value.
type IdentityKey string

// NodeKey identifies a single node within the lifetime of its tree.
// It is never reused, even after the node was removed.
type NodeKey uint64

// IdentityFunc calculates the identity key of a payload.
// It must be deterministic.
type IdentityFunc func(payload interface{}) IdentityKey

const (
	// RootIdentity is the identity key of the hidden root node.
	RootIdentity = IdentityKey("__root__")

	// RootKey is the node key of the hidden root node.
	// Regular nodes start counting at 1.
	RootKey = NodeKey(0)
)

// DefaultIdentity hashes the type and value of `payload` with xxhash.
// Pointer-like payloads (pointers, maps, slices, channels, funcs) are
// hashed by address, everything else by its formatted value.
func DefaultIdentity(payload interface{}) IdentityKey {
	hasher := xxhash.New()

	switch v := payload.(type) {
	case nil:
		io.WriteString(hasher, "<nil>")
	case string:
		io.WriteString(hasher, "string\x00"+v)
	case []byte:
		fmt.Fprintf(hasher, "bytes\x00%p", v)
	default:
		if isReferenceKind(reflect.ValueOf(payload).Kind()) {
			fmt.Fprintf(hasher, "%T\x00%p", payload, payload)
		} else {
			fmt.Fprintf(hasher, "%T\x00%v", payload, payload)
		}
	}

	return IdentityKey(strconv.FormatUint(hasher.Sum64(), 16))
}

func isReferenceKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	}

	return false
}

// sameRef reports whether `a` and `b` are the same payload reference.
// Reference kinds compare by address, comparable values by ==.
func sameRef(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	if isReferenceKind(va.Kind()) {
		if va.Kind() == reflect.Slice && va.Len() != vb.Len() {
			return false
		}

		return va.Pointer() == vb.Pointer()
	}

	if !va.Type().Comparable() {
		return false
	}

	return a == b
}

// payloadEqual compares payload values.
func payloadEqual(a, b interface{}) bool {
	return reflect.DeepEqual(a, b)
}
