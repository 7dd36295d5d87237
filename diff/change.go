package diff

import (
	"fmt"

	"github.com/sahib/arbor/tree"
)

// Keys of the node metadata written by Diff.
const (
	// MetaClass holds the Classification of a node.
	MetaClass = "dc"
	// MetaModified is set when the Compare option reported a change.
	// It is either true or a string describing the change.
	MetaModified = "dc_modified"
	// MetaOrder holds the [2]int{oldIndex, newIndex} of a reordered node.
	MetaOrder = "dc_order"
	// MetaRenumbered is set on a parent whose children were reordered.
	MetaRenumbered = "dc_renumbered"
	// MetaCleared is set when a node lost all of its children.
	MetaCleared = "dc_cleared"
)

// Classification says what happened to a node between two trees.
type Classification uint8

const (
	// ClassNone means that the node exists at the same place in both trees.
	ClassNone = Classification(iota)
	// ClassAdded is a node that only exists in the new tree.
	ClassAdded
	// ClassRemoved is a node that only exists in the old tree.
	ClassRemoved
	// ClassMovedHere is the new position of a moved node.
	ClassMovedHere
	// ClassMovedTo is the old position of a moved node.
	ClassMovedTo
)

var classToString = map[Classification]string{
	ClassNone:      "none",
	ClassAdded:     "added",
	ClassRemoved:   "removed",
	ClassMovedHere: "moved-here",
	ClassMovedTo:   "moved-to",
}

var classToLabel = map[Classification]string{
	ClassAdded:     "Added",
	ClassRemoved:   "Removed",
	ClassMovedHere: "Moved here",
	ClassMovedTo:   "Moved away",
}

// String will convert a Classification to a human readable form
func (cl Classification) String() string {
	if name, ok := classToString[cl]; ok {
		return name
	}

	return fmt.Sprintf("class(%d)", cl)
}

// Label is the capitalized form used by NodeFormatter.
func (cl Classification) Label() string {
	if label, ok := classToLabel[cl]; ok {
		return label
	}

	return cl.String()
}

// ClassOf returns the classification Diff assigned to `nd`.
func ClassOf(nd *tree.Node) Classification {
	cl, ok := nd.Meta(MetaClass).(Classification)
	if !ok {
		return ClassNone
	}

	return cl
}

// OrderOf returns the old and new sibling index of a reordered node.
// `ok` is false if the node kept its position (or ordering was not checked).
func OrderOf(nd *tree.Node) (oldIdx, newIdx int, ok bool) {
	order, ok := nd.Meta(MetaOrder).([2]int)
	if !ok {
		return 0, 0, false
	}

	return order[0], order[1], true
}

// IsModified checks if the Compare option reported a change for `nd`.
func IsModified(nd *tree.Node) bool {
	switch v := nd.Meta(MetaModified).(type) {
	case bool:
		return v
	case string:
		return true
	default:
		return false
	}
}

// IsChanged reports whether `nd` carries any change annotation
// that survives Options.Reduce.
func IsChanged(nd *tree.Node) bool {
	if ClassOf(nd) != ClassNone || IsModified(nd) {
		return true
	}

	_, _, reordered := OrderOf(nd)
	return reordered
}
