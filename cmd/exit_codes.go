package cmd

const (
	// Success is the same as EXIT_SUCCESS in C
	Success = iota

	// DiffFound is returned by »arbor diff --exit-code« if the trees differ
	// and by »arbor find« if nothing matched.
	DiffFound

	// BadArgs passed to cli; not our fault.
	BadArgs

	// BadSnapshot means a file could not be read as snapshot.
	BadSnapshot

	// CheckFailed means a loaded tree is internally inconsistent.
	CheckFailed

	// UnknownError is an uncategorized error, probably our fault.
	UnknownError
)
