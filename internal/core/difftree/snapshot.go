package difftree

// Snapshot is the JSON form of a set of files plus an optional commit
// message. It is read by `sift load` and written back with the final
// selection.
type Snapshot struct {
	Message string `json:"message,omitempty"`
	Files   []File `json:"files"`
}

// Build validates the snapshot's files into a Tree.
func (s Snapshot) Build() (*Tree, error) {
	return New(s.Files)
}
