package protocol

// RootDiff is the diff of the document's root map.
type RootDiff struct {
	Props Props `json:"props"`
}

// Patch carries everything a document needs to bring its local state in
// line with the changes a backend has applied.
type Patch struct {
	// Actor and Seq are set when the patch acknowledges one of the
	// receiving actor's own changes.
	Actor *ActorID `json:"actor,omitempty"`
	Seq   *uint64  `json:"seq,omitempty"`

	// Clock holds the highest change seq applied per actor.
	Clock map[ActorID]uint64 `json:"clock"`

	// Deps are the change hashes a new local change should depend on.
	Deps []ChangeHash `json:"deps"`

	// MaxOp is the highest op counter observed across all actors.
	MaxOp uint64 `json:"maxOp"`

	// PendingChanges counts changes buffered while their deps are missing.
	PendingChanges int `json:"pendingChanges"`

	Diffs RootDiff `json:"diffs"`
}
