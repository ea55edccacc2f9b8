package models

// SemanticChangeSet is the typed delta between two snapshots of the same
// path. All fields except ImportsChanged are sorted name lists.
type SemanticChangeSet struct {
	FunctionsAdded    []string `json:"functions_added"`
	FunctionsRemoved  []string `json:"functions_removed"`
	FunctionsModified []string `json:"functions_modified"`
	ClassesAdded      []string `json:"classes_added"`
	ClassesRemoved    []string `json:"classes_removed"`
	ClassesModified   []string `json:"classes_modified"`
	ImportsChanged    bool     `json:"imports_changed"`
}

// IsEmpty reports whether the change set carries no structural change.
func (c *SemanticChangeSet) IsEmpty() bool {
	return len(c.FunctionsAdded) == 0 &&
		len(c.FunctionsRemoved) == 0 &&
		len(c.FunctionsModified) == 0 &&
		len(c.ClassesAdded) == 0 &&
		len(c.ClassesRemoved) == 0 &&
		len(c.ClassesModified) == 0 &&
		!c.ImportsChanged
}
