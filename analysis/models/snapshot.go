package models

// Declaration is a named construct (function or class) with its recorded
// line range in the source file.
type Declaration struct {
	Name      string `json:"name"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// ImportStatement is the raw text of one import and the line it starts on.
type ImportStatement struct {
	Statement string `json:"statement"`
	Line      int    `json:"line"`
}

// FileSnapshot is the structural summary of one file at a point in time.
// Snapshots are replaced, never mutated in place; the aggregator owns the
// cache of the latest snapshot per path.
type FileSnapshot struct {
	Path       string            `json:"path"`
	Language   string            `json:"language"`
	Functions  []Declaration     `json:"functions"`
	Classes    []Declaration     `json:"classes"`
	Imports    []ImportStatement `json:"imports"`
	TotalLines int               `json:"total_lines"`
}

// FunctionNames returns the declared function names in source order.
func (s *FileSnapshot) FunctionNames() []string {
	return declarationNames(s.Functions)
}

// ClassNames returns the declared class names in source order.
func (s *FileSnapshot) ClassNames() []string {
	return declarationNames(s.Classes)
}

func declarationNames(decls []Declaration) []string {
	names := make([]string, 0, len(decls))
	for _, d := range decls {
		names = append(names, d.Name)
	}
	return names
}
