package analysis

import (
	"testing"

	"github.com/gitgeistai/gitgeist-ai/analysis/models"
	"github.com/stretchr/testify/assert"
)

func snapshotWith(functions []models.Declaration, classes []models.Declaration, imports ...string) *models.FileSnapshot {
	s := &models.FileSnapshot{
		Path:      "pkg/module.py",
		Language:  LangPython,
		Functions: functions,
		Classes:   classes,
	}
	for i, imp := range imports {
		s.Imports = append(s.Imports, models.ImportStatement{Statement: imp, Line: i + 1})
	}
	return s
}

func TestDiff_NewFileEverythingAdded(t *testing.T) {
	current := snapshotWith(
		[]models.Declaration{{Name: "f", StartLine: 3, EndLine: 5}},
		[]models.Declaration{{Name: "C", StartLine: 7, EndLine: 12}},
		"import os",
	)

	changes := Diff(nil, current)

	assert.Equal(t, []string{"f"}, changes.FunctionsAdded)
	assert.Equal(t, []string{"C"}, changes.ClassesAdded)
	assert.Empty(t, changes.FunctionsRemoved)
	assert.Empty(t, changes.FunctionsModified)
	assert.Empty(t, changes.ClassesRemoved)
	assert.Empty(t, changes.ClassesModified)
	assert.True(t, changes.ImportsChanged)
}

func TestDiff_NewFileWithoutImports(t *testing.T) {
	changes := Diff(nil, snapshotWith(nil, nil))
	assert.True(t, changes.IsEmpty())
}

func TestDiff_IdenticalSnapshotsEmpty(t *testing.T) {
	old := snapshotWith(
		[]models.Declaration{{Name: "f", StartLine: 1, EndLine: 3}},
		[]models.Declaration{{Name: "C", StartLine: 5, EndLine: 9}},
		"import os",
	)
	current := snapshotWith(
		[]models.Declaration{{Name: "f", StartLine: 1, EndLine: 3}},
		[]models.Declaration{{Name: "C", StartLine: 5, EndLine: 9}},
		"import os",
	)

	changes := Diff(old, current)
	assert.True(t, changes.IsEmpty())
	assert.False(t, changes.ImportsChanged)
}

func TestDiff_Idempotence(t *testing.T) {
	old := snapshotWith([]models.Declaration{{Name: "f", StartLine: 1, EndLine: 3}}, nil)
	current := snapshotWith([]models.Declaration{{Name: "f", StartLine: 2, EndLine: 4}}, nil)

	first := Diff(old, current)
	assert.False(t, first.IsEmpty())

	second := Diff(current, current)
	assert.True(t, second.IsEmpty())
}

func TestDiff_RenameIsRemovePlusAdd(t *testing.T) {
	old := snapshotWith([]models.Declaration{{Name: "f", StartLine: 1, EndLine: 3}}, nil)
	current := snapshotWith([]models.Declaration{{Name: "g", StartLine: 1, EndLine: 3}}, nil)

	changes := Diff(old, current)
	assert.Equal(t, []string{"g"}, changes.FunctionsAdded)
	assert.Equal(t, []string{"f"}, changes.FunctionsRemoved)
	assert.Empty(t, changes.FunctionsModified)
}

func TestDiff_AddedFunctionOnly(t *testing.T) {
	old := snapshotWith([]models.Declaration{{Name: "f", StartLine: 1, EndLine: 3}}, nil)
	current := snapshotWith([]models.Declaration{
		{Name: "f", StartLine: 1, EndLine: 3},
		{Name: "g", StartLine: 5, EndLine: 7},
	}, nil)

	changes := Diff(old, current)
	assert.Equal(t, []string{"g"}, changes.FunctionsAdded)
	assert.Empty(t, changes.FunctionsRemoved)
	assert.Empty(t, changes.FunctionsModified)
}

func TestDiff_LineShiftIsModified(t *testing.T) {
	old := snapshotWith(
		[]models.Declaration{{Name: "f", StartLine: 1, EndLine: 3}},
		[]models.Declaration{{Name: "C", StartLine: 10, EndLine: 20}},
	)
	current := snapshotWith(
		[]models.Declaration{{Name: "f", StartLine: 1, EndLine: 4}},
		[]models.Declaration{{Name: "C", StartLine: 11, EndLine: 21}},
	)

	changes := Diff(old, current)
	assert.Equal(t, []string{"f"}, changes.FunctionsModified)
	// Classes track modification symmetrically with functions.
	assert.Equal(t, []string{"C"}, changes.ClassesModified)
	assert.Empty(t, changes.FunctionsAdded)
	assert.Empty(t, changes.FunctionsRemoved)
}

func TestDiff_ImportsAsUnorderedSet(t *testing.T) {
	old := snapshotWith(nil, nil, "import os", "import sys")
	reordered := snapshotWith(nil, nil, "import sys", "import os")
	assert.False(t, Diff(old, reordered).ImportsChanged)

	edited := snapshotWith(nil, nil, "import os", "import sys as system")
	assert.True(t, Diff(old, edited).ImportsChanged)

	removed := snapshotWith(nil, nil, "import os")
	assert.True(t, Diff(old, removed).ImportsChanged)
}

func TestDiff_DuplicateNamesLastWins(t *testing.T) {
	old := snapshotWith([]models.Declaration{{Name: "f", StartLine: 5, EndLine: 6}}, nil)
	// Two declarations of f; the later one carries the compared range.
	current := snapshotWith([]models.Declaration{
		{Name: "f", StartLine: 1, EndLine: 2},
		{Name: "f", StartLine: 5, EndLine: 6},
	}, nil)

	changes := Diff(old, current)
	assert.True(t, changes.IsEmpty())
}
