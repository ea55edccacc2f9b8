package analysis

import (
	"sort"

	"github.com/gitgeistai/gitgeist-ai/analysis/models"
)

// Diff compares two snapshots of the same path and reports the structural
// delta. old may be nil for a newly seen file: everything declared counts as
// added, nothing as removed or modified.
//
// "Modified" means the recorded line range moved, a position proxy for
// content change: a pure reformat that shifts lines is indistinguishable from
// a real edit, and a rename reports as one remove plus one add. Both are
// accepted behavior.
func Diff(old, current *models.FileSnapshot) models.SemanticChangeSet {
	changes := models.SemanticChangeSet{}

	if old == nil {
		changes.FunctionsAdded = sortedNames(declarationsByName(current.Functions))
		changes.ClassesAdded = sortedNames(declarationsByName(current.Classes))
		changes.ImportsChanged = len(current.Imports) > 0
		return changes
	}

	changes.FunctionsAdded, changes.FunctionsRemoved, changes.FunctionsModified =
		diffDeclarations(old.Functions, current.Functions)
	changes.ClassesAdded, changes.ClassesRemoved, changes.ClassesModified =
		diffDeclarations(old.Classes, current.Classes)
	changes.ImportsChanged = importsDiffer(old.Imports, current.Imports)

	return changes
}

func diffDeclarations(old, current []models.Declaration) (added, removed, modified []string) {
	oldByName := declarationsByName(old)
	currentByName := declarationsByName(current)

	for name := range currentByName {
		if _, ok := oldByName[name]; !ok {
			added = append(added, name)
		}
	}
	for name, before := range oldByName {
		after, ok := currentByName[name]
		if !ok {
			removed = append(removed, name)
			continue
		}
		if before.StartLine != after.StartLine || before.EndLine != after.EndLine {
			modified = append(modified, name)
		}
	}

	sort.Strings(added)
	sort.Strings(removed)
	sort.Strings(modified)
	return added, removed, modified
}

// declarationsByName collapses duplicate declarations of the same name at
// any scope to the last one in source order.
func declarationsByName(decls []models.Declaration) map[string]models.Declaration {
	byName := make(map[string]models.Declaration, len(decls))
	for _, d := range decls {
		byName[d.Name] = d
	}
	return byName
}

func sortedNames(byName map[string]models.Declaration) []string {
	if len(byName) == 0 {
		return nil
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// importsDiffer compares imports as unordered sets of raw statement text.
// Any addition, removal or textual edit flips the flag; there is no finer
// granularity.
func importsDiffer(old, current []models.ImportStatement) bool {
	oldSet := importSet(old)
	currentSet := importSet(current)
	if len(oldSet) != len(currentSet) {
		return true
	}
	for stmt := range currentSet {
		if !oldSet[stmt] {
			return true
		}
	}
	return false
}

func importSet(imports []models.ImportStatement) map[string]bool {
	set := make(map[string]bool, len(imports))
	for _, imp := range imports {
		set[imp.Statement] = true
	}
	return set
}
