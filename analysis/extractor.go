package analysis

import (
	"context"
	"fmt"

	"github.com/gitgeistai/gitgeist-ai/analysis/models"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// anonymousName is the synthesized name for constructs without a declared
// name (arrow functions, function expressions, func literals).
const anonymousName = "anonymous"

// languageSpec defines which node kinds count as a function, class or import
// for one language, and the field that carries the declared name. The table
// is selected once per extraction, never re-branched per node.
type languageSpec struct {
	functionKinds map[string]bool
	classKinds    map[string]bool
	importKinds   map[string]bool
	nameField     string
}

func kindSet(kinds ...string) map[string]bool {
	set := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}

var languageSpecs = map[string]languageSpec{
	LangGo: {
		functionKinds: kindSet("function_declaration", "method_declaration", "func_literal"),
		classKinds:    kindSet("type_spec"),
		importKinds:   kindSet("import_spec"),
		nameField:     "name",
	},
	LangPython: {
		functionKinds: kindSet("function_definition"),
		classKinds:    kindSet("class_definition"),
		importKinds:   kindSet("import_statement", "import_from_statement"),
		nameField:     "name",
	},
	LangJavaScript: {
		functionKinds: kindSet("function_declaration", "generator_function_declaration", "function", "function_expression", "arrow_function", "method_definition"),
		classKinds:    kindSet("class_declaration", "class"),
		importKinds:   kindSet("import_statement"),
		nameField:     "name",
	},
	LangTypeScript: {
		functionKinds: kindSet("function_declaration", "generator_function_declaration", "function", "function_expression", "arrow_function", "method_definition", "function_signature"),
		classKinds:    kindSet("class_declaration", "abstract_class_declaration"),
		importKinds:   kindSet("import_statement"),
		nameField:     "name",
	},
	LangJava: {
		functionKinds: kindSet("method_declaration", "constructor_declaration"),
		classKinds:    kindSet("class_declaration", "interface_declaration", "enum_declaration"),
		importKinds:   kindSet("import_declaration"),
		nameField:     "name",
	},
	LangCSharp: {
		functionKinds: kindSet("method_declaration", "constructor_declaration", "local_function_statement"),
		classKinds:    kindSet("class_declaration", "interface_declaration", "struct_declaration"),
		importKinds:   kindSet("using_directive"),
		nameField:     "name",
	},
}

// Extractor turns source text into FileSnapshots using tree-sitter parsers,
// one per supported language, created once at construction.
type Extractor struct {
	parsers map[string]*sitter.Parser
}

// NewExtractor initializes parsers for every language with a spec table
// entry.
func NewExtractor() *Extractor {
	parsers := make(map[string]*sitter.Parser)
	for lang, grammar := range map[string]*sitter.Language{
		LangGo:         golang.GetLanguage(),
		LangPython:     python.GetLanguage(),
		LangJavaScript: javascript.GetLanguage(),
		LangTypeScript: typescript.GetLanguage(),
		LangJava:       java.GetLanguage(),
		LangCSharp:     csharp.GetLanguage(),
	} {
		parser := sitter.NewParser()
		parser.SetLanguage(grammar)
		parsers[lang] = parser
	}
	return &Extractor{parsers: parsers}
}

// Supported reports whether the extractor has a parser and spec table entry
// for the language tag.
func (e *Extractor) Supported(language string) bool {
	_, ok := e.parsers[language]
	return ok
}

// Extract parses source and walks the syntax tree into a FileSnapshot.
// A parse failure returns a nil snapshot; callers keep the previous snapshot
// and skip diffing for this cycle rather than treating the file as emptied.
func (e *Extractor) Extract(ctx context.Context, path string, source []byte, language string) (*models.FileSnapshot, error) {
	parser, ok := e.parsers[language]
	if !ok {
		return nil, fmt.Errorf("unsupported language %q for %s", language, path)
	}

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	spec := languageSpecs[language]

	snapshot := &models.FileSnapshot{
		Path:       path,
		Language:   language,
		TotalLines: int(root.EndPoint().Row) + 1,
	}

	// Pre-order walk with an explicit stack so deeply nested or generated
	// code cannot exhaust the call stack.
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		kind := node.Type()
		switch {
		case spec.functionKinds[kind]:
			snapshot.Functions = append(snapshot.Functions, declarationOf(node, source, spec.nameField))
		case spec.classKinds[kind]:
			snapshot.Classes = append(snapshot.Classes, declarationOf(node, source, spec.nameField))
		case spec.importKinds[kind]:
			snapshot.Imports = append(snapshot.Imports, models.ImportStatement{
				Statement: node.Content(source),
				Line:      int(node.StartPoint().Row) + 1,
			})
		}

		// Push children in reverse so the walk stays pre-order.
		for i := int(node.ChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, node.Child(i))
		}
	}

	return snapshot, nil
}

func declarationOf(node *sitter.Node, source []byte, nameField string) models.Declaration {
	name := anonymousName
	if nameNode := node.ChildByFieldName(nameField); nameNode != nil {
		name = nameNode.Content(source)
	}
	return models.Declaration{
		Name:      name,
		StartLine: int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
	}
}
