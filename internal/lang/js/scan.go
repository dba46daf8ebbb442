package js

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	tsxlang "github.com/smacker/go-tree-sitter/typescript/tsx"
	tslang "github.com/smacker/go-tree-sitter/typescript/typescript"
)

type SpecifierKind string

const (
	KindImport        SpecifierKind = "import"
	KindExport        SpecifierKind = "export"
	KindDynamicImport SpecifierKind = "dynamic-import"
	KindRequire       SpecifierKind = "require"
)

// Specifier is one quoted module specifier in a source file. Start and End
// are byte offsets of the literal including its quotes.
type Specifier struct {
	Kind          SpecifierKind
	Raw           string
	Value         string
	Start         int
	End           int
	Line          int
	Column        int
	HasAttributes bool
}

// Resolvable reports whether the specifier takes part in ESM resolution.
// require() calls are left to the CommonJS conversion.
func (s Specifier) Resolvable() bool {
	return s.Kind != KindRequire
}

type FileScan struct {
	Path       string
	Specifiers []Specifier
	ParseError bool
}

var supportedExtensions = map[string]bool{
	".js":  true,
	".cjs": true,
	".mjs": true,
	".jsx": true,
	".ts":  true,
	".mts": true,
	".cts": true,
	".tsx": true,
}

var skipDirectories = map[string]bool{
	".git":         true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"out":          true,
	"coverage":     true,
	"vendor":       true,
	".next":        true,
	".turbo":       true,
}

func IsSupportedFile(path string) bool {
	if strings.HasSuffix(strings.ToLower(path), ".d.ts") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	return supportedExtensions[ext]
}

// SkipDirectory reports whether a directory never holds project sources.
func SkipDirectory(name string) bool {
	return skipDirectories[name]
}

// Scanner extracts specifiers from JS/TS sources. It is safe for concurrent
// use, every call gets its own tree-sitter parser.
type Scanner struct {
	parser *sourceParser
}

func NewScanner() *Scanner {
	return &Scanner{parser: newSourceParser()}
}

func (s *Scanner) Scan(ctx context.Context, path string, content []byte) (FileScan, error) {
	tree, err := s.parser.Parse(ctx, path, content)
	if err != nil {
		return FileScan{}, err
	}
	if tree == nil {
		return FileScan{}, fmt.Errorf("tree-sitter returned nil tree for %s", path)
	}
	root := tree.RootNode()
	return FileScan{
		Path:       path,
		Specifiers: collectSpecifiers(root, content),
		ParseError: root.HasError(),
	}, nil
}

type sourceParser struct {
	js  *sitter.Language
	ts  *sitter.Language
	tsx *sitter.Language
}

func newSourceParser() *sourceParser {
	return &sourceParser{
		js:  javascript.GetLanguage(),
		ts:  tslang.GetLanguage(),
		tsx: tsxlang.GetLanguage(),
	}
}

func (p *sourceParser) Parse(ctx context.Context, path string, content []byte) (*sitter.Tree, error) {
	lang, err := p.languageForPath(path)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	return parser.ParseCtx(ctx, nil, content)
}

func (p *sourceParser) languageForPath(path string) (*sitter.Language, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".js", ".cjs", ".mjs", ".jsx":
		return p.js, nil
	case ".ts", ".mts", ".cts":
		return p.ts, nil
	case ".tsx":
		return p.tsx, nil
	default:
		return nil, fmt.Errorf("unsupported extension: %s", ext)
	}
}

func collectSpecifiers(root *sitter.Node, content []byte) []Specifier {
	specifiers := make([]Specifier, 0)
	walkNode(root, func(node *sitter.Node) {
		switch node.Type() {
		case "import_statement":
			if spec, ok := parseDeclarationSource(node, content, KindImport); ok {
				specifiers = append(specifiers, spec)
			}
		case "export_statement":
			if spec, ok := parseDeclarationSource(node, content, KindExport); ok {
				specifiers = append(specifiers, spec)
			}
		case "call_expression":
			if spec, ok := parseCallSource(node, content); ok {
				specifiers = append(specifiers, spec)
			}
		}
	})
	return specifiers
}

func parseDeclarationSource(node *sitter.Node, content []byte, kind SpecifierKind) (Specifier, bool) {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil || sourceNode.Type() != "string" {
		return Specifier{}, false
	}
	spec, ok := makeSpecifier(sourceNode, content, kind)
	if !ok {
		return Specifier{}, false
	}
	spec.HasAttributes = hasAttributeClause(node, sourceNode, content)
	return spec, true
}

func parseCallSource(node *sitter.Node, content []byte) (Specifier, bool) {
	functionNode := node.ChildByFieldName("function")
	if functionNode == nil {
		return Specifier{}, false
	}

	var kind SpecifierKind
	switch {
	case functionNode.Type() == "import":
		kind = KindDynamicImport
	case functionNode.Type() == "identifier" && nodeText(functionNode, content) == "require":
		kind = KindRequire
	default:
		return Specifier{}, false
	}

	argumentsNode := node.ChildByFieldName("arguments")
	if argumentsNode == nil || argumentsNode.NamedChildCount() == 0 {
		return Specifier{}, false
	}
	first := argumentsNode.NamedChild(0)
	if first.Type() != "string" {
		return Specifier{}, false
	}
	spec, ok := makeSpecifier(first, content, kind)
	if !ok {
		return Specifier{}, false
	}
	// import('./data.json', { with: { type: 'json' } })
	spec.HasAttributes = kind == KindDynamicImport && argumentsNode.NamedChildCount() > 1
	return spec, true
}

func makeSpecifier(node *sitter.Node, content []byte, kind SpecifierKind) (Specifier, bool) {
	value, ok := extractStringLiteral(node, content)
	if !ok {
		return Specifier{}, false
	}
	return Specifier{
		Kind:   kind,
		Raw:    nodeText(node, content),
		Value:  value,
		Start:  int(node.StartByte()),
		End:    int(node.EndByte()),
		Line:   int(node.StartPoint().Row) + 1,
		Column: int(node.StartPoint().Column) + 1,
	}, true
}

// hasAttributeClause detects `with { … }` and the legacy `assert { … }`
// after the source of a declaration. Grammars that predate attributes end
// the statement early and leave the clause as error tokens, so when the
// parse around the statement failed the text following the source is
// checked too.
func hasAttributeClause(statement *sitter.Node, source *sitter.Node, content []byte) bool {
	if firstNamedChildOfType(statement, "import_attribute", "import_assertion") != nil {
		return true
	}
	if !hasErrorNearby(statement) {
		return false
	}
	end := int(source.EndByte()) + attributeLookahead
	if end > len(content) {
		end = len(content)
	}
	rest := strings.TrimSpace(string(content[source.EndByte():end]))
	return startsWithKeyword(rest, "with") || startsWithKeyword(rest, "assert")
}

const attributeLookahead = 32

func hasErrorNearby(statement *sitter.Node) bool {
	if statement.HasError() {
		return true
	}
	if parent := statement.Parent(); parent != nil && parent.Type() == "ERROR" {
		return true
	}
	next := statement.NextSibling()
	return next != nil && (next.Type() == "ERROR" || next.HasError())
}

// startsWithKeyword reports whether text opens with keyword followed by
// the `{` of an attribute object.
func startsWithKeyword(text string, keyword string) bool {
	if !strings.HasPrefix(text, keyword) {
		return false
	}
	rest := text[len(keyword):]
	trimmed := strings.TrimLeft(rest, " \t\r\n")
	return trimmed != "" && trimmed[0] == '{'
}

func walkNode(node *sitter.Node, visit func(*sitter.Node)) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		visit(child)
		walkNode(child, visit)
	}
}

func extractStringLiteral(node *sitter.Node, content []byte) (string, bool) {
	if node == nil {
		return "", false
	}

	text := nodeText(node, content)
	if len(text) < 2 {
		return "", false
	}
	quote := text[0]
	if (quote != '"' && quote != '\'') || text[len(text)-1] != quote {
		return "", false
	}
	value := text[1 : len(text)-1]
	if value == "" {
		return "", false
	}
	return value, true
}

func nodeText(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	return string(content[node.StartByte():node.EndByte()])
}

func firstNamedChildOfType(node *sitter.Node, types ...string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		for _, typ := range types {
			if child.Type() == typ {
				return child
			}
		}
	}
	return nil
}
