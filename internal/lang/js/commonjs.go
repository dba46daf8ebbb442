package js

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// CommonJSResult is the outcome of converting top-level CommonJS module
// syntax to ESM.
type CommonJSResult struct {
	Content  []byte
	Requires int
	Exports  int
}

func (r CommonJSResult) Changed() bool {
	return r.Requires > 0 || r.Exports > 0
}

// ConvertCommonJS rewrites top-level `const x = require('y')` declarations
// into imports and `module.exports`/`exports` assignments into exports.
// `module.exports.default` becomes the default export. Nested requires,
// conditional exports, reserved-word names and a second differing
// assignment to an already exported name are left alone.
func (s *Scanner) ConvertCommonJS(ctx context.Context, path string, content []byte) (CommonJSResult, error) {
	tree, err := s.parser.Parse(ctx, path, content)
	if err != nil {
		return CommonJSResult{}, err
	}
	if tree == nil {
		return CommonJSResult{}, fmt.Errorf("tree-sitter returned nil tree for %s", path)
	}

	root := tree.RootNode()
	result := CommonJSResult{}
	edits := make([]Edit, 0)
	var defaultExports []*sitter.Node
	namedExports := make([]string, 0)
	exported := make(map[string]bool)

	for i := 0; i < int(root.NamedChildCount()); i++ {
		statement := root.NamedChild(i)
		switch statement.Type() {
		case "lexical_declaration", "variable_declaration":
			if text, ok := requireAsImport(statement, content); ok {
				edits = append(edits, Edit{Start: int(statement.StartByte()), End: int(statement.EndByte()), Text: text})
				result.Requires++
			}
		case "expression_statement":
			left, right, ok := moduleExportsAssignment(statement, content)
			if !ok {
				continue
			}
			if left == "" || left == "default" {
				defaultExports = append(defaultExports, statement)
				continue
			}
			if reservedWords[left] {
				continue
			}
			shorthand := nodeText(right, content) == left
			switch {
			case shorthand && exported[left]:
				edits = append(edits, removalEdit(statement, content))
			case shorthand:
				edits = append(edits, removalEdit(statement, content))
				namedExports = append(namedExports, left)
			case exported[left]:
				continue
			default:
				text := fmt.Sprintf("export const %s = %s%s", left, nodeText(right, content), terminator(statement, content))
				edits = append(edits, Edit{Start: int(statement.StartByte()), End: int(statement.EndByte()), Text: text})
			}
			exported[left] = true
			result.Exports++
		}
	}

	for i, statement := range defaultExports {
		if i < len(defaultExports)-1 {
			edits = append(edits, removalEdit(statement, content))
			continue
		}
		_, right, _ := moduleExportsAssignment(statement, content)
		text := fmt.Sprintf("export default %s%s", nodeText(right, content), terminator(statement, content))
		edits = append(edits, Edit{Start: int(statement.StartByte()), End: int(statement.EndByte()), Text: text})
		result.Exports++
	}

	if len(namedExports) > 0 {
		var tail strings.Builder
		if len(content) > 0 && content[len(content)-1] != '\n' {
			tail.WriteString("\n")
		}
		for _, name := range namedExports {
			fmt.Fprintf(&tail, "export { %s };\n", name)
		}
		edits = append(edits, Edit{Start: len(content), End: len(content), Text: tail.String()})
	}

	if len(edits) == 0 {
		result.Content = content
		return result, nil
	}
	converted, err := ApplyEdits(content, edits)
	if err != nil {
		return CommonJSResult{}, err
	}
	result.Content = converted
	return result, nil
}

func requireAsImport(statement *sitter.Node, content []byte) (string, bool) {
	declarators := make([]*sitter.Node, 0, 1)
	for i := 0; i < int(statement.NamedChildCount()); i++ {
		child := statement.NamedChild(i)
		if child.Type() == "variable_declarator" {
			declarators = append(declarators, child)
		}
	}
	if len(declarators) != 1 {
		return "", false
	}
	declarator := declarators[0]
	if declarator.ChildByFieldName("type") != nil {
		return "", false
	}

	source, ok := requireSource(declarator.ChildByFieldName("value"), content)
	if !ok {
		return "", false
	}

	nameNode := declarator.ChildByFieldName("name")
	if nameNode == nil {
		return "", false
	}
	var binding string
	switch nameNode.Type() {
	case "identifier":
		binding = nodeText(nameNode, content)
	case "object_pattern":
		names, ok := importSpecifiers(nameNode, content)
		if !ok {
			return "", false
		}
		binding = "{ " + strings.Join(names, ", ") + " }"
	default:
		return "", false
	}
	return fmt.Sprintf("import %s from %s%s", binding, source, terminator(statement, content)), true
}

// requireSource returns the quoted argument of a `require('…')` call.
func requireSource(value *sitter.Node, content []byte) (string, bool) {
	if value == nil || value.Type() != "call_expression" {
		return "", false
	}
	functionNode := value.ChildByFieldName("function")
	if functionNode == nil || functionNode.Type() != "identifier" || nodeText(functionNode, content) != "require" {
		return "", false
	}
	argumentsNode := value.ChildByFieldName("arguments")
	if argumentsNode == nil || argumentsNode.NamedChildCount() != 1 {
		return "", false
	}
	argument := argumentsNode.NamedChild(0)
	if argument.Type() != "string" {
		return "", false
	}
	if _, ok := extractStringLiteral(argument, content); !ok {
		return "", false
	}
	return nodeText(argument, content), true
}

func importSpecifiers(pattern *sitter.Node, content []byte) ([]string, bool) {
	names := make([]string, 0, pattern.NamedChildCount())
	for i := 0; i < int(pattern.NamedChildCount()); i++ {
		child := pattern.NamedChild(i)
		switch child.Type() {
		case "shorthand_property_identifier_pattern":
			names = append(names, nodeText(child, content))
		case "pair_pattern":
			key := child.ChildByFieldName("key")
			value := child.ChildByFieldName("value")
			if key == nil || value == nil || value.Type() != "identifier" {
				return nil, false
			}
			exportName := nodeText(key, content)
			localName := nodeText(value, content)
			if exportName == localName {
				names = append(names, exportName)
			} else {
				names = append(names, exportName+" as "+localName)
			}
		case "comment":
		default:
			// defaults and rest elements have no import equivalent
			return nil, false
		}
	}
	return names, len(names) > 0
}

// moduleExportsAssignment matches `module.exports = …` (name ""),
// `module.exports.name = …` and `exports.name = …`.
func moduleExportsAssignment(statement *sitter.Node, content []byte) (string, *sitter.Node, bool) {
	if statement.NamedChildCount() == 0 {
		return "", nil, false
	}
	assignment := statement.NamedChild(0)
	if assignment.Type() != "assignment_expression" {
		return "", nil, false
	}
	left := assignment.ChildByFieldName("left")
	right := assignment.ChildByFieldName("right")
	if left == nil || right == nil || left.Type() != "member_expression" {
		return "", nil, false
	}

	if isModuleExports(left, content) {
		return "", right, true
	}
	object := left.ChildByFieldName("object")
	property := left.ChildByFieldName("property")
	if object == nil || property == nil || !(isModuleExports(object, content) || isExportsIdentifier(object, content)) {
		return "", nil, false
	}
	if property.Type() != "property_identifier" {
		return "", nil, false
	}
	return nodeText(property, content), right, true
}

func isModuleExports(node *sitter.Node, content []byte) bool {
	if node.Type() != "member_expression" {
		return false
	}
	object := node.ChildByFieldName("object")
	property := node.ChildByFieldName("property")
	return object != nil && property != nil &&
		nodeText(object, content) == "module" && nodeText(property, content) == "exports"
}

func isExportsIdentifier(node *sitter.Node, content []byte) bool {
	return node.Type() == "identifier" && nodeText(node, content) == "exports"
}

var reservedWords = map[string]bool{
	"await": true, "break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "debugger": true, "delete": true,
	"do": true, "else": true, "enum": true, "export": true, "extends": true,
	"false": true, "finally": true, "for": true, "function": true, "if": true,
	"implements": true, "import": true, "in": true, "instanceof": true,
	"interface": true, "let": true, "new": true, "null": true, "package": true,
	"private": true, "protected": true, "public": true, "return": true,
	"static": true, "super": true, "switch": true, "this": true, "throw": true,
	"true": true, "try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "yield": true,
}

func terminator(statement *sitter.Node, content []byte) string {
	if strings.HasSuffix(nodeText(statement, content), ";") {
		return ";"
	}
	return ""
}

// removalEdit drops statement together with its line break.
func removalEdit(statement *sitter.Node, content []byte) Edit {
	end := int(statement.EndByte())
	if end < len(content) && content[end] == '\n' {
		end++
	}
	return Edit{Start: int(statement.StartByte()), End: end}
}
