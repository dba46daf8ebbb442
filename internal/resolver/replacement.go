package resolver

import (
	"fmt"
	"strings"
)

// AttributeKeyword selects the import attribute syntax emitted for JSON and
// CSS imports.
type AttributeKeyword string

const (
	AttributeWith   AttributeKeyword = "with"
	AttributeAssert AttributeKeyword = "assert"
)

func ParseAttributeKeyword(value string) (AttributeKeyword, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(AttributeWith):
		return AttributeWith, nil
	case string(AttributeAssert):
		return AttributeAssert, nil
	default:
		return "", fmt.Errorf("unknown attribute keyword: %s", value)
	}
}

// BuildImportAttribute appends a type attribute clause to the declaration,
// reusing its quote style: `'./a.json' with { type: 'json' }`.
func BuildImportAttribute(ref Reference, keyword AttributeKeyword) string {
	if keyword == "" {
		keyword = AttributeWith
	}
	kind := strings.TrimPrefix(ref.Extension, ".")
	return fmt.Sprintf("%s %s { type: %s%s%s }", ref.Declaration, keyword, ref.Quote, kind, ref.Quote)
}

// BuildExtendedImport inserts suffix right before the closing quote of the
// declaration. A trailing slash of the specifier and a leading slash of
// suffix collapse into one.
func BuildExtendedImport(ref Reference, suffix string) string {
	body := strings.TrimSuffix(ref.Declaration, ref.Quote)
	if strings.HasSuffix(body, "/") && strings.HasPrefix(suffix, "/") {
		suffix = suffix[1:]
	}
	return body + suffix + ref.Quote
}

// BuildDynamicImportAttribute is the import() call form of
// BuildImportAttribute: `'./a.json', { with: { type: 'json' } }`.
func BuildDynamicImportAttribute(ref Reference, keyword AttributeKeyword) string {
	if keyword == "" {
		keyword = AttributeWith
	}
	kind := strings.TrimPrefix(ref.Extension, ".")
	return fmt.Sprintf("%s, { %s: { type: %s%s%s } }", ref.Declaration, keyword, ref.Quote, kind, ref.Quote)
}
