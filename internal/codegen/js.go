package codegen

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode"
)

// quote returns s as a JavaScript string literal.
func quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		// strings always marshal
		return `""`
	}
	return string(b)
}

var identPart = regexp.MustCompile(`[A-Za-z0-9_$]+`)

// Identifier turns a component name into a valid JavaScript identifier:
// "my-button" becomes "MyButton".
func Identifier(name string) string {
	parts := identPart.FindAllString(name, -1)
	var sb strings.Builder
	for i, part := range parts {
		if i > 0 {
			r := []rune(part)
			r[0] = unicode.ToUpper(r[0])
			part = string(r)
		}
		sb.WriteString(part)
	}
	id := sb.String()
	if id == "" {
		return "Component"
	}
	if id[0] >= '0' && id[0] <= '9' {
		id = "_" + id
	}
	return id
}

// templateLiteralText escapes text for a JavaScript template literal.
func templateLiteralText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "`", "\\`")
	return strings.ReplaceAll(s, "${", "\\${")
}

// handlerPath matches handler expressions that name a function, such as
// "save" or "actions.save".
var handlerPath = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(\s*\.\s*[A-Za-z_$][A-Za-z0-9_$]*)*$`)
