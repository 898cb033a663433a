package instructions

import (
	"regexp"
	"strings"
)

// placeholderPattern matches {{name}} markers. Names are identifier-like;
// anything else is left alone.
var placeholderPattern = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_]*)\}\}`)

// Render resolves the named template and substitutes its user prompt with
// vars. The only error condition is an unknown template name.
func (b *Bundle) Render(name string, vars map[string]string) (string, error) {
	tmpl, err := b.Template(name)
	if err != nil {
		return "", err
	}
	return Substitute(tmpl.Prompt.User, vars), nil
}

// Substitute replaces every {{name}} placeholder that has a value in vars.
// Placeholders without a value stay verbatim so templates can be filled in
// several passes. The result is trimmed of surrounding whitespace.
func Substitute(text string, vars map[string]string) string {
	out := placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := match[2 : len(match)-2]
		if value, ok := vars[name]; ok {
			return value
		}
		return match
	})
	return strings.TrimSpace(out)
}
