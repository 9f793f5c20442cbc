package widget

import "regexp"

var placeholder = regexp.MustCompile(`\{(\w+)\}`)

// Render replaces every {key} in tmpl with vars[key]. Unknown or empty keys
// render as "".
func Render(tmpl string, vars map[string]string) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		return vars[m[1:len(m)-1]]
	})
}
