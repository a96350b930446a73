package render

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"
)

// inlinePolicy keeps basic emphasis in notification text and strips
// everything else, attributes included.
var inlinePolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "i", "em", "strong")
	return p
}()

// InlineHTML sanitises s and marks the result safe for templates.
func InlineHTML(s string) template.HTML {
	return template.HTML(inlinePolicy.Sanitize(s))
}
