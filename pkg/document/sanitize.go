package document

import (
	"github.com/microcosm-cc/bluemonday"
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "id").Globally()
	p.AllowDataAttributes()
	return p
}

// Sanitize strips active content from src. The result is an HTML fragment:
// document, head and body elements are dropped.
func Sanitize(src string) string {
	return policy.Sanitize(src)
}
