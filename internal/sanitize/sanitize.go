package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// plain decodes the entities the policy emits for characters that cannot
// form markup. Angle brackets stay escaped, and the replacer makes a single
// pass so "&amp;lt;" becomes "&lt;" and never "<".
var plain = strings.NewReplacer(
	"&amp;", "&",
	"&#39;", "'",
	"&#34;", `"`,
	"&quot;", `"`,
)

// Text strips markup from a single line of user input and trims it.
// The result never contains a raw "<" or ">", including when the input
// arrived entity encoded.
func Text(s string) string {
	return strings.TrimSpace(plain.Replace(strict.Sanitize(s)))
}

// Strings applies Text to every element, keeping order and length so
// empty entries remain visible to validation.
func Strings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = Text(s)
	}
	return out
}
