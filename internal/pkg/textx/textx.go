/*
Package textx normalises free text typed by users (display names, contact names) before it is
stored: markup is stripped with a bluemonday strict policy and whitespace is collapsed.
*/
package textx

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func strictPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// CleanName removes any HTML from s, undoes the entity escaping bluemonday applies to
// plain text, and collapses runs of whitespace into single spaces.
func CleanName(s string) string {
	stripped := html.UnescapeString(strictPolicy().Sanitize(s))
	return strings.Join(strings.Fields(stripped), " ")
}

// CleanEmail trims and lower-cases an email address.
func CleanEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CleanNumber trims a phone number; inner formatting is kept as typed.
func CleanNumber(s string) string {
	return strings.TrimSpace(s)
}
