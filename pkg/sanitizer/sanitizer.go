// Package sanitizer normalizes free-text input before validation and
// storage so that lookups on names and codes are not defeated by
// whitespace or casing differences.
package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reNonAlphanum = regexp.MustCompile(`[^0-9A-Za-z]+`)
)

func trim(s string) string {
	return strings.TrimSpace(s)
}

func upper(s string) string {
	return strings.ToUpper(s)
}

func lower(s string) string {
	return strings.ToLower(s)
}

// SanitizeName normalizes display names such as room names: surrounding
// whitespace is dropped and inner runs of whitespace collapse to one
// space. Casing is preserved.
func SanitizeName(input string) string {
	return TrimAndNormalize(input)
}

// SanitizeLocation normalizes room locations the same way as names.
func SanitizeLocation(input string) string {
	return TrimAndNormalize(input)
}

// SanitizeDescription trims and collapses whitespace in long-form text.
func SanitizeDescription(input string) string {
	return TrimAndNormalize(input)
}

// SanitizePromoCode canonicalizes a promo code: uppercase with every
// non-alphanumeric rune removed, so "  spring-20 " and "SPRING20" are
// the same code.
func SanitizePromoCode(input string) string {
	p := Pipeline{
		trim,
		func(s string) string { return reNonAlphanum.ReplaceAllString(s, "") },
		upper,
	}
	return p.Apply(input)
}

// SanitizeUsername lowercases and trims a username.
func SanitizeUsername(input string) string {
	p := Pipeline{
		trim,
		lower,
	}
	return p.Apply(input)
}
