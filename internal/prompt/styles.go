package prompt

import (
	"fmt"
	"strings"
)

// Style selects the tone and length profile of a generated biography
type Style string

const (
	// StyleProfessional produces a formal 150-300 word biography
	StyleProfessional Style = "professional"
	// StyleSocial produces a short catchy bio under 160 characters
	StyleSocial Style = "social"
)

// Styles lists every supported style
func Styles() []Style {
	return []Style{StyleProfessional, StyleSocial}
}

// ParseStyle validates a user-supplied style string
func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleProfessional:
		return StyleProfessional, nil
	case StyleSocial:
		return StyleSocial, nil
	default:
		return "", fmt.Errorf("unknown style: %q (allowed: professional, social)", s)
	}
}

// Valid reports whether the style is one of the supported values
func (s Style) Valid() bool {
	return s == StyleProfessional || s == StyleSocial
}

func (s Style) String() string {
	return string(s)
}
