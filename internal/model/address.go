package model

import (
	"regexp"
	"strings"
)

// Reverse-geocoded addresses come back with postal codes, state suffixes and
// the country name; none of that helps on a one-line punch list.
var (
	cepPattern     = regexp.MustCompile(`,?\s*\d{5}-\d{3}\s*,?`)
	statePattern   = regexp.MustCompile(`\s*-\s*[A-Z]{2}\s*,?`)
	countryPattern = regexp.MustCompile(`(?i),?\s*Brazil\s*$`)
	doubledComma   = regexp.MustCompile(`,\s*,`)
)

// CleanAddress strips CEP codes, trailing state abbreviations and the country
// suffix from a Brazilian address.
func CleanAddress(address string) string {
	if address == "" {
		return ""
	}
	cleaned := cepPattern.ReplaceAllString(address, "")
	cleaned = statePattern.ReplaceAllString(cleaned, "")
	cleaned = countryPattern.ReplaceAllString(cleaned, "")
	cleaned = doubledComma.ReplaceAllString(cleaned, ",")
	return strings.TrimSpace(cleaned)
}

// ShortSource compresses the vendor's verbose registration-method names down
// to badge length. Physical time-clock devices report a long communication
// string that collapses to a fixed label.
func ShortSource(label string) string {
	if strings.Contains(label, "Comunicação") {
		return "Ponto Físico"
	}
	short := strings.ReplaceAll(label, "Registro de ponto pelo ", "")
	short = strings.ReplaceAll(short, "aplicativo ", "")
	short = strings.ReplaceAll(short, "Inserção por ", "")
	return short
}
