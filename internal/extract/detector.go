package extract

import (
	"regexp"
	"strings"
)

// Detector names form a closed set; downstream consumers key on them.
const (
	DetectorBTC             = "BTC"
	DetectorETH             = "ETH"
	DetectorTRON            = "TRON"
	DetectorIBAN            = "IBAN"
	DetectorBeneficiaryName = "BENEFICIARY_NAME"
	DetectorBankName        = "BANK_NAME"
)

// Match is one raw detector hit inside a page's visible text.
type Match struct {
	// Value is the matched identifier, trimmed.
	Value string

	// Start and End are byte offsets of the match in the scanned text,
	// used to cut the context snippet.
	Start int
	End   int
}

// Detector applies one compiled pattern to visible text.
//
// Design decision: detectors are data (pattern plus optional validator)
// rather than an interface with one implementation per type because:
//  1. Every detector does the same thing: regex scan, validate, collect
//  2. The battery stays a literal slice, so its order is obvious
//  3. Adding a detector is one entry, not a new type
type Detector struct {
	// name identifies the detector in findings.
	name string

	// pattern is the compiled detection regex.
	pattern *regexp.Regexp

	// group is the capture group holding the value; 0 means the whole
	// match. Labeled detectors capture the value after the label.
	group int

	// validate optionally rejects matches the regex alone cannot exclude.
	// Nil means every regex match is accepted.
	validate func(string) bool
}

// Name returns the detector name.
func (d *Detector) Name() string {
	return d.name
}

// Detect scans text and returns validated matches in position order.
func (d *Detector) Detect(text string) []Match {
	indexes := d.pattern.FindAllStringSubmatchIndex(text, -1)
	if len(indexes) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(indexes))
	for _, idx := range indexes {
		lo, hi := idx[2*d.group], idx[2*d.group+1]
		if lo < 0 || hi < 0 {
			continue
		}
		value := strings.TrimSpace(text[lo:hi])
		if value == "" {
			continue
		}
		if d.validate != nil && !d.validate(value) {
			continue
		}
		matches = append(matches, Match{Value: value, Start: lo, End: hi})
	}
	return matches
}

// DefaultDetectors returns the full detector battery in its canonical
// order. The order is part of the output contract: merged findings are
// sorted by this order within a page.
func DefaultDetectors() []*Detector {
	return []*Detector{
		{
			// Legacy P2PKH/P2SH addresses. Base58 excludes 0, O, I, l.
			name:    DetectorBTC,
			pattern: regexp.MustCompile(`\b[13][A-HJ-NP-Za-km-z1-9]{25,34}\b`),
		},
		{
			// Bech32 segwit addresses. The charset is case-insensitive on
			// the wire but mixed case is invalid, so the validator rejects
			// values using both.
			name:     DetectorBTC,
			pattern:  regexp.MustCompile(`(?i)\bbc1[qpzry9x8gf2tvdw0s3jn54khce6mua7l]{11,71}\b`),
			validate: isSingleCase,
		},
		{
			name:    DetectorETH,
			pattern: regexp.MustCompile(`\b0x[a-fA-F0-9]{40}\b`),
		},
		{
			name:    DetectorTRON,
			pattern: regexp.MustCompile(`\bT[1-9A-HJ-NP-Za-km-z]{33}\b`),
		},
		{
			name:    DetectorIBAN,
			pattern: regexp.MustCompile(`\b[A-Z]{2}[0-9]{2}[A-Z0-9]{10,30}\b`),
		},
		{
			name:     DetectorBeneficiaryName,
			pattern:  regexp.MustCompile(`(?i)\bbeneficiary(?:[\s_-]*name)?\s*[:=]\s*([^\n<>]{2,80})`),
			group:    1,
			validate: isPlausibleLabelValue,
		},
		{
			name:     DetectorBankName,
			pattern:  regexp.MustCompile(`(?i)\bbank(?:[\s_-]*name)?\s*[:=]\s*([^\n<>]{2,80})`),
			group:    1,
			validate: isPlausibleLabelValue,
		},
	}
}

// isSingleCase reports whether s avoids mixing upper and lower case.
// Bech32 forbids mixed case; a mixed-case bc1 string is noise.
func isSingleCase(s string) bool {
	return s == strings.ToLower(s) || s == strings.ToUpper(s)
}

// isPlausibleLabelValue filters captured label values down to things that
// could be a name: at least one letter, and not a bare form artifact like
// "required" or a lone placeholder character.
func isPlausibleLabelValue(s string) bool {
	hasLetter := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return false
	}
	switch strings.ToLower(strings.TrimRight(s, ".,;")) {
	case "required", "optional", "n/a", "none", "null", "undefined":
		return false
	}
	return true
}
