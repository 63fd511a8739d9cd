package extract

import (
	"regexp"
	"strings"

	"github.com/clarionhq/clarion/core"
)

// Deterministic pattern matchers. The pattern path alone must be idempotent:
// the same document content always yields the same records in the same order.

var (
	emailRE = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Phone candidates: US formats, international with country code, and
	// short emergency codes (911, 112). Date-like and year-like runs are
	// filtered after normalization.
	phoneRE = regexp.MustCompile(`(?:\+\d{1,3}[-.\s]?)?(?:\(\d{2,4}\)[-.\s]?)?\d{2,4}[-.\s]\d{3,4}[-.\s]?\d{0,4}|\b1-8\d{2}-[A-Z0-9-]{3,}\b|\(\d{3}\)\s?\d{3}[-.\s]?\d{4}|\b\d{3}\b`)

	// Emergency context keywords close to a phone promote it to
	// EMERGENCY_PHONE classification.
	emergencyCtxRE = regexp.MustCompile(`(?i)\b(emergency|hotline|helpline|urgent|24/7|rescue|control room|dial)\b`)

	streetSuffixRE = regexp.MustCompile(`(?i)\b(St|Ave|Rd|Blvd|Ln|Cir|Dr|Ct|Pl|Sq|Street|Avenue|Road|Boulevard|Lane|Circle|Drive|Court|Place|Square)\b`)
	zipRE          = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)
	poBoxRE        = regexp.MustCompile(`(?i)\bP\.?O\.?\s*Box\b`)
	houseNumberRE  = regexp.MustCompile(`^\d+\s+\w+`)

	// Bare digit runs with no separators and no phone context are ambiguous
	// (could be a phone, an ID, a case number). They go to the AI backend
	// when one is configured.
	bareDigitsRE = regexp.MustCompile(`\b\d{6,9}\b`)

	nonDigitRE = regexp.MustCompile(`\D`)
)

// AmbiguousSpan is a text fragment the pattern matcher could not classify
// with confidence. Context carries the surrounding line for the AI backend.
type AmbiguousSpan struct {
	Text    string
	Context string
}

// NormalizePhone strips separators from a phone candidate, preserving a
// leading plus. The country hint supplies a prefix for bare national numbers
// ("US" prepends +1 to ten-digit values). Short emergency codes pass through
// untouched. Returns "" when the candidate cannot be a phone number.
func NormalizePhone(raw, country string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	plus := strings.HasPrefix(trimmed, "+")
	digits := nonDigitRE.ReplaceAllString(trimmed, "")
	if len(digits) == 0 {
		return ""
	}
	// Short codes (911, 112) are valid as-is.
	if len(digits) <= 3 {
		if digits == "911" || digits == "112" || digits == "999" {
			return digits
		}
		return ""
	}
	if len(digits) < 7 || len(digits) > 15 {
		return ""
	}
	// Four-digit years and date fragments survive the regex; drop them.
	if len(digits) == 8 && (strings.HasPrefix(digits, "19") || strings.HasPrefix(digits, "20")) && !plus {
		return ""
	}
	if plus {
		return "+" + digits
	}
	if strings.EqualFold(country, "US") && len(digits) == 10 {
		return "+1" + digits
	}
	if strings.EqualFold(country, "US") && len(digits) == 11 && strings.HasPrefix(digits, "1") {
		return "+" + digits
	}
	return digits
}

// ExtractPage runs every deterministic matcher over one document and returns
// classified records plus the spans that need AI resolution. Classification
// is line-oriented so emergency context stays local to the number it
// qualifies.
func ExtractPage(content, sourceURL string) ([]core.ContactRecord, []AmbiguousSpan) {
	var records []core.ContactRecord
	var ambiguous []AmbiguousSpan
	seenPhones := map[string]bool{}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		isEmergency := emergencyCtxRE.MatchString(line)

		for _, m := range phoneRE.FindAllString(line, -1) {
			normalized := NormalizePhone(m, "US")
			if normalized == "" || seenPhones[normalized] {
				continue
			}
			seenPhones[normalized] = true
			kind := core.ContactPhone
			confidence := 0.7
			if isEmergency || normalized == "911" || normalized == "112" {
				kind = core.ContactEmergencyPhone
				confidence = 0.9
			}
			records = append(records, core.ContactRecord{
				Kind:       kind,
				Value:      normalized,
				SourceURL:  sourceURL,
				Confidence: confidence,
			})
		}

		for _, m := range emailRE.FindAllString(line, -1) {
			records = append(records, core.ContactRecord{
				Kind:       core.ContactEmail,
				Value:      strings.ToLower(m),
				SourceURL:  sourceURL,
				Confidence: 0.9,
			})
		}

		if addr, ok := addressCandidate(line); ok {
			records = append(records, core.ContactRecord{
				Kind:       core.ContactAddress,
				Value:      addr,
				SourceURL:  sourceURL,
				Confidence: 0.6,
			})
		}

		// Digit runs without separators that did not normalize to a phone
		// stay ambiguous unless the line gave emergency context.
		if !isEmergency {
			for _, m := range bareDigitsRE.FindAllString(line, -1) {
				if seenPhones[m] {
					continue
				}
				ambiguous = append(ambiguous, AmbiguousSpan{Text: m, Context: line})
			}
		}
	}
	return records, ambiguous
}

// addressCandidate applies line heuristics: a street suffix, a postal code,
// a PO box, or a leading house number. Very short lines are rejected.
func addressCandidate(line string) (string, bool) {
	if len(line) < 16 {
		return "", false
	}
	if streetSuffixRE.MatchString(line) || poBoxRE.MatchString(line) ||
		(houseNumberRE.MatchString(line) && zipRE.MatchString(line)) {
		return strings.Join(strings.Fields(line), " "), true
	}
	return "", false
}
