package ocr

import (
	"regexp"
	"strings"
)

var (
	rePhone  = regexp.MustCompile(`\b(?:\+?\d[\d \-]{7,})\b`)
	reAmount = regexp.MustCompile(`[$£€]\s*\d+|\b\d+\.\d{2}\b`)
	reHeader = regexp.MustCompile(`\b(customer|client|bike|work|labou?r|parts|notes)\b\s*[:\-]`)
)

func hasPhonePattern(s string) bool  { return rePhone.MatchString(s) }
func hasAmountPattern(s string) bool { return reAmount.MatchString(s) }
func hasHeaderPattern(s string) bool { return reHeader.MatchString(s) }

// naive heuristic confidence based on decoded text characteristics: job sheets
// usually carry a phone number, at least one cost figure, and labeled headers.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if hasHeaderPattern(txtL) {
		score += 0.25
	}
	if hasPhonePattern(txtL) {
		score += 0.15
	}
	if hasAmountPattern(txtL) {
		score += 0.15
	}
	if len(strings.Fields(txtL)) >= 8 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
