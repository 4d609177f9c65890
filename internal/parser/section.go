package parser

import "regexp"

// sectionState tracks which report section the line loop is inside. It only
// changes how GL/CL code-and-description blobs are split (see cascade.go);
// every other recognizer ignores it.
type sectionState int

const (
	sectionUnknown sectionState = iota
	sectionDetailListing
	sectionDetailListingSummary
)

var (
	detailListingSummaryPattern = regexp.MustCompile(`(?i)^detail\s+listing\s+summary\b`)
	detailListingPattern        = regexp.MustCompile(`(?i)^detail\s+listing\s*$`)
)

// nextSection returns the section state after seeing line, and whether the
// line was a section header. Header lines are consumed by the caller and
// never reach the classification cascade. The state persists until another
// header appears or the input ends.
func nextSection(line string, state sectionState) (sectionState, bool) {
	if detailListingSummaryPattern.MatchString(line) {
		return sectionDetailListingSummary, true
	}
	if detailListingPattern.MatchString(line) {
		return sectionDetailListing, true
	}
	return state, false
}
