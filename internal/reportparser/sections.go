package reportparser

import "strings"

// diagnosis returns the body of the first diagnosis header whose section is
// long enough, cleaned of signature blocks and list markup.
func diagnosis(text string) *string {
	for _, re := range diagnosisHeaders {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		body := text[loc[1]:]
		raw := strings.TrimSpace(body[:sectionEnd(body)])
		if runeLen(raw) < minDiagnosisRunes {
			continue
		}
		return nonEmpty(cleanSection(raw, false))
	}
	return nil
}

// sectionEnd finds where a diagnosis body stops: a triple line break, a line
// holding a single uppercase word, the start of a trailing section, or the
// end of the text, whichever comes first.
func sectionEnd(body string) int {
	end := len(body)
	if loc := tripleNewlineRe.FindStringIndex(body); loc != nil {
		end = min(end, loc[0])
	}
	for _, loc := range uppercaseLineRe.FindAllStringIndex(body, -1) {
		// An uppercase word right after the header is the body itself.
		if loc[0] > 0 {
			end = min(end, loc[0])
			break
		}
	}
	if loc := trailingSectionRe.FindStringIndex(body); loc != nil {
		end = min(end, loc[0])
	}
	return end
}

// recommendations returns the first recommendation body long enough to count.
func recommendations(text string) *string {
	for _, p := range recommendationPatterns {
		loc := p.re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		start := loc[1]
		if p.keepLeadIn {
			start = loc[2]
		}
		body := text[start:]
		if end := blankLineRe.FindStringIndex(body); end != nil {
			body = body[:end[0]]
		}
		raw := strings.TrimSpace(body)
		if runeLen(raw) < minRecommendationRunes {
			continue
		}
		return nonEmpty(cleanSection(raw, true))
	}
	return nil
}

// cleanSection drops any signature block, strips bullets and list markers,
// and flattens the section to a single line.
func cleanSection(s string, stripLeadingBullets bool) string {
	if stripLeadingBullets {
		s = leadingBulletRe.ReplaceAllString(s, "")
	}
	s = truncateAtFooter(s)
	s = bulletCharsRe.ReplaceAllString(s, "")
	s = listMarkerRe.ReplaceAllString(s, "")
	s = newlinesRe.ReplaceAllString(s, " ")
	s = spacesRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// truncateAtFooter cuts s at the start of the first line that looks like a
// signature: license number, professional title or phone number.
func truncateAtFooter(s string) string {
	cut := len(s)
	for _, re := range footerPatterns {
		if loc := re.FindStringIndex(s); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
	}
	return s[:cut]
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
