// Package reportparser pulls structured fields out of the recognized text of a
// veterinary imaging report. Reports are mostly Spanish with some English
// labels; nothing here fails, an unrecognized field is simply left nil.
package reportparser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Lllllllleong/vetreportflow/internal/models"
	"golang.org/x/text/unicode/norm"
)

const (
	minDiagnosisRunes      = 11
	minRecommendationRunes = 6
)

// Parse extracts the report fields from text.
func Parse(text string) models.ReportFields {
	if strings.TrimSpace(text) == "" {
		return models.ReportFields{}
	}
	text = norm.NFC.String(text)

	fields := models.ReportFields{
		PatientName:     lineValue(patientNameRe, text),
		Species:         lineValue(speciesRe, text),
		Breed:           lineValue(breedRe, text),
		Age:             lineValue(ageRe, text),
		OwnerName:       lineValue(ownerNameRe, text),
		Veterinarian:    lineValue(veterinarianRe, text),
		Date:            date(text),
		Diagnosis:       diagnosis(text),
		Recommendations: recommendations(text),
	}
	if sex := lineValue(sexRe, text); sex != nil {
		fields.Sex = ptr(NormalizeSex(*sex))
	}
	return fields
}

// lineValue returns the value after the first label match, cut at the next
// label on the same line.
func lineValue(re *regexp.Regexp, text string) *string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	value := m[1]
	if loc := labelBoundaryRe.FindStringIndex(value); loc != nil {
		value = value[:loc[0]]
	}
	// A "-" or ":" left over from the next pair's separator is not part of the value.
	value = strings.TrimSpace(strings.TrimRightFunc(value, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(",;|:-–—", r)
	}))
	if value == "" {
		return nil
	}
	return &value
}

func date(text string) *string {
	for _, m := range dateRe.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			continue
		}
		return ptr(NormalizeDate(m[2]))
	}
	return nil
}

// NormalizeDate rewrites YYYY-MM-DD style dates as DD/MM/YYYY and returns any
// other value unchanged.
func NormalizeDate(value string) string {
	if isoDateRe.MatchString(value) {
		return isoDateRe.ReplaceAllString(value, "$3/$2/$1")
	}
	return value
}

var sexHyphenRe = regexp.MustCompile(`\s*-\s*`)

var canonicalSex = map[string]string{
	"m":         "Macho",
	"macho":     "Macho",
	"male":      "Macho",
	"masculino": "Macho",

	"h":        "Hembra",
	"f":        "Hembra",
	"hembra":   "Hembra",
	"female":   "Hembra",
	"femenino": "Hembra",

	"macho castrado": "Macho castrado",
	"mc":             "Macho castrado",
	"m/c":            "Macho castrado",
	"castrado":       "Macho castrado",
	"neutered male":  "Macho castrado",
	"male neutered":  "Macho castrado",

	"hembra castrada":     "Hembra castrada",
	"hembra esterilizada": "Hembra castrada",
	"esterilizada":        "Hembra castrada",
	"castrada":            "Hembra castrada",
	"hc":                  "Hembra castrada",
	"h/c":                 "Hembra castrada",
	"spayed female":       "Hembra castrada",
	"female spayed":       "Hembra castrada",
}

// NormalizeSex maps the spellings found in reports onto Macho, Hembra,
// Macho castrado and Hembra castrada. Unknown values come back trimmed.
func NormalizeSex(value string) string {
	value = strings.TrimSpace(value)
	key := strings.ToLower(strings.TrimRight(value, "."))
	key = sexHyphenRe.ReplaceAllString(key, " ")
	key = strings.Join(strings.Fields(key), " ")
	if canonical, ok := canonicalSex[key]; ok {
		return canonical
	}
	return value
}

func ptr(s string) *string { return &s }

func runeLen(s string) int { return utf8.RuneCountInString(s) }
