package reportparser

import (
	"regexp"
	"strings"
)

// Accepted labels per single-line field. Matching is case-insensitive and runs
// on NFC-normalized text.
var (
	patientLabels      = []string{`paciente`, `nombre(?:\s+del\s+paciente)?`, `patient(?:'s)?(?:\s+name)?`, `pet(?:'s)?\s+name`, `mascota`}
	speciesLabels      = []string{`especie`, `species`}
	breedLabels        = []string{`raza`, `breed`}
	sexLabels          = []string{`sexo`, `sex`, `g[eé]nero`, `gender`}
	ageLabels          = []string{`edad`, `age`}
	ownerLabels        = []string{`tutor(?:a)?`, `propietari[oa]`, `due[ñn][oa]`, `cliente`, `owner(?:'s)?(?:\s+name)?`}
	veterinarianLabels = []string{
		`derivante`,
		`profesional(?:\s+(?:derivante|actuante|responsable))?`,
		`referido\s+por`,
		`remitido\s+por`,
		`m[eé]dic[oa]\s+(?:veterinari[oa]\s+)?(?:derivante|remitente|tratante)`,
		`veterinari[oa](?:\s+(?:derivante|remitente|tratante))?`,
		`referring\s+(?:vet|veterinarian)`,
		`referred\s+by`,
		`veterinarian`,
	}
	dateLabels = []string{`fecha(?:\s+del?\s+(?:informe|estudio|examen|emisi[oó]n))?`, `date`}

	// responsableLabel names the owner only when it opens a line; elsewhere it
	// is part of a professional title such as "Profesional responsable".
	responsableLabel = `^[^\S\n]*responsable`
)

// labelPrefix requires a label to start a word; labels never match inside
// another word (e.g. "edad" in "enfermedad").
const labelPrefix = `(?:^|[^\p{L}\p{N}])`

func alternation(labels ...[]string) string {
	var all []string
	for _, l := range labels {
		all = append(all, l...)
	}
	return `(?:` + strings.Join(all, `|`) + `)`
}

// lineField matches "<label> : value" and captures the rest of the line.
func lineField(labels []string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + labelPrefix + alternation(labels) + fieldSeparator + `([^\n]*)`)
}

const fieldSeparator = `[^\S\n]*[:\-][^\S\n]*`

var (
	patientNameRe  = lineField(patientLabels)
	speciesRe      = lineField(speciesLabels)
	breedRe        = lineField(breedLabels)
	sexRe          = lineField(sexLabels)
	ageRe          = lineField(ageLabels)
	ownerNameRe    = regexp.MustCompile(`(?im)(?:` + labelPrefix + alternation(ownerLabels) + `|` + responsableLabel + `)` + fieldSeparator + `([^\n]*)`)
	veterinarianRe = lineField(veterinarianLabels)

	// labelBoundaryRe finds the next "<label>:" inside a captured value so that
	// several pairs on one physical line are split apart.
	labelBoundaryRe = regexp.MustCompile(`(?i)` + labelPrefix +
		alternation(patientLabels, speciesLabels, breedLabels, sexLabels, ageLabels, ownerLabels, veterinarianLabels, dateLabels, []string{`responsable`}) +
		`[^\S\n]*[:\-]`)

	// The date value may sit on the line below a bare "Fecha" label. Group 1
	// catches "Birth date" so the caller can skip it.
	dateRe = regexp.MustCompile(`(?i)` + labelPrefix + `(birth[^\S\n]+)?` + alternation(dateLabels) +
		`[^\S\n]*[:\-]?[^\S\n]*(?:\n[^\S\n]*)?(\d{1,4}[/.\-]\d{1,2}[/.\-]\d{1,4})`)
	isoDateRe = regexp.MustCompile(`^(\d{4})[/.\-](\d{2})[/.\-](\d{2})$`)
)

// sectionHeader matches a header at the start of a line followed either by a
// separator (inline body allowed) or by the end of the line.
func sectionHeader(p string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[^\S\n]*(?:\d+[.)][^\S\n]*)?(?:` + p + `)(?:[^\S\n]*[:\-][^\S\n]*|[^\S\n]*\n)`)
}

// diagnosisHeaders is tried in order and the first acceptable body wins.
// Specific imaging diagnoses come before generic conclusions and findings;
// reordering changes results on reports that carry several of them.
var diagnosisHeaders = []*regexp.Regexp{
	sectionHeader(`diagn[oó]stico\s+(?:radiogr[aá]fico|ecogr[aá]fico|ecocardiogr[aá]fico|ultrasonogr[aá]fico|tomogr[aá]fico)`),
	sectionHeader(`(?:radiographic|ultrasound|ultrasonographic|echocardiographic)\s+diagnosis`),
	sectionHeader(`diagn[oó]stico\s+(?:presuntivo|definitivo|imagenol[oó]gico)|impresi[oó]n\s+diagn[oó]stica`),
	sectionHeader(`conclusi[oó]n(?:es)?|conclusions?`),
	sectionHeader(`diagn[oó]stico|diagnosis`),
	sectionHeader(`hallazgos|findings`),
}

// recommendationLeadIn opens a standalone recommendation sentence.
const recommendationLeadIn = `se\s+recomienda|se\s+sugiere|recomendamos|sugerimos|it\s+is\s+recommended|we\s+recommend`

type sectionPattern struct {
	re *regexp.Regexp
	// keepLeadIn starts the body at capture group 1 instead of after the match.
	keepLeadIn bool
}

// recommendationPatterns cover the layouts seen in practice, tried in order.
var recommendationPatterns = []sectionPattern{
	// "Notas:" with the body on the next line.
	{re: regexp.MustCompile(`(?im)^[^\S\n]*(?:notas?|notes?|observaciones)[^\S\n]*[:\-]?[^\S\n]*\n`)},
	// "Notas: Se recomienda ..." on one line.
	{re: regexp.MustCompile(`(?im)^[^\S\n]*(?:notas?|notes?|observaciones)[^\S\n]*[:\-][^\S\n]*`)},
	// "Se recomienda ..." opening a line or a sentence, lead-in included.
	{re: regexp.MustCompile(`(?im)(?:^[^\S\n]*|[.!?][^\S\n]+)(` + recommendationLeadIn + `)`), keepLeadIn: true},
	{re: regexp.MustCompile(`(?im)^[^\S\n]*(?:recomendaci[oó]n(?:es)?|recommendations?|sugerencias)[^\S\n]*(?:[:\-][^\S\n]*\n?|\n)`)},
	// "Comentarios:" with the body on the following lines.
	{re: regexp.MustCompile(`(?im)^[^\S\n]*(?:comentarios?|comments?)[^\S\n]*[:\-]?[^\S\n]*\n`)},
}

var (
	tripleNewlineRe   = regexp.MustCompile(`\n[^\S\n]*\n[^\S\n]*\n`)
	uppercaseLineRe   = regexp.MustCompile(`(?m)^[^\S\n]*\p{Lu}{2,}[^\S\n]*$`)
	trailingSectionRe = regexp.MustCompile(`(?im)^[^\S\n]*(?:(?:notas?|notes?|observaciones|recomendaci[oó]n(?:es)?|recommendations?|sugerencias|comentarios?|comments?)(?:[^\S\n]*[:\-]|[^\S\n]*$)|(?:` + recommendationLeadIn + `))`)
	blankLineRe       = regexp.MustCompile(`\n[^\S\n]*\n`)
)

// footerPatterns mark the first line of a signature block. Everything from
// that line on is dropped from a section.
var footerPatterns = []*regexp.Regexp{
	// Professional license numbers: "M.P. 1234", "MN 5678", "Matrícula N° 123".
	regexp.MustCompile(`(?m)^.*(?:\bM\.?[ ]?[PN]\.?|(?i:\bmat(?:r[ií]cula)?\.?|\blic(?:encia)?\.?|\breg(?:istro)?\.?|\bcolegiad[oa]))[^\S\n]*(?:(?i:nro\.?|n[°º.o]?)[^\S\n]*)?[:#]?[^\S\n]*\d{2,}`),
	// Lines opening with a professional title.
	regexp.MustCompile(`(?m)^[^\S\n]*(?:DRA?\.|Dra?\.|Dra?[ ]|M\.[ ]?V\.|MV\b|DVM\b|MVZ\b|(?i:m[eé]dic[oa][ ]+veterinari[oa])|(?i:m[eé]d\.[ ]*vet\.?))`),
	// Lines closing with one.
	regexp.MustCompile(`(?m)^.*\b(?:M\.[ ]?V\.?|DVM|MVZ)[^\S\n]*$`),
	// Phone numbers, labelled or alone on a line. A bare number needs two
	// groups of three or more digits (or one run of seven) so dates never match.
	regexp.MustCompile(`(?im)^.*\b(?:tel[eé]fono|tel|tlf|cel(?:ular)?|phone|whats?app|m[oó]vil)\.?[^\S\n]*:?[^\S\n]*\+?[\d(][\d ().\-]{5,}`),
	regexp.MustCompile(`(?m)^[^\S\n]*\+?[\d ()\-]*(?:\d{7}|\d{3}[ ()\-]+(?:\d+[ ()\-]+)*\d{3})[\d ()\-]*[^\S\n]*$`),
}

var (
	bulletCharsRe   = regexp.MustCompile(`[•●○◦▪▫■□►▶➢➤✓✔·]`)
	listMarkerRe    = regexp.MustCompile(`(?m)^[^\S\n]*[-*][^\S\n]+`)
	leadingBulletRe = regexp.MustCompile(`^[\s•●○◦▪▫■□►▶➢➤✓✔·*\-]+`)
	newlinesRe      = regexp.MustCompile(`[^\S\n]*\n\s*`)
	spacesRe        = regexp.MustCompile(`\s{2,}`)
)
