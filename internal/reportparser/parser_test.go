package reportparser

import (
	"strings"
	"testing"

	"github.com/Lllllllleong/vetreportflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `Paciente: Luna
Especie: Canino
Raza: Golden Retriever
Sexo: Hembra
Edad: 5 años
Tutor: María García
Derivante: Dr. Juan Pérez M.V.
Fecha: 15/01/2025

DIAGNÓSTICO RADIOGRÁFICO:
Se observa cardiomegalia con un índice VHS de 11.5v.
Patrón alveolar leve en lóbulos caudales.
No se observan signos de efusión pleural.

Se recomienda ecocardiograma complementario para evaluar función cardíaca.
`

const chesterReport = "Fecha\n11/03/2022\n" +
	"Nombre: Chester\nPropietario: Naveda\n" +
	"Especie: Canino\nRaza: Dobermann\nSexo: M\nEdad:\n" +
	"Referido por: Dra. Gerbeno\n" +
	"Diagnostico radiográfico:\n" +
	"Imágenes sugerentes de osteosarcoma en húmero derecho.\n" +
	"Comentarios:\n" +
	"Dr. Martin Vittaz\nMedico Veterinario\n"

func value(t *testing.T, s *string) string {
	t.Helper()
	require.NotNil(t, s)
	return *s
}

func TestParse_SampleReport(t *testing.T) {
	got := Parse(sampleReport)

	assert.Equal(t, "Luna", value(t, got.PatientName))
	assert.Equal(t, "Canino", value(t, got.Species))
	assert.Equal(t, "Golden Retriever", value(t, got.Breed))
	assert.Equal(t, "Hembra", value(t, got.Sex))
	assert.Equal(t, "5 años", value(t, got.Age))
	assert.Equal(t, "María García", value(t, got.OwnerName))
	assert.Equal(t, "Dr. Juan Pérez M.V.", value(t, got.Veterinarian))
	assert.Equal(t, "15/01/2025", value(t, got.Date))

	diagnosis := value(t, got.Diagnosis)
	assert.Equal(t, "Se observa cardiomegalia con un índice VHS de 11.5v. "+
		"Patrón alveolar leve en lóbulos caudales. "+
		"No se observan signos de efusión pleural.", diagnosis)
	assert.NotContains(t, diagnosis, "recomienda")

	assert.Equal(t, "Se recomienda ecocardiograma complementario para evaluar función cardíaca.",
		value(t, got.Recommendations))
}

func TestParse_ChesterReport(t *testing.T) {
	got := Parse(chesterReport)

	assert.Equal(t, "Chester", value(t, got.PatientName))
	assert.Equal(t, "Naveda", value(t, got.OwnerName))
	assert.Equal(t, "Canino", value(t, got.Species))
	assert.Equal(t, "Dobermann", value(t, got.Breed))
	assert.Equal(t, "Macho", value(t, got.Sex))
	assert.Nil(t, got.Age)
	assert.Equal(t, "Dra. Gerbeno", value(t, got.Veterinarian))
	assert.Equal(t, "11/03/2022", value(t, got.Date))
	assert.Equal(t, "Imágenes sugerentes de osteosarcoma en húmero derecho.", value(t, got.Diagnosis))
	assert.Nil(t, got.Recommendations, "a comment holding only the signature is not a recommendation")
}

func TestParse_EmptyAndUnrelatedText(t *testing.T) {
	for _, text := range []string{"", "   \n\t ", "Some random text without fields"} {
		assert.Equal(t, models.ReportFields{}, Parse(text), "%q", text)
	}
}

func TestParse_SingleLineFields(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		field func(models.ReportFields) *string
		want  string
	}{
		{"owner as propietario", "Propietario: Carlos López\nPaciente: Rex", owner, "Carlos López"},
		{"owner as dueño", "Dueño - Ana Torres", owner, "Ana Torres"},
		{"vet as profesional", "Profesional: Dra. Ana Ruiz\nPaciente: Firulais", vet, "Dra. Ana Ruiz"},
		{"vet as referido por", "Referido por: MV Pablo Sosa", vet, "MV Pablo Sosa"},
		{"patient as nombre", "Nombre: Chester\nEspecie: Canino", patient, "Chester"},
		{"english labels", "Patient: Max\nSpecies: Feline\nBreed: Siamese\nOwner: John Smith", patient, "Max"},
		{"english species", "Patient: Max\nSpecies: Feline", species, "Feline"},
		{"english owner", "Patient: Max\nOwner: John Smith", owner, "John Smith"},
		{"english vet", "Referred by: Dr. Jane Doe", vet, "Dr. Jane Doe"},
		{"hyphen separator", "Raza - Caniche Toy", breed, "Caniche Toy"},
		{"label case", "PACIENTE: Toby", patient, "Toby"},
		{"two pairs on one line", "Paciente: Ramón Tutor: Simonetti", patient, "Ramón"},
		{"second pair on the line", "Paciente: Ramón Tutor: Simonetti", owner, "Simonetti"},
		{"pair then date", "Paciente: Luna Fecha: 15/01/2025", patient, "Luna"},
		{"trailing comma", "Paciente: Luna, Especie: Canino", patient, "Luna"},
		{"species after comma", "Paciente: Luna, Especie: Canino", species, "Canino"},
		{"age in words", "Edad: 12 años y 3 meses", age, "12 años y 3 meses"},
		{"hyphen between pairs", "Paciente: Luna - Especie: Canino", patient, "Luna"},
		{"species after hyphen", "Paciente: Luna - Especie: Canino", species, "Canino"},
		{"hyphen separators throughout", "Paciente - Luna - Tutor - Ana", patient, "Luna"},
		{"owner after hyphen separators", "Paciente - Luna - Tutor - Ana", owner, "Ana"},
		{"owner as responsable", "Responsable: Juan Díaz", owner, "Juan Díaz"},
		{"vet as profesional responsable", "Paciente: Toby\nProfesional responsable: Dr. Pérez\nTutor: Ana Gómez", vet, "Dr. Pérez"},
		{"owner next to profesional responsable", "Paciente: Toby\nProfesional responsable: Dr. Pérez\nTutor: Ana Gómez", owner, "Ana Gómez"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, value(t, tt.field(Parse(tt.text))))
		})
	}
}

func patient(f models.ReportFields) *string { return f.PatientName }
func species(f models.ReportFields) *string { return f.Species }
func breed(f models.ReportFields) *string   { return f.Breed }
func age(f models.ReportFields) *string     { return f.Age }
func owner(f models.ReportFields) *string   { return f.OwnerName }
func vet(f models.ReportFields) *string     { return f.Veterinarian }

func TestParse_LabelsDoNotMatchInsideWords(t *testing.T) {
	got := Parse("Enfermedad: crónica\nImage: 1")
	assert.Nil(t, got.Age)
}

func TestParse_EmptyValueIsAbsent(t *testing.T) {
	got := Parse("Edad:\nDATOS CLINICOS")
	assert.Nil(t, got.Age)

	got = Parse("Paciente:   \nEspecie: Felino")
	assert.Nil(t, got.PatientName)
	assert.Equal(t, "Felino", value(t, got.Species))
}

func TestParse_Date(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"inline", "Fecha: 15/01/2025", "15/01/2025"},
		{"next line", "Fecha\n11/03/2022\nINFORME RADIOLÓGICO", "11/03/2022"},
		{"iso slashes", "Fecha: 2025/08/27", "27/08/2025"},
		{"iso dashes", "Date: 2024-02-09", "09/02/2024"},
		{"dotted", "Fecha: 03.04.2023", "03.04.2023"},
		{"report date label", "Fecha del estudio: 1/2/24", "1/2/24"},
		{"birth date skipped", "Birth date: 01/02/2015\nFecha: 10/03/2024", "10/03/2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, value(t, Parse(tt.text).Date))
		})
	}

	assert.Nil(t, Parse("Fecha de nacimiento: 01/02/2015").Date)
	assert.Nil(t, Parse("Birth date: 01/02/2015").Date)
	assert.Nil(t, Parse("Date of birth: 01/02/2015").Date)
}

func TestNormalizeSex(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"M", "Macho"},
		{"macho", "Macho"},
		{"Male", "Macho"},
		{"H", "Hembra"},
		{"F", "Hembra"},
		{"Female", "Hembra"},
		{"Macho-Castrado", "Macho castrado"},
		{"macho - castrado", "Macho castrado"},
		{"MC", "Macho castrado"},
		{"Neutered male", "Macho castrado"},
		{"Hembra castrada", "Hembra castrada"},
		{"Hembra esterilizada", "Hembra castrada"},
		{"H/C", "Hembra castrada"},
		{"Spayed Female", "Hembra castrada"},
		{"  Indeterminado ", "Indeterminado"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSex(tt.in))
		})
	}
}

func TestParse_SexIsNormalized(t *testing.T) {
	assert.Equal(t, "Macho castrado", value(t, Parse("Sexo: Macho-Castrado").Sex))
	assert.Equal(t, "Hembra", value(t, Parse("Sex: female").Sex))
}

func TestParse_Diagnosis(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		contains string
	}{
		{"conclusion", "CONCLUSION:\nHallazgos compatibles con displasia de cadera bilateral grado III.\nOsteofitos marginales en ambos acetábulos.\n", "displasia"},
		{"lowercase diagnostico", "Diagnostico radiográfico:\nImágenes sugerentes de osteosarcoma en húmero derecho.\n", "osteosarcoma"},
		{"english", "RADIOGRAPHIC DIAGNOSIS:\nMild cardiomegaly with interstitial pattern.\n", "cardiomegaly"},
		{"inline body", "Diagnóstico: Gastroenteritis aguda sin cuerpo extraño.", "Gastroenteritis"},
		{"numbered header", "2. Conclusiones\nNefropatía crónica bilateral.", "Nefropatía"},
		{"findings fallback", "Hallazgos:\nEsplenomegalia difusa moderada.", "Esplenomegalia"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := value(t, Parse(tt.text).Diagnosis)
			assert.Contains(t, got, tt.contains)
			assert.NotContains(t, got, "\n")
		})
	}
}

func TestParse_DiagnosisHeaderPriority(t *testing.T) {
	text := "Hallazgos:\nSilueta cardíaca aumentada de tamaño.\n\n\n" +
		"Diagnóstico ecográfico:\nEndocardiosis mitral avanzada.\n"

	assert.Equal(t, "Endocardiosis mitral avanzada.", value(t, Parse(text).Diagnosis))
}

func TestParse_DiagnosisTooShortFallsThrough(t *testing.T) {
	text := "Conclusión: Normal.\n\n\nHallazgos:\nLeve opacidad intersticial difusa."

	assert.Equal(t, "Leve opacidad intersticial difusa.", value(t, Parse(text).Diagnosis))
}

func TestParse_DiagnosisStopsAtUppercaseHeading(t *testing.T) {
	text := "Conclusiones:\nDisplasia de codo izquierdo.\nFIRMA\nJuan"

	assert.Equal(t, "Displasia de codo izquierdo.", value(t, Parse(text).Diagnosis))
}

func TestParse_DiagnosisFollowedByNotes(t *testing.T) {
	text := "Diagnóstico:\nBronquitis crónica con patrón bronquial marcado.\n" +
		"Notes: Se recomienda control radiográfico en 30 días."

	got := Parse(text)

	diagnosis := value(t, got.Diagnosis)
	assert.NotContains(t, diagnosis, "\n")
	assert.NotContains(t, diagnosis, "recomienda")
	assert.Equal(t, "Bronquitis crónica con patrón bronquial marcado.", diagnosis)
	assert.Equal(t, "Se recomienda control radiográfico en 30 días.", value(t, got.Recommendations))
}

func TestParse_DiagnosisKeepsDateLine(t *testing.T) {
	text := "Diagnóstico:\nFractura consolidada de radio izquierdo.\n15-01-2025\nControl evolutivo favorable."

	assert.Equal(t, "Fractura consolidada de radio izquierdo. 15-01-2025 Control evolutivo favorable.",
		value(t, Parse(text).Diagnosis))
}

func TestParse_FooterIsStripped(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"title and license", "CONCLUSIONES:\nCardiomegalia moderada con patrón bronquial.\nDr. Juan Pérez\nM.P. 12345\n"},
		{"license line", "CONCLUSIONES:\nCardiomegalia moderada con patrón bronquial.\nMatrícula N° 4521\n"},
		{"name with title suffix", "CONCLUSIONES:\nCardiomegalia moderada con patrón bronquial.\nJuan Pérez M.V.\n"},
		{"phone", "CONCLUSIONES:\nCardiomegalia moderada con patrón bronquial.\nTel: 011 4567-8901\n"},
		{"bare phone", "CONCLUSIONES:\nCardiomegalia moderada con patrón bronquial.\n011 4567 8901\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "Cardiomegalia moderada con patrón bronquial.", value(t, Parse(tt.text).Diagnosis))
		})
	}
}

func TestParse_Recommendations(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"notes next line", "Notas:\nRepetir estudio en 15 días.\n", "Repetir estudio en 15 días."},
		{"observaciones inline", "Observaciones: Ayuno de 12 horas previo.", "Ayuno de 12 horas previo."},
		{"standalone sentence", "Texto previo.\nSe sugiere control ecográfico.\n\nFIRMA", "Se sugiere control ecográfico."},
		{"english sentence", "It is recommended to repeat the study.", "It is recommended to repeat the study."},
		{"recommendations header", "RECOMENDACIONES:\n• Dieta renal.\n• Control en 30 días.", "Dieta renal. Control en 30 días."},
		{"comments header", "Comments:\nFollow-up radiographs in two weeks.\n", "Follow-up radiographs in two weeks."},
		{"list markers", "Recomendaciones:\n- Reposo.\n- Analgesia.", "Reposo. Analgesia."},
		{"signature removed", "Notas:\nRepetir estudio en 15 días.\nDra. Ana Ruiz\nMP 3344", "Repetir estudio en 15 días."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, value(t, Parse(tt.text).Recommendations))
		})
	}
}

func TestParse_NegatedRecommendationIsNotARecommendation(t *testing.T) {
	got := Parse("Conclusiones:\nNo se recomienda cirugía en este momento.")

	assert.Nil(t, got.Recommendations)
	assert.Equal(t, "No se recomienda cirugía en este momento.", value(t, got.Diagnosis))
}

func TestParse_RecommendationAfterSentence(t *testing.T) {
	got := Parse("Diagnóstico: Cardiomegalia leve. Se recomienda control en 6 meses.")

	assert.Equal(t, "Se recomienda control en 6 meses.", value(t, got.Recommendations))
}

func TestParse_RecommendationsTooShort(t *testing.T) {
	assert.Nil(t, Parse("Notas: ok").Recommendations)
}

func TestParse_NFCNormalization(t *testing.T) {
	decomposed := "Diagno\u0301stico radiogra\u0301fico:\nFractura de fe\u0301mur izquierdo.\n"

	got := value(t, Parse(decomposed).Diagnosis)
	assert.Equal(t, "Fractura de fémur izquierdo.", got)
}

func TestParse_ResultsAreSingleLine(t *testing.T) {
	got := Parse(sampleReport + "\nNotas:\nControl\nen 30 días.\n")

	for _, s := range []*string{got.Diagnosis, got.Recommendations} {
		require.NotNil(t, s)
		assert.False(t, strings.Contains(*s, "\n"))
		assert.Equal(t, strings.TrimSpace(*s), *s)
		assert.NotContains(t, *s, "  ")
	}
}
