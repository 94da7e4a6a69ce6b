package extract

import (
	"regexp"
	"strings"
)

var (
	patientNamePattern = regexp.MustCompile(`Patient Name:[ \t]*([A-Za-z][A-Za-z \t]*)`)
	namePattern        = regexp.MustCompile(`Name:[ \t]*([A-Za-z][A-Za-z \t]*)`)
	datePattern        = regexp.MustCompile(`Date:\s*(\d{4}-\d{2}-\d{2})`)

	// Each value is confined to its own line.
	medicinePattern = regexp.MustCompile(
		`Medicine[ \t]*\d+:[ \t]*([A-Za-z0-9][A-Za-z0-9 \t]*)\n` +
			`Dosage:[ \t]*([A-Za-z0-9][A-Za-z0-9 \t]*)\n` +
			`Instructions:[ \t]*([A-Za-z0-9,.][A-Za-z0-9 \t,.]*)`,
	)
)

// Medicine is one prescribed item.
type Medicine struct {
	Name         Field `json:"name" yaml:"name"`
	Dosage       Field `json:"dosage" yaml:"dosage"`
	Instructions Field `json:"instructions" yaml:"instructions"`
}

// PrescriptionRecord is the structured form of a prescription text.
type PrescriptionRecord struct {
	PatientName Field  `json:"patient_name" yaml:"patient_name"`
	Date        string `json:"date" yaml:"date"`
	// DateDefaulted is set when no date was found and Date came from the clock.
	DateDefaulted bool       `json:"-" yaml:"-"`
	Medicines     []Medicine `json:"medicines" yaml:"medicines"`
}

// Prescription extracts a PrescriptionRecord from text.
//
// When no medicine block matches, Medicines holds a single record whose
// fields are all absent, so the output always has at least one row.
func Prescription(text string, clock Clock) PrescriptionRecord {
	if clock == nil {
		clock = SystemClock{}
	}
	text = normalizeNewlines(text)

	rec := PrescriptionRecord{
		PatientName: firstSubmatch(patientNamePattern, text),
	}
	if !rec.PatientName.OK() {
		rec.PatientName = firstSubmatch(namePattern, text)
	}

	if date, ok := firstSubmatch(datePattern, text).Value(); ok {
		rec.Date = date
	} else {
		rec.Date = clock.Today().Format(DateLayout)
		rec.DateDefaulted = true
	}

	for _, m := range medicinePattern.FindAllStringSubmatch(text, -1) {
		rec.Medicines = append(rec.Medicines, Medicine{
			Name:         fieldFrom(m[1]),
			Dosage:       fieldFrom(m[2]),
			Instructions: fieldFrom(m[3]),
		})
	}
	if len(rec.Medicines) == 0 {
		rec.Medicines = []Medicine{{}}
	}

	return rec
}

// firstSubmatch returns the first capture group of the leftmost match.
func firstSubmatch(re *regexp.Regexp, text string) Field {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return Missing()
	}
	return fieldFrom(m[1])
}

func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
