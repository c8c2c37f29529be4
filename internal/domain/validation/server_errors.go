package validation

import (
	"sort"
	"strings"

	"github.com/occuhealth/capture/internal/domain/record"
)

// sectionByPrefix maps the remote service's form-scoped field prefixes to
// the owning client section. Server-side rejections arrive keyed by wire
// names like "narrativeForm.text"; this table routes each one back into the
// same error-display contract the client engine uses.
var sectionByPrefix = map[string]string{
	"incidentForm.":    record.SectionIncident,
	"patientForm.":     record.SectionPatient,
	"providerForm.":    record.SectionProviders,
	"assessmentForm.":  record.SectionAssessments,
	"vitalsForm.":      record.SectionVitals,
	"narrativeForm.":   record.SectionNarrative,
	"dispositionForm.": record.SectionDisposition,
	"disclosureForm.":  record.SectionDisclosures,
}

// MapServerErrors converts server-side validation errors into the client
// error shape. Unknown prefixes fall back to the incident section so every
// server error remains navigable. Output is sorted by field for stable
// display order.
func MapServerErrors(serverErrors map[string]string) []Error {
	if len(serverErrors) == 0 {
		return nil
	}
	fields := make([]string, 0, len(serverErrors))
	for f := range serverErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	errs := make([]Error, 0, len(fields))
	for _, f := range fields {
		section := record.SectionIncident
		field := f
		for prefix, s := range sectionByPrefix {
			if strings.HasPrefix(f, prefix) {
				section = s
				field = strings.TrimPrefix(f, prefix)
				break
			}
		}
		errs = append(errs, Error{
			Field:      field,
			Label:      serverErrors[f],
			Section:    section,
			ElementRef: section + "." + field,
		})
	}
	return errs
}

// FirstSection returns the section of the first error in the slice, or ""
// when the slice is empty.
func FirstSection(errs []Error) string {
	if len(errs) == 0 {
		return ""
	}
	return errs[0].Section
}
