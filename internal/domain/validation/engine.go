// Package validation decides whether an encounter record is complete enough
// to submit. Validate is a pure function of its input: no storage, no
// network, no side effects. Callers may invoke it speculatively (to gray out
// a submit affordance) without it counting as an attempted submission.
package validation

import (
	"math"
	"strings"

	"github.com/occuhealth/capture/internal/domain/record"
)

// Error is one field-level completeness failure, always traceable back to
// exactly one section so a caller can deep-link to the owning widget.
type Error struct {
	Field      string `json:"field"`
	Label      string `json:"label"`
	Section    string `json:"section"`
	ElementRef string `json:"element_ref,omitempty"`
}

// Result is the completeness verdict for one record snapshot. Errors are a
// snapshot, never persisted; they are recomputed on demand.
type Result struct {
	IsValid              bool    `json:"is_valid"`
	Errors               []Error `json:"errors"`
	CompletionPercentage int     `json:"completion_percentage"`
}

// rule is one required-field check. Rules fail when the resolved value is
// empty or whitespace, or shorter than minLen when minLen is set.
type rule struct {
	section string
	field   string
	label   string
	minLen  int
	get     func(*record.Record) string
}

// catalog is the fixed required-field rule set, in declaration order.
// FirstInvalidSection ties are broken by this order, not by severity.
var catalog = []rule{
	{section: record.SectionIncident, field: "clinicName", label: "Clinic name",
		get: func(r *record.Record) string { return r.Incident.ClinicName }},
	{section: record.SectionIncident, field: "incidentDate", label: "Incident date",
		get: func(r *record.Record) string { return r.Incident.IncidentDate }},
	{section: record.SectionIncident, field: "employerName", label: "Employer",
		get: func(r *record.Record) string { return r.Incident.EmployerName }},
	{section: record.SectionIncident, field: "injuryCause", label: "Cause of injury",
		get: func(r *record.Record) string { return r.Incident.InjuryCause }},
	{section: record.SectionPatient, field: "firstName", label: "Patient first name",
		get: func(r *record.Record) string { return r.Patient.FirstName }},
	{section: record.SectionPatient, field: "lastName", label: "Patient last name",
		get: func(r *record.Record) string { return r.Patient.LastName }},
	{section: record.SectionPatient, field: "dateOfBirth", label: "Date of birth",
		get: func(r *record.Record) string { return r.Patient.DateOfBirth }},
	{section: record.SectionProviders, field: "treatingProvider", label: "Treating provider",
		get: func(r *record.Record) string { return r.Providers.TreatingProvider }},
	{section: record.SectionAssessments, field: "injuryClassification", label: "Injury classification",
		get: func(r *record.Record) string { return r.Assessments.InjuryClassification }},
	{section: record.SectionNarrative, field: "text", label: "Clinical narrative", minLen: NarrativeMinLength,
		get: func(r *record.Record) string { return r.Narrative.Text }},
	{section: record.SectionDisposition, field: "workStatus", label: "Work status",
		get: func(r *record.Record) string { return r.Disposition.WorkStatus }},
	{section: record.SectionDisclosures, field: "patientSignature", label: "Patient signature",
		get: func(r *record.Record) string { return r.Disclosures.PatientSignature }},
}

// NarrativeMinLength is the minimum number of characters a clinical
// narrative must contain before submission.
const NarrativeMinLength = 25

func (ru rule) satisfied(r *record.Record) bool {
	v := strings.TrimSpace(ru.get(r))
	if v == "" {
		return false
	}
	if ru.minLen > 0 && len(v) < ru.minLen {
		return false
	}
	return true
}

// Validate evaluates the full rule catalog against one record snapshot.
// A nil record yields a result with every rule failing; Validate never
// panics or returns an error.
func Validate(r *record.Record) Result {
	if r == nil {
		r = &record.Record{}
	}
	res := Result{IsValid: true}
	satisfied := 0
	for _, ru := range catalog {
		if ru.satisfied(r) {
			satisfied++
			continue
		}
		res.IsValid = false
		res.Errors = append(res.Errors, Error{
			Field:      ru.field,
			Label:      ru.label,
			Section:    ru.section,
			ElementRef: ru.section + "." + ru.field,
		})
	}
	// Rounded for display only; completeness decisions use IsValid.
	res.CompletionPercentage = int(math.Round(float64(satisfied) / float64(len(catalog)) * 100))
	return res
}

// FirstInvalidSection returns the section of the first failing rule in
// catalog order, or "" when the record is fully valid. This fixes the
// navigation tie-break: declaration order wins.
func FirstInvalidSection(r *record.Record) string {
	if r == nil {
		r = &record.Record{}
	}
	for _, ru := range catalog {
		if !ru.satisfied(r) {
			return ru.section
		}
	}
	return ""
}

// RuleCount returns the size of the rule catalog.
func RuleCount() int { return len(catalog) }
