// Package record defines the canonical encounter-in-progress aggregate.
// A record is assembled on demand from independently edited sections and is
// the exact input to both the validation engine and the remote payload
// builder. The aggregate is JSON-serializable because it is embedded whole
// into the offline envelope.
package record

import (
	"time"

	"github.com/google/uuid"
)

// Lifecycle statuses of an encounter record.
const (
	StatusDraft             = "draft"
	StatusPendingSubmission = "pending_submission"
	StatusSubmitted         = "submitted"
	StatusSynced            = "synced"
)

// Section names. Declaration order here matches the validation catalog order.
const (
	SectionIncident    = "incident"
	SectionPatient     = "patient"
	SectionProviders   = "providers"
	SectionAssessments = "assessments"
	SectionVitals      = "vitals"
	SectionNarrative   = "narrative"
	SectionDisposition = "disposition"
	SectionDisclosures = "disclosureAcknowledgments"
)

// Incident captures where and how the injury or exposure happened.
type Incident struct {
	ClinicName   string `json:"clinic_name"`
	IncidentDate string `json:"incident_date"`
	EmployerName string `json:"employer_name"`
	JobTitle     string `json:"job_title,omitempty"`
	InjuryCause  string `json:"injury_cause"`
	BodyPart     string `json:"body_part,omitempty"`
	Location     string `json:"location,omitempty"`
}

// Patient holds the demographics collected at intake.
type Patient struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	Phone       string `json:"phone,omitempty"`
	EmployeeID  string `json:"employee_id,omitempty"`
}

// Providers names the clinical staff involved in the encounter.
type Providers struct {
	TreatingProvider  string `json:"treating_provider"`
	ReferringProvider string `json:"referring_provider,omitempty"`
}

// Assessments records the clinical classification of the injury.
type Assessments struct {
	InjuryClassification string   `json:"injury_classification"`
	Severity             string   `json:"severity,omitempty"`
	ICDCodes             []string `json:"icd_codes,omitempty"`
}

// Vitals is a single set of measurements. All fields optional during editing.
type Vitals struct {
	BloodPressure string `json:"blood_pressure,omitempty"`
	HeartRate     string `json:"heart_rate,omitempty"`
	Temperature   string `json:"temperature,omitempty"`
	PainLevel     string `json:"pain_level,omitempty"`
}

// Narrative is the free-text clinical account.
type Narrative struct {
	Text string `json:"text"`
}

// Disposition records the outcome and return-to-work decision.
type Disposition struct {
	WorkStatus     string `json:"work_status"`
	FollowUpDate   string `json:"follow_up_date,omitempty"`
	Restrictions   string `json:"restrictions,omitempty"`
	ReferralNeeded bool   `json:"referral_needed,omitempty"`
}

// Disclosures holds the signature and acknowledgment state.
type Disclosures struct {
	PatientSignature   string `json:"patient_signature"`
	ProviderSignature  string `json:"provider_signature,omitempty"`
	PrivacyAcknowledged bool  `json:"privacy_acknowledged,omitempty"`
}

// Record is the canonical snapshot of one encounter-in-progress.
//
// It carries three identifiers over its lifetime: LocalID is generated at
// first edit and never reused across encounters; ServerID is assigned once
// by the remote service and immutable thereafter; Status tracks the
// lifecycle stage.
type Record struct {
	LocalID  string `json:"local_id"`
	ServerID string `json:"server_id,omitempty"`
	Status   string `json:"status"`

	Incident    Incident    `json:"incident"`
	Patient     Patient     `json:"patient"`
	Providers   Providers   `json:"providers"`
	Assessments Assessments `json:"assessments"`
	Vitals      Vitals      `json:"vitals"`
	Narrative   Narrative   `json:"narrative"`
	Disposition Disposition `json:"disposition"`
	Disclosures Disclosures `json:"disclosureAcknowledgments"`

	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Key returns the identifier under which this record is persisted: the
// server identifier once assigned, otherwise the client-local one.
func (r *Record) Key() string {
	if r.ServerID != "" {
		return r.ServerID
	}
	return r.LocalID
}

// NewLocalID generates a client-local placeholder identifier. The "local-"
// prefix makes un-reconciled identifiers recognizable in URLs and logs.
func NewLocalID() string {
	return "local-" + uuid.New().String()
}

// IsLocalID reports whether id is a client-generated placeholder rather
// than a server-assigned identifier.
func IsLocalID(id string) bool {
	return len(id) > 6 && id[:6] == "local-"
}
