package encounter

import (
	"time"

	"github.com/google/uuid"
)

// Review lifecycle of an encounter row on the server. Rows arrive as drafts
// from the capture workstations and move to in_review when a clinician
// submits them.
const (
	StatusDraft    = "draft"
	StatusInReview = "in_review"
	StatusClosed   = "closed"
)

// Encounter maps to the encounter table. The flat column set mirrors the
// capture payload's snake_case field names.
type Encounter struct {
	ID                   uuid.UUID  `db:"id" json:"id"`
	Status               string     `db:"status" json:"status"`
	ClinicName           string     `db:"clinic_name" json:"clinic_name"`
	IncidentDate         string     `db:"incident_date" json:"incident_date"`
	EmployerName         string     `db:"employer_name" json:"employer_name"`
	JobTitle             *string    `db:"job_title" json:"job_title,omitempty"`
	InjuryCause          string     `db:"injury_cause" json:"injury_cause"`
	BodyPart             *string    `db:"body_part" json:"body_part,omitempty"`
	IncidentLocation     *string    `db:"incident_location" json:"incident_location,omitempty"`
	PatientFirstName     string     `db:"patient_first_name" json:"patient_first_name"`
	PatientLastName      string     `db:"patient_last_name" json:"patient_last_name"`
	PatientDateOfBirth   string     `db:"patient_date_of_birth" json:"patient_date_of_birth"`
	PatientPhone         *string    `db:"patient_phone" json:"patient_phone,omitempty"`
	EmployeeID           *string    `db:"employee_id" json:"employee_id,omitempty"`
	TreatingProvider     string     `db:"treating_provider" json:"treating_provider"`
	ReferringProvider    *string    `db:"referring_provider" json:"referring_provider,omitempty"`
	InjuryClassification string     `db:"injury_classification" json:"injury_classification"`
	Severity             *string    `db:"severity" json:"severity,omitempty"`
	BloodPressure        *string    `db:"blood_pressure" json:"blood_pressure,omitempty"`
	HeartRate            *string    `db:"heart_rate" json:"heart_rate,omitempty"`
	Temperature          *string    `db:"temperature" json:"temperature,omitempty"`
	PainLevel            *string    `db:"pain_level" json:"pain_level,omitempty"`
	NarrativeText        string     `db:"narrative_text" json:"narrative_text"`
	WorkStatus           string     `db:"work_status" json:"work_status"`
	FollowUpDate         *string    `db:"follow_up_date" json:"follow_up_date,omitempty"`
	Restrictions         *string    `db:"restrictions" json:"restrictions,omitempty"`
	ReferralNeeded       bool       `db:"referral_needed" json:"referral_needed"`
	PatientSignature     string     `db:"patient_signature" json:"patient_signature"`
	ProviderSignature    *string    `db:"provider_signature" json:"provider_signature,omitempty"`
	PrivacyAcknowledged  bool       `db:"privacy_acknowledged" json:"privacy_acknowledged"`
	SubmittedAt          *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}

// ApplyPayload copies the capture wire payload onto the row. Only the
// snake_case keys are read; the parallel camelCase keys in the payload exist
// for the legacy reporting pipeline and carry identical values.
func (e *Encounter) ApplyPayload(p map[string]interface{}) {
	str := func(k string) string {
		v, _ := p[k].(string)
		return v
	}
	strPtr := func(k string) *string {
		v, ok := p[k].(string)
		if !ok || v == "" {
			return nil
		}
		return &v
	}
	boolVal := func(k string) bool {
		v, _ := p[k].(bool)
		return v
	}

	e.ClinicName = str("clinic_name")
	e.IncidentDate = str("incident_date")
	e.EmployerName = str("employer_name")
	e.JobTitle = strPtr("job_title")
	e.InjuryCause = str("injury_cause")
	e.BodyPart = strPtr("body_part")
	e.IncidentLocation = strPtr("incident_location")
	e.PatientFirstName = str("patient_first_name")
	e.PatientLastName = str("patient_last_name")
	e.PatientDateOfBirth = str("patient_date_of_birth")
	e.PatientPhone = strPtr("patient_phone")
	e.EmployeeID = strPtr("employee_id")
	e.TreatingProvider = str("treating_provider")
	e.ReferringProvider = strPtr("referring_provider")
	e.InjuryClassification = str("injury_classification")
	e.Severity = strPtr("severity")
	e.BloodPressure = strPtr("blood_pressure")
	e.HeartRate = strPtr("heart_rate")
	e.Temperature = strPtr("temperature")
	e.PainLevel = strPtr("pain_level")
	e.NarrativeText = str("narrative_text")
	e.WorkStatus = str("work_status")
	e.FollowUpDate = strPtr("follow_up_date")
	e.Restrictions = strPtr("restrictions")
	e.ReferralNeeded = boolVal("referral_needed")
	e.PatientSignature = str("patient_signature")
	e.ProviderSignature = strPtr("provider_signature")
	e.PrivacyAcknowledged = boolVal("privacy_acknowledged")
}
