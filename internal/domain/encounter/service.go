package encounter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

var validStatuses = map[string]bool{
	StatusDraft:    true,
	StatusInReview: true,
	StatusClosed:   true,
}

// Minimum narrative length accepted at review time. Kept in lockstep with
// the workstation engine so a record that passed locally is not bounced here.
const narrativeMinLength = 25

func (s *Service) CreateEncounter(ctx context.Context, enc *Encounter) error {
	if enc.Status == "" {
		enc.Status = StatusDraft
	}
	if !validStatuses[enc.Status] {
		return fmt.Errorf("invalid status: %s", enc.Status)
	}
	return s.repo.Create(ctx, enc)
}

func (s *Service) GetEncounter(ctx context.Context, id uuid.UUID) (*Encounter, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateEncounter(ctx context.Context, enc *Encounter) error {
	if enc.Status != "" && !validStatuses[enc.Status] {
		return fmt.Errorf("invalid status: %s", enc.Status)
	}
	return s.repo.Update(ctx, enc)
}

func (s *Service) DeleteEncounter(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListEncounters(ctx context.Context, limit, offset int) ([]*Encounter, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListEncountersByStatus(ctx context.Context, status string, limit, offset int) ([]*Encounter, int, error) {
	if !validStatuses[status] {
		return nil, 0, fmt.Errorf("invalid status: %s", status)
	}
	return s.repo.ListByStatus(ctx, status, limit, offset)
}

// SubmitForReview runs the authoritative completeness check and, when it
// passes, moves the encounter from draft to in_review. Failures come back as
// a map keyed by form-scoped wire names ("narrativeForm.text") so capture
// workstations can route each one to the owning section.
func (s *Service) SubmitForReview(ctx context.Context, id uuid.UUID) (map[string]string, error) {
	enc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("encounter not found: %w", err)
	}
	if enc.Status == StatusInReview {
		// Already submitted; a duplicate submit from a retrying
		// workstation is not an error.
		return nil, nil
	}
	if enc.Status != StatusDraft {
		return nil, fmt.Errorf("cannot submit encounter in status %s", enc.Status)
	}

	if verrs := reviewErrors(enc); len(verrs) > 0 {
		return verrs, nil
	}

	now := s.now()
	enc.Status = StatusInReview
	enc.SubmittedAt = &now
	if err := s.repo.Update(ctx, enc); err != nil {
		return nil, err
	}
	return nil, nil
}

func reviewErrors(enc *Encounter) map[string]string {
	errs := map[string]string{}
	require := func(key, value, label string) {
		if strings.TrimSpace(value) == "" {
			errs[key] = label + " is required"
		}
	}

	require("incidentForm.clinicName", enc.ClinicName, "Clinic name")
	require("incidentForm.incidentDate", enc.IncidentDate, "Incident date")
	require("incidentForm.employerName", enc.EmployerName, "Employer name")
	require("incidentForm.injuryCause", enc.InjuryCause, "Cause of injury")
	require("patientForm.firstName", enc.PatientFirstName, "Patient first name")
	require("patientForm.lastName", enc.PatientLastName, "Patient last name")
	require("patientForm.dateOfBirth", enc.PatientDateOfBirth, "Patient date of birth")
	require("providerForm.treatingProvider", enc.TreatingProvider, "Treating provider")
	require("assessmentForm.injuryClassification", enc.InjuryClassification, "Injury classification")
	require("dispositionForm.workStatus", enc.WorkStatus, "Work status")
	require("disclosureForm.patientSignature", enc.PatientSignature, "Patient signature")

	if n := len(strings.TrimSpace(enc.NarrativeText)); n == 0 {
		errs["narrativeForm.text"] = "Clinical narrative is required"
	} else if n < narrativeMinLength {
		errs["narrativeForm.text"] = fmt.Sprintf("Clinical narrative must be at least %d characters", narrativeMinLength)
	}

	return errs
}
