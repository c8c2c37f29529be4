package record

import (
	"reflect"
	"testing"
)

func TestKey_PrefersServerID(t *testing.T) {
	r := &Record{LocalID: "local-abc", ServerID: "srv-1"}
	if r.Key() != "srv-1" {
		t.Errorf("expected server id, got %s", r.Key())
	}
}

func TestKey_FallsBackToLocalID(t *testing.T) {
	r := &Record{LocalID: "local-abc"}
	if r.Key() != "local-abc" {
		t.Errorf("expected local id, got %s", r.Key())
	}
}

func TestNewLocalID(t *testing.T) {
	id := NewLocalID()
	if !IsLocalID(id) {
		t.Errorf("expected generated id to be recognized as local, got %s", id)
	}
	if id == NewLocalID() {
		t.Error("expected local ids to be unique")
	}
}

func TestIsLocalID(t *testing.T) {
	if IsLocalID("b2c6e9a0-1111-2222-3333-444455556666") {
		t.Error("server uuid should not be a local id")
	}
	if IsLocalID("local-") {
		t.Error("bare prefix should not be a local id")
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	s := Sections{
		Incident:  &Incident{ClinicName: "Harborview Occ Health", IncidentDate: "2025-03-02"},
		Patient:   &Patient{FirstName: "Ana", LastName: "Ruiz"},
		Narrative: &Narrative{Text: "Patient reports a laceration on the left forearm."},
	}
	a := Assemble("local-1", "", StatusDraft, s)
	b := Assemble("local-1", "", StatusDraft, s)
	if !reflect.DeepEqual(a, b) {
		t.Error("assembly is not deterministic for identical section states")
	}
}

func TestAssemble_MissingSectionsZeroValued(t *testing.T) {
	r := Assemble("local-2", "", "", Sections{})
	if r.Status != StatusDraft {
		t.Errorf("expected default status draft, got %s", r.Status)
	}
	if r.Incident.ClinicName != "" || r.Narrative.Text != "" {
		t.Error("expected zero-valued sections when none provided")
	}
}

func TestAssemble_DoesNotAliasSections(t *testing.T) {
	inc := &Incident{ClinicName: "Eastside Clinic"}
	r := Assemble("local-3", "", StatusDraft, Sections{Incident: inc})
	inc.ClinicName = "mutated"
	if r.Incident.ClinicName != "Eastside Clinic" {
		t.Error("snapshot must not share state with the section it was assembled from")
	}
}

func TestBuildPayload_DualNaming(t *testing.T) {
	r := &Record{
		LocalID: "local-4",
		Status:  StatusDraft,
		Incident: Incident{
			ClinicName:   "Harborview Occ Health",
			EmployerName: "Acme Manufacturing",
		},
		Narrative: Narrative{Text: "Crush injury to right hand during press operation."},
	}
	p := BuildPayload(r)

	pairs := [][2]string{
		{"clinic_name", "clinicName"},
		{"employer_name", "employerName"},
		{"narrative_text", "narrativeText"},
		{"patient_first_name", "patientFirstName"},
		{"work_status", "workStatus"},
		{"patient_signature", "patientSignature"},
	}
	for _, pair := range pairs {
		snake, camel := p[pair[0]], p[pair[1]]
		if snake == nil || camel == nil {
			t.Fatalf("expected both %s and %s to be present", pair[0], pair[1])
		}
		if !reflect.DeepEqual(snake, camel) {
			t.Errorf("%s and %s must carry identical values, got %v vs %v", pair[0], pair[1], snake, camel)
		}
	}

	if p["clinic_name"] != "Harborview Occ Health" {
		t.Errorf("unexpected clinic_name: %v", p["clinic_name"])
	}
}

func TestBuildPayload_Deterministic(t *testing.T) {
	r := &Record{LocalID: "local-5", Status: StatusDraft}
	if !reflect.DeepEqual(BuildPayload(r), BuildPayload(r)) {
		t.Error("payload builder is not deterministic")
	}
}
