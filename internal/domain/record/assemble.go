package record

// Sections holds the independently edited sub-documents of one encounter.
// Each form section owns its edits; nothing here is shared mutable state.
// A nil section simply contributes its zero value to the snapshot.
type Sections struct {
	Incident    *Incident    `json:"incident,omitempty"`
	Patient     *Patient     `json:"patient,omitempty"`
	Providers   *Providers   `json:"providers,omitempty"`
	Assessments *Assessments `json:"assessments,omitempty"`
	Vitals      *Vitals      `json:"vitals,omitempty"`
	Narrative   *Narrative   `json:"narrative,omitempty"`
	Disposition *Disposition `json:"disposition,omitempty"`
	Disclosures *Disclosures `json:"disclosureAcknowledgments,omitempty"`
}

// Assemble flattens the section states into one coherent Record snapshot.
// It is deterministic and side-effect-free: the same section states always
// produce the same snapshot, independent of which section was edited last.
func Assemble(localID, serverID, status string, s Sections) *Record {
	if status == "" {
		status = StatusDraft
	}
	r := &Record{
		LocalID:  localID,
		ServerID: serverID,
		Status:   status,
	}
	if s.Incident != nil {
		r.Incident = *s.Incident
	}
	if s.Patient != nil {
		r.Patient = *s.Patient
	}
	if s.Providers != nil {
		r.Providers = *s.Providers
	}
	if s.Assessments != nil {
		r.Assessments = *s.Assessments
	}
	if s.Vitals != nil {
		r.Vitals = *s.Vitals
	}
	if s.Narrative != nil {
		r.Narrative = *s.Narrative
	}
	if s.Disposition != nil {
		r.Disposition = *s.Disposition
	}
	if s.Disclosures != nil {
		r.Disclosures = *s.Disclosures
	}
	return r
}
