package record

// BuildPayload maps a record snapshot to the wire document the remote
// encounter service expects.
//
// The service consumes two parallel naming conventions (snake_case and
// camelCase) depending on which server component reads the field. Both key
// sets must be populated for every field; this duplication is a
// compatibility requirement of the remote contract and must not be trimmed.
func BuildPayload(r *Record) map[string]interface{} {
	p := map[string]interface{}{}

	put := func(snake, camel string, v interface{}) {
		p[snake] = v
		p[camel] = v
	}

	put("local_id", "localId", r.LocalID)
	put("status", "status", r.Status)

	put("clinic_name", "clinicName", r.Incident.ClinicName)
	put("incident_date", "incidentDate", r.Incident.IncidentDate)
	put("employer_name", "employerName", r.Incident.EmployerName)
	put("job_title", "jobTitle", r.Incident.JobTitle)
	put("injury_cause", "injuryCause", r.Incident.InjuryCause)
	put("body_part", "bodyPart", r.Incident.BodyPart)
	put("incident_location", "incidentLocation", r.Incident.Location)

	put("patient_first_name", "patientFirstName", r.Patient.FirstName)
	put("patient_last_name", "patientLastName", r.Patient.LastName)
	put("patient_date_of_birth", "patientDateOfBirth", r.Patient.DateOfBirth)
	put("patient_phone", "patientPhone", r.Patient.Phone)
	put("employee_id", "employeeId", r.Patient.EmployeeID)

	put("treating_provider", "treatingProvider", r.Providers.TreatingProvider)
	put("referring_provider", "referringProvider", r.Providers.ReferringProvider)

	put("injury_classification", "injuryClassification", r.Assessments.InjuryClassification)
	put("severity", "severity", r.Assessments.Severity)
	put("icd_codes", "icdCodes", r.Assessments.ICDCodes)

	put("blood_pressure", "bloodPressure", r.Vitals.BloodPressure)
	put("heart_rate", "heartRate", r.Vitals.HeartRate)
	put("temperature", "temperature", r.Vitals.Temperature)
	put("pain_level", "painLevel", r.Vitals.PainLevel)

	put("narrative_text", "narrativeText", r.Narrative.Text)

	put("work_status", "workStatus", r.Disposition.WorkStatus)
	put("follow_up_date", "followUpDate", r.Disposition.FollowUpDate)
	put("restrictions", "restrictions", r.Disposition.Restrictions)
	put("referral_needed", "referralNeeded", r.Disposition.ReferralNeeded)

	put("patient_signature", "patientSignature", r.Disclosures.PatientSignature)
	put("provider_signature", "providerSignature", r.Disclosures.ProviderSignature)
	put("privacy_acknowledged", "privacyAcknowledged", r.Disclosures.PrivacyAcknowledged)

	return p
}
