package encounter

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const encCols = `id, status, clinic_name, incident_date, employer_name, job_title,
	injury_cause, body_part, incident_location,
	patient_first_name, patient_last_name, patient_date_of_birth, patient_phone, employee_id,
	treating_provider, referring_provider,
	injury_classification, severity,
	blood_pressure, heart_rate, temperature, pain_level,
	narrative_text,
	work_status, follow_up_date, restrictions, referral_needed,
	patient_signature, provider_signature, privacy_acknowledged,
	submitted_at, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, enc *Encounter) error {
	if enc.ID == uuid.Nil {
		enc.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO encounter (
			id, status, clinic_name, incident_date, employer_name, job_title,
			injury_cause, body_part, incident_location,
			patient_first_name, patient_last_name, patient_date_of_birth, patient_phone, employee_id,
			treating_provider, referring_provider,
			injury_classification, severity,
			blood_pressure, heart_rate, temperature, pain_level,
			narrative_text,
			work_status, follow_up_date, restrictions, referral_needed,
			patient_signature, provider_signature, privacy_acknowledged
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,
			$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
			$21,$22,$23,$24,$25,$26,$27,$28,$29,$30
		)`,
		enc.ID, enc.Status, enc.ClinicName, enc.IncidentDate, enc.EmployerName, enc.JobTitle,
		enc.InjuryCause, enc.BodyPart, enc.IncidentLocation,
		enc.PatientFirstName, enc.PatientLastName, enc.PatientDateOfBirth, enc.PatientPhone, enc.EmployeeID,
		enc.TreatingProvider, enc.ReferringProvider,
		enc.InjuryClassification, enc.Severity,
		enc.BloodPressure, enc.HeartRate, enc.Temperature, enc.PainLevel,
		enc.NarrativeText,
		enc.WorkStatus, enc.FollowUpDate, enc.Restrictions, enc.ReferralNeeded,
		enc.PatientSignature, enc.ProviderSignature, enc.PrivacyAcknowledged,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Encounter, error) {
	return scanEnc(r.pool.QueryRow(ctx, `SELECT `+encCols+` FROM encounter WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, enc *Encounter) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE encounter SET
			status=$2, clinic_name=$3, incident_date=$4, employer_name=$5, job_title=$6,
			injury_cause=$7, body_part=$8, incident_location=$9,
			patient_first_name=$10, patient_last_name=$11, patient_date_of_birth=$12,
			patient_phone=$13, employee_id=$14,
			treating_provider=$15, referring_provider=$16,
			injury_classification=$17, severity=$18,
			blood_pressure=$19, heart_rate=$20, temperature=$21, pain_level=$22,
			narrative_text=$23,
			work_status=$24, follow_up_date=$25, restrictions=$26, referral_needed=$27,
			patient_signature=$28, provider_signature=$29, privacy_acknowledged=$30,
			submitted_at=$31, updated_at=NOW()
		WHERE id = $1`,
		enc.ID, enc.Status, enc.ClinicName, enc.IncidentDate, enc.EmployerName, enc.JobTitle,
		enc.InjuryCause, enc.BodyPart, enc.IncidentLocation,
		enc.PatientFirstName, enc.PatientLastName, enc.PatientDateOfBirth,
		enc.PatientPhone, enc.EmployeeID,
		enc.TreatingProvider, enc.ReferringProvider,
		enc.InjuryClassification, enc.Severity,
		enc.BloodPressure, enc.HeartRate, enc.Temperature, enc.PainLevel,
		enc.NarrativeText,
		enc.WorkStatus, enc.FollowUpDate, enc.Restrictions, enc.ReferralNeeded,
		enc.PatientSignature, enc.ProviderSignature, enc.PrivacyAcknowledged,
		enc.SubmittedAt,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM encounter WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Encounter, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM encounter`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+encCols+` FROM encounter ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectEncs(rows, total)
}

func (r *repoPG) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Encounter, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM encounter WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+encCols+` FROM encounter WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectEncs(rows, total)
}

func scanEnc(row pgx.Row) (*Encounter, error) {
	var e Encounter
	err := row.Scan(
		&e.ID, &e.Status, &e.ClinicName, &e.IncidentDate, &e.EmployerName, &e.JobTitle,
		&e.InjuryCause, &e.BodyPart, &e.IncidentLocation,
		&e.PatientFirstName, &e.PatientLastName, &e.PatientDateOfBirth, &e.PatientPhone, &e.EmployeeID,
		&e.TreatingProvider, &e.ReferringProvider,
		&e.InjuryClassification, &e.Severity,
		&e.BloodPressure, &e.HeartRate, &e.Temperature, &e.PainLevel,
		&e.NarrativeText,
		&e.WorkStatus, &e.FollowUpDate, &e.Restrictions, &e.ReferralNeeded,
		&e.PatientSignature, &e.ProviderSignature, &e.PrivacyAcknowledged,
		&e.SubmittedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEncs(rows pgx.Rows, total int) ([]*Encounter, int, error) {
	var encs []*Encounter
	for rows.Next() {
		var e Encounter
		err := rows.Scan(
			&e.ID, &e.Status, &e.ClinicName, &e.IncidentDate, &e.EmployerName, &e.JobTitle,
			&e.InjuryCause, &e.BodyPart, &e.IncidentLocation,
			&e.PatientFirstName, &e.PatientLastName, &e.PatientDateOfBirth, &e.PatientPhone, &e.EmployeeID,
			&e.TreatingProvider, &e.ReferringProvider,
			&e.InjuryClassification, &e.Severity,
			&e.BloodPressure, &e.HeartRate, &e.Temperature, &e.PainLevel,
			&e.NarrativeText,
			&e.WorkStatus, &e.FollowUpDate, &e.Restrictions, &e.ReferralNeeded,
			&e.PatientSignature, &e.ProviderSignature, &e.PrivacyAcknowledged,
			&e.SubmittedAt, &e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		encs = append(encs, &e)
	}
	return encs, total, nil
}
