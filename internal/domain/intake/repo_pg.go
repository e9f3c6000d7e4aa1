package intake

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Twaynet/ASC-Inventory-sub003/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return pool
}

// =========== Request Repository ===========

type requestRepoPG struct{ pool *pgxpool.Pool }

func NewRequestRepoPG(pool *pgxpool.Pool) RequestRepository { return &requestRepoPG{pool: pool} }

const requestCols = `id, facility_id, clinic_id, external_id, status, patient_ref, surgeon_ref,
	procedure_code, procedure_display, preferred_date, note, last_submitted_at, created_at, updated_at`

func scanRequest(row pgx.Row) (*SurgeryRequest, error) {
	var r SurgeryRequest
	err := row.Scan(&r.ID, &r.FacilityID, &r.ClinicID, &r.ExternalID, &r.Status, &r.PatientRef,
		&r.SurgeonRef, &r.ProcedureCode, &r.ProcedureDisplay, &r.PreferredDate, &r.Note,
		&r.LastSubmittedAt, &r.CreatedAt, &r.UpdatedAt)
	return &r, err
}

func (r *requestRepoPG) Create(ctx context.Context, req *SurgeryRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO surgery_request (id, facility_id, clinic_id, external_id, status, patient_ref,
			surgeon_ref, procedure_code, procedure_display, preferred_date, note, last_submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		req.ID, req.FacilityID, req.ClinicID, req.ExternalID, req.Status, req.PatientRef,
		req.SurgeonRef, req.ProcedureCode, req.ProcedureDisplay, req.PreferredDate, req.Note,
		req.LastSubmittedAt)
	return err
}

func (r *requestRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*SurgeryRequest, error) {
	return scanRequest(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+requestCols+` FROM surgery_request WHERE id = $1`, id))
}

func (r *requestRepoPG) GetByDedupKey(ctx context.Context, clinicID uuid.UUID, externalID string) (*SurgeryRequest, error) {
	req, err := scanRequest(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+requestCols+` FROM surgery_request WHERE clinic_id = $1 AND external_id = $2`,
		clinicID, externalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *requestRepoPG) Update(ctx context.Context, req *SurgeryRequest) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE surgery_request SET status=$2, patient_ref=$3, surgeon_ref=$4, procedure_code=$5,
			procedure_display=$6, preferred_date=$7, note=$8, last_submitted_at=$9, updated_at=NOW()
		WHERE id = $1`,
		req.ID, req.Status, req.PatientRef, req.SurgeonRef, req.ProcedureCode,
		req.ProcedureDisplay, req.PreferredDate, req.Note, req.LastSubmittedAt)
	return err
}

func (r *requestRepoPG) ListByFacility(ctx context.Context, facilityID uuid.UUID, status RequestStatus, limit, offset int) ([]*SurgeryRequest, int, error) {
	where := `facility_id = $1`
	args := []interface{}{facilityID}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM surgery_request WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + requestCols + ` FROM surgery_request WHERE ` + where +
		` ORDER BY last_submitted_at DESC`
	if status != "" {
		query += ` LIMIT $3 OFFSET $4`
	} else {
		query += ` LIMIT $2 OFFSET $3`
	}
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*SurgeryRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, req)
	}
	return items, total, nil
}

func (r *requestRepoPG) AddSubmission(ctx context.Context, sub *Submission) error {
	sub.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO surgery_request_submission (id, request_id, seq, submitted_at, received_at)
		VALUES ($1,$2,$3,$4,$5)`,
		sub.ID, sub.RequestID, sub.Seq, sub.SubmittedAt, sub.ReceivedAt)
	return err
}

func (r *requestRepoPG) ListSubmissions(ctx context.Context, requestID uuid.UUID) ([]*Submission, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, request_id, seq, submitted_at, received_at
		FROM surgery_request_submission WHERE request_id = $1 ORDER BY seq`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Submission
	for rows.Next() {
		var sub Submission
		if err := rows.Scan(&sub.ID, &sub.RequestID, &sub.Seq, &sub.SubmittedAt, &sub.ReceivedAt); err != nil {
			return nil, err
		}
		items = append(items, &sub)
	}
	return items, nil
}

func (r *requestRepoPG) AddAuditEvent(ctx context.Context, ev *AuditEvent) error {
	ev.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO surgery_request_audit_event (id, request_id, type, actor_type, actor_id, reason_code, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		ev.ID, ev.RequestID, ev.Type, ev.ActorType, ev.ActorID, ev.ReasonCode, ev.Note)
	return err
}

func (r *requestRepoPG) ListAuditEvents(ctx context.Context, requestID uuid.UUID) ([]*AuditEvent, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, request_id, type, actor_type, actor_id, reason_code, note, created_at
		FROM surgery_request_audit_event WHERE request_id = $1 ORDER BY created_at`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*AuditEvent
	for rows.Next() {
		var ev AuditEvent
		if err := rows.Scan(&ev.ID, &ev.RequestID, &ev.Type, &ev.ActorType, &ev.ActorID,
			&ev.ReasonCode, &ev.Note, &ev.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &ev)
	}
	return items, nil
}

func (r *requestRepoPG) AddConversion(ctx context.Context, cv *Conversion) error {
	cv.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO surgery_request_conversion (id, request_id, case_id, converted_by)
		VALUES ($1,$2,$3,$4)`,
		cv.ID, cv.RequestID, cv.CaseID, cv.ConvertedBy)
	return err
}

func (r *requestRepoPG) GetConversion(ctx context.Context, requestID uuid.UUID) (*Conversion, error) {
	var cv Conversion
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, request_id, case_id, converted_by, created_at
		FROM surgery_request_conversion WHERE request_id = $1`, requestID).
		Scan(&cv.ID, &cv.RequestID, &cv.CaseID, &cv.ConvertedBy, &cv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cv, nil
}

// =========== Mapping Repository ===========

type mappingRepoPG struct{ pool *pgxpool.Pool }

func NewMappingRepoPG(pool *pgxpool.Pool) MappingRepository { return &mappingRepoPG{pool: pool} }

const mappingCols = `id, facility_id, clinic_id, surgeon_ref, surgeon_id, created_at`

func (r *mappingRepoPG) Create(ctx context.Context, m *SurgeonMapping) error {
	m.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO surgeon_mapping (id, facility_id, clinic_id, surgeon_ref, surgeon_id)
		VALUES ($1,$2,$3,$4,$5)`,
		m.ID, m.FacilityID, m.ClinicID, m.SurgeonRef, m.SurgeonID)
	return err
}

func (r *mappingRepoPG) Resolve(ctx context.Context, clinicID uuid.UUID, surgeonRef string) (*SurgeonMapping, error) {
	var m SurgeonMapping
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+mappingCols+` FROM surgeon_mapping WHERE clinic_id = $1 AND surgeon_ref = $2`,
		clinicID, surgeonRef).
		Scan(&m.ID, &m.FacilityID, &m.ClinicID, &m.SurgeonRef, &m.SurgeonID, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mappingRepoPG) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*SurgeonMapping, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+mappingCols+` FROM surgeon_mapping WHERE clinic_id = $1 ORDER BY surgeon_ref`, clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*SurgeonMapping
	for rows.Next() {
		var m SurgeonMapping
		if err := rows.Scan(&m.ID, &m.FacilityID, &m.ClinicID, &m.SurgeonRef, &m.SurgeonID, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &m)
	}
	return items, nil
}
