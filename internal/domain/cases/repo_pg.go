package cases

import (
	"context"
	"errors"
	"time"

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

// =========== Case Repository ===========

type caseRepoPG struct{ pool *pgxpool.Pool }

func NewCaseRepoPG(pool *pgxpool.Pool) CaseRepository { return &caseRepoPG{pool: pool} }

const caseCols = `id, facility_id, patient_ref, surgeon_id, procedure_code, procedure_display,
	status, scheduled_date, scheduled_start, scheduled_end, note, created_at, updated_at`

func scanCase(row pgx.Row) (*Case, error) {
	var cs Case
	err := row.Scan(&cs.ID, &cs.FacilityID, &cs.PatientRef, &cs.SurgeonID, &cs.ProcedureCode,
		&cs.ProcedureDisplay, &cs.Status, &cs.ScheduledDate, &cs.ScheduledStart,
		&cs.ScheduledEnd, &cs.Note, &cs.CreatedAt, &cs.UpdatedAt)
	return &cs, err
}

func (r *caseRepoPG) Create(ctx context.Context, cs *Case) error {
	if cs.ID == uuid.Nil {
		cs.ID = uuid.New()
	}
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO surgical_case (id, facility_id, patient_ref, surgeon_id, procedure_code,
			procedure_display, status, scheduled_date, scheduled_start, scheduled_end, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		cs.ID, cs.FacilityID, cs.PatientRef, cs.SurgeonID, cs.ProcedureCode,
		cs.ProcedureDisplay, cs.Status, cs.ScheduledDate, cs.ScheduledStart, cs.ScheduledEnd, cs.Note)
	return err
}

func (r *caseRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Case, error) {
	return scanCase(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+caseCols+` FROM surgical_case WHERE id = $1`, id))
}

func (r *caseRepoPG) Update(ctx context.Context, cs *Case) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE surgical_case SET patient_ref=$2, surgeon_id=$3, procedure_code=$4,
			procedure_display=$5, status=$6, scheduled_date=$7, scheduled_start=$8,
			scheduled_end=$9, note=$10, updated_at=NOW()
		WHERE id = $1`,
		cs.ID, cs.PatientRef, cs.SurgeonID, cs.ProcedureCode, cs.ProcedureDisplay,
		cs.Status, cs.ScheduledDate, cs.ScheduledStart, cs.ScheduledEnd, cs.Note)
	return err
}

func (r *caseRepoPG) ListByFacility(ctx context.Context, facilityID uuid.UUID, limit, offset int) ([]*Case, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM surgical_case WHERE facility_id = $1`, facilityID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+caseCols+` FROM surgical_case WHERE facility_id = $1
		 ORDER BY scheduled_date LIMIT $2 OFFSET $3`, facilityID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Case
	for rows.Next() {
		cs, err := scanCase(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, cs)
	}
	return items, total, nil
}

func (r *caseRepoPG) ListScheduled(ctx context.Context, facilityID uuid.UUID, from, to time.Time) ([]*Case, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+caseCols+` FROM surgical_case
		 WHERE facility_id = $1 AND status = 'scheduled' AND scheduled_date >= $2 AND scheduled_date < $3
		 ORDER BY scheduled_date`, facilityID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Case
	for rows.Next() {
		cs, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, cs)
	}
	return items, nil
}

func (r *caseRepoPG) AddRequirement(ctx context.Context, req *Requirement) error {
	req.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO case_requirement (id, case_id, catalog_id, quantity, is_override)
		VALUES ($1,$2,$3,$4,$5)`,
		req.ID, req.CaseID, req.CatalogID, req.Quantity, req.IsOverride)
	return err
}

func (r *caseRepoPG) GetRequirements(ctx context.Context, caseID uuid.UUID) ([]*Requirement, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, case_id, catalog_id, quantity, is_override, created_at
		FROM case_requirement WHERE case_id = $1 ORDER BY created_at`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Requirement
	for rows.Next() {
		var req Requirement
		if err := rows.Scan(&req.ID, &req.CaseID, &req.CatalogID, &req.Quantity,
			&req.IsOverride, &req.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &req)
	}
	return items, nil
}

func (r *caseRepoPG) RemoveRequirement(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var caseID uuid.UUID
	err := conn(ctx, r.pool).QueryRow(ctx, `
		DELETE FROM case_requirement WHERE id = $1 RETURNING case_id`, id).Scan(&caseID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}
	return caseID, nil
}

func (r *caseRepoPG) ListIDsRequiring(ctx context.Context, catalogID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT DISTINCT c.id FROM surgical_case c
		JOIN case_requirement cr ON cr.case_id = c.id
		WHERE cr.catalog_id = $1 AND c.status = 'scheduled'`, catalogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// =========== Surgeon Repository ===========

type surgeonRepoPG struct{ pool *pgxpool.Pool }

func NewSurgeonRepoPG(pool *pgxpool.Pool) SurgeonRepository { return &surgeonRepoPG{pool: pool} }

func (r *surgeonRepoPG) Create(ctx context.Context, sg *Surgeon) error {
	sg.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO surgeon (id, facility_id, name, npi, is_active)
		VALUES ($1,$2,$3,$4,$5)`,
		sg.ID, sg.FacilityID, sg.Name, sg.NPI, sg.IsActive)
	return err
}

func (r *surgeonRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Surgeon, error) {
	var sg Surgeon
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, facility_id, name, npi, is_active, created_at
		FROM surgeon WHERE id = $1`, id).
		Scan(&sg.ID, &sg.FacilityID, &sg.Name, &sg.NPI, &sg.IsActive, &sg.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sg, nil
}

func (r *surgeonRepoPG) ListByFacility(ctx context.Context, facilityID uuid.UUID) ([]*Surgeon, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, facility_id, name, npi, is_active, created_at
		FROM surgeon WHERE facility_id = $1 ORDER BY name`, facilityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Surgeon
	for rows.Next() {
		var sg Surgeon
		if err := rows.Scan(&sg.ID, &sg.FacilityID, &sg.Name, &sg.NPI, &sg.IsActive, &sg.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &sg)
	}
	return items, nil
}
