package financial

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

// =========== Signal Repository ===========

type signalRepoPG struct{ pool *pgxpool.Pool }

func NewSignalRepoPG(pool *pgxpool.Pool) SignalRepository { return &signalRepoPG{pool: pool} }

func (r *signalRepoPG) AppendDeclaration(ctx context.Context, d *ClinicDeclaration) error {
	d.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO clinic_financial_declaration (id, request_id, state, reason_codes, note, actor_id)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		d.ID, d.RequestID, d.State, d.ReasonCodes, d.Note, d.ActorID)
	return err
}

func (r *signalRepoPG) AppendVerification(ctx context.Context, v *AscVerification) error {
	v.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO asc_financial_verification (id, request_id, state, reason_codes, note, actor_id)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		v.ID, v.RequestID, v.State, v.ReasonCodes, v.Note, v.ActorID)
	return err
}

func (r *signalRepoPG) AppendOverride(ctx context.Context, o *Override) error {
	o.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO financial_override (id, request_id, state, note, actor_id)
		VALUES ($1,$2,$3,$4,$5)`,
		o.ID, o.RequestID, o.State, o.Note, o.ActorID)
	return err
}

const declarationCols = `id, request_id, state, reason_codes, note, actor_id, created_at`

func scanDeclaration(row pgx.Row) (*ClinicDeclaration, error) {
	var d ClinicDeclaration
	err := row.Scan(&d.ID, &d.RequestID, &d.State, &d.ReasonCodes, &d.Note, &d.ActorID, &d.CreatedAt)
	return &d, err
}

func scanVerification(row pgx.Row) (*AscVerification, error) {
	var v AscVerification
	err := row.Scan(&v.ID, &v.RequestID, &v.State, &v.ReasonCodes, &v.Note, &v.ActorID, &v.CreatedAt)
	return &v, err
}

func scanOverride(row pgx.Row) (*Override, error) {
	var o Override
	err := row.Scan(&o.ID, &o.RequestID, &o.State, &o.Note, &o.ActorID, &o.CreatedAt)
	return &o, err
}

func (r *signalRepoPG) LatestDeclaration(ctx context.Context, requestID uuid.UUID) (*ClinicDeclaration, error) {
	d, err := scanDeclaration(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+declarationCols+` FROM clinic_financial_declaration
		 WHERE request_id = $1 ORDER BY created_at DESC LIMIT 1`, requestID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *signalRepoPG) LatestVerification(ctx context.Context, requestID uuid.UUID) (*AscVerification, error) {
	v, err := scanVerification(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+declarationCols+` FROM asc_financial_verification
		 WHERE request_id = $1 ORDER BY created_at DESC LIMIT 1`, requestID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *signalRepoPG) LatestOverride(ctx context.Context, requestID uuid.UUID) (*Override, error) {
	o, err := scanOverride(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, request_id, state, note, actor_id, created_at FROM financial_override
		 WHERE request_id = $1 ORDER BY created_at DESC LIMIT 1`, requestID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *signalRepoPG) ListDeclarations(ctx context.Context, requestID uuid.UUID) ([]*ClinicDeclaration, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+declarationCols+` FROM clinic_financial_declaration
		 WHERE request_id = $1 ORDER BY created_at`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ClinicDeclaration
	for rows.Next() {
		d, err := scanDeclaration(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, nil
}

func (r *signalRepoPG) ListVerifications(ctx context.Context, requestID uuid.UUID) ([]*AscVerification, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+declarationCols+` FROM asc_financial_verification
		 WHERE request_id = $1 ORDER BY created_at`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*AscVerification
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

func (r *signalRepoPG) ListOverrides(ctx context.Context, requestID uuid.UUID) ([]*Override, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT id, request_id, state, note, actor_id, created_at FROM financial_override
		 WHERE request_id = $1 ORDER BY created_at`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Override
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, nil
}

// =========== Cache Repository ===========

type cacheRepoPG struct{ pool *pgxpool.Pool }

func NewCacheRepoPG(pool *pgxpool.Pool) CacheRepository { return &cacheRepoPG{pool: pool} }

const cacheCols = `request_id, clinic_state, asc_state, override_state, risk_tier, computed_at`

func scanCache(row pgx.Row) (*Cache, error) {
	var c Cache
	err := row.Scan(&c.RequestID, &c.ClinicState, &c.AscState, &c.OverrideState, &c.RiskTier, &c.ComputedAt)
	return &c, err
}

func (r *cacheRepoPG) Upsert(ctx context.Context, c *Cache) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO financial_readiness_cache (request_id, clinic_state, asc_state, override_state, risk_tier, computed_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (request_id) DO UPDATE SET clinic_state = EXCLUDED.clinic_state,
			asc_state = EXCLUDED.asc_state, override_state = EXCLUDED.override_state,
			risk_tier = EXCLUDED.risk_tier, computed_at = EXCLUDED.computed_at`,
		c.RequestID, c.ClinicState, c.AscState, c.OverrideState, c.RiskTier, c.ComputedAt)
	return err
}

func (r *cacheRepoPG) GetByRequest(ctx context.Context, requestID uuid.UUID) (*Cache, error) {
	return scanCache(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+cacheCols+` FROM financial_readiness_cache WHERE request_id = $1`, requestID))
}

func (r *cacheRepoPG) ListByFacility(ctx context.Context, facilityID uuid.UUID, limit, offset int) ([]*Cache, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT COUNT(*) FROM financial_readiness_cache c
		JOIN surgery_request sr ON sr.id = c.request_id
		WHERE sr.facility_id = $1`, facilityID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT c.request_id, c.clinic_state, c.asc_state, c.override_state, c.risk_tier, c.computed_at
		FROM financial_readiness_cache c
		JOIN surgery_request sr ON sr.id = c.request_id
		WHERE sr.facility_id = $1
		ORDER BY c.computed_at DESC LIMIT $2 OFFSET $3`, facilityID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Cache
	for rows.Next() {
		c, err := scanCache(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, nil
}
