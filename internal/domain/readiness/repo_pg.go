package readiness

import (
	"context"
	"encoding/json"
	"fmt"

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

// =========== Cache Repository ===========

type cacheRepoPG struct{ pool *pgxpool.Pool }

func NewCacheRepoPG(pool *pgxpool.Pool) CacheRepository { return &cacheRepoPG{pool: pool} }

func (r *cacheRepoPG) Upsert(ctx context.Context, c *Cache) error {
	shortages, err := json.Marshal(c.Shortages)
	if err != nil {
		return fmt.Errorf("encode shortages: %w", err)
	}
	_, err = conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO readiness_cache (case_id, state, shortages, total_required, total_verified, computed_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (case_id) DO UPDATE SET state = EXCLUDED.state,
			shortages = EXCLUDED.shortages, total_required = EXCLUDED.total_required,
			total_verified = EXCLUDED.total_verified, computed_at = EXCLUDED.computed_at`,
		c.CaseID, c.State, shortages, c.TotalRequired, c.TotalVerified, c.ComputedAt)
	return err
}

func (r *cacheRepoPG) GetByCase(ctx context.Context, caseID uuid.UUID) (*Cache, error) {
	var c Cache
	var shortages []byte
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT case_id, state, shortages, total_required, total_verified, computed_at
		FROM readiness_cache WHERE case_id = $1`, caseID).
		Scan(&c.CaseID, &c.State, &shortages, &c.TotalRequired, &c.TotalVerified, &c.ComputedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(shortages, &c.Shortages); err != nil {
		return nil, fmt.Errorf("decode shortages: %w", err)
	}
	return &c, nil
}

// =========== Attestation Repository ===========

type attestationRepoPG struct{ pool *pgxpool.Pool }

func NewAttestationRepoPG(pool *pgxpool.Pool) AttestationRepository {
	return &attestationRepoPG{pool: pool}
}

const attestationCols = `id, case_id, type, state, actor_id, note, created_at`

func scanAttestation(row pgx.Row) (*Attestation, error) {
	var a Attestation
	err := row.Scan(&a.ID, &a.CaseID, &a.Type, &a.State, &a.ActorID, &a.Note, &a.CreatedAt)
	return &a, err
}

func (r *attestationRepoPG) Create(ctx context.Context, a *Attestation) error {
	a.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO case_attestation (id, case_id, type, state, actor_id, note)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.CaseID, a.Type, a.State, a.ActorID, a.Note)
	return err
}

func (r *attestationRepoPG) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*Attestation, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+attestationCols+` FROM case_attestation WHERE case_id = $1 ORDER BY created_at`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var atts []*Attestation
	for rows.Next() {
		a, err := scanAttestation(rows)
		if err != nil {
			return nil, err
		}
		atts = append(atts, a)
	}
	return atts, nil
}

func (r *attestationRepoPG) ListByCases(ctx context.Context, caseIDs []uuid.UUID) (map[uuid.UUID][]*Attestation, error) {
	if len(caseIDs) == 0 {
		return map[uuid.UUID][]*Attestation{}, nil
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+attestationCols+` FROM case_attestation WHERE case_id = ANY($1) ORDER BY created_at`, caseIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	byCase := make(map[uuid.UUID][]*Attestation)
	for rows.Next() {
		a, err := scanAttestation(rows)
		if err != nil {
			return nil, err
		}
		byCase[a.CaseID] = append(byCase[a.CaseID], a)
	}
	return byCase, nil
}
