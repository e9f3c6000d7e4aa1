package inventory

import (
	"context"

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

// =========== Catalog Repository ===========

type catalogRepoPG struct{ pool *pgxpool.Pool }

func NewCatalogRepoPG(pool *pgxpool.Pool) CatalogRepository { return &catalogRepoPG{pool: pool} }

const catalogCols = `id, name, category, requires_sterility, is_loaner, is_active, created_at, updated_at`

func scanCatalogItem(row pgx.Row) (*CatalogItem, error) {
	var ci CatalogItem
	err := row.Scan(&ci.ID, &ci.Name, &ci.Category, &ci.RequiresSterility, &ci.IsLoaner,
		&ci.IsActive, &ci.CreatedAt, &ci.UpdatedAt)
	return &ci, err
}

func (r *catalogRepoPG) Create(ctx context.Context, ci *CatalogItem) error {
	ci.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO item_catalog (id, name, category, requires_sterility, is_loaner, is_active)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		ci.ID, ci.Name, ci.Category, ci.RequiresSterility, ci.IsLoaner, ci.IsActive)
	return err
}

func (r *catalogRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*CatalogItem, error) {
	return scanCatalogItem(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+catalogCols+` FROM item_catalog WHERE id = $1`, id))
}

func (r *catalogRepoPG) Update(ctx context.Context, ci *CatalogItem) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE item_catalog SET name=$2, category=$3, requires_sterility=$4, is_loaner=$5,
			is_active=$6, updated_at=NOW()
		WHERE id = $1`,
		ci.ID, ci.Name, ci.Category, ci.RequiresSterility, ci.IsLoaner, ci.IsActive)
	return err
}

func (r *catalogRepoPG) List(ctx context.Context, limit, offset int) ([]*CatalogItem, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM item_catalog`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+catalogCols+` FROM item_catalog ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*CatalogItem
	for rows.Next() {
		ci, err := scanCatalogItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, ci)
	}
	return items, total, nil
}

func (r *catalogRepoPG) ListAll(ctx context.Context) ([]*CatalogItem, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+catalogCols+` FROM item_catalog ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*CatalogItem
	for rows.Next() {
		ci, err := scanCatalogItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, ci)
	}
	return items, nil
}

// =========== Item Repository ===========

type itemRepoPG struct{ pool *pgxpool.Pool }

func NewItemRepoPG(pool *pgxpool.Pool) ItemRepository { return &itemRepoPG{pool: pool} }

const itemCols = `id, catalog_id, facility_id, serial_number, location, is_sterile,
	sterility_expires_at, status, reserved_case_id, last_verified_at, last_verified_by,
	note, created_at, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.CatalogID, &it.FacilityID, &it.SerialNumber, &it.Location,
		&it.IsSterile, &it.SterilityExpiresAt, &it.Status, &it.ReservedCaseID,
		&it.LastVerifiedAt, &it.LastVerifiedBy, &it.Note, &it.CreatedAt, &it.UpdatedAt)
	return &it, err
}

func (r *itemRepoPG) Create(ctx context.Context, it *Item) error {
	it.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO inventory_item (id, catalog_id, facility_id, serial_number, location,
			is_sterile, sterility_expires_at, status, reserved_case_id, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		it.ID, it.CatalogID, it.FacilityID, it.SerialNumber, it.Location,
		it.IsSterile, it.SterilityExpiresAt, it.Status, it.ReservedCaseID, it.Note)
	return err
}

func (r *itemRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	return scanItem(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+itemCols+` FROM inventory_item WHERE id = $1`, id))
}

func (r *itemRepoPG) Update(ctx context.Context, it *Item) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE inventory_item SET serial_number=$2, location=$3, is_sterile=$4,
			sterility_expires_at=$5, status=$6, reserved_case_id=$7,
			last_verified_at=$8, last_verified_by=$9, note=$10, updated_at=NOW()
		WHERE id = $1`,
		it.ID, it.SerialNumber, it.Location, it.IsSterile, it.SterilityExpiresAt,
		it.Status, it.ReservedCaseID, it.LastVerifiedAt, it.LastVerifiedBy, it.Note)
	return err
}

func (r *itemRepoPG) list(ctx context.Context, where string, arg uuid.UUID, limit, offset int) ([]*Item, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM inventory_item WHERE `+where+` = $1`, arg).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+itemCols+` FROM inventory_item WHERE `+where+` = $1 ORDER BY created_at LIMIT $2 OFFSET $3`,
		arg, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, total, nil
}

func (r *itemRepoPG) ListByFacility(ctx context.Context, facilityID uuid.UUID, limit, offset int) ([]*Item, int, error) {
	return r.list(ctx, "facility_id", facilityID, limit, offset)
}

func (r *itemRepoPG) ListByCatalog(ctx context.Context, catalogID uuid.UUID, limit, offset int) ([]*Item, int, error) {
	return r.list(ctx, "catalog_id", catalogID, limit, offset)
}

func (r *itemRepoPG) Snapshot(ctx context.Context, facilityID uuid.UUID) ([]*Item, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+itemCols+` FROM inventory_item WHERE facility_id = $1`, facilityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}
