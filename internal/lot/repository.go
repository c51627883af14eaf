package lot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openlot/parking-booking-backend/internal/numberpool"
	"github.com/openlot/parking-booking-backend/internal/timeset"
)

// Repository persists lot documents; the spot id list, the number pool, and
// the availability calendar travel inside the document so a single Save
// commits them together.
type Repository interface {
	Create(ctx context.Context, l *Lot) error
	GetByID(ctx context.Context, id string) (*Lot, error)
	Save(ctx context.Context, l *Lot) error
	List(ctx context.Context, filter Filter) ([]*Lot, int, error)
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const lotColumns = "id, name, address, longitude, latitude, per_hour_cents, spots, numbers, available, created_at, updated_at"

func marshalDoc(l *Lot) (spots, numbers, available []byte, err error) {
	ids := l.Spots
	if ids == nil {
		ids = []string{}
	}
	if spots, err = json.Marshal(ids); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal spot ids: %w", err)
	}
	if numbers, err = json.Marshal(l.Numbers); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal number pool: %w", err)
	}
	if available, err = json.Marshal(l.Available); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal availability: %w", err)
	}
	return spots, numbers, available, nil
}

func scanLot(row pgx.Row) (*Lot, error) {
	var l Lot
	var spots, numbers, available []byte

	if err := row.Scan(
		&l.ID, &l.Name, &l.Address, &l.Location.Longitude, &l.Location.Latitude,
		&l.PerHourCents, &spots, &numbers, &available,
		&l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(spots, &l.Spots); err != nil {
		return nil, fmt.Errorf("unmarshal spot ids: %w", err)
	}
	l.Numbers = &numberpool.Pool{}
	if err := json.Unmarshal(numbers, l.Numbers); err != nil {
		return nil, fmt.Errorf("unmarshal number pool: %w", err)
	}
	l.Available = &timeset.Set{}
	if err := json.Unmarshal(available, l.Available); err != nil {
		return nil, fmt.Errorf("unmarshal availability: %w", err)
	}
	return &l, nil
}

func (r *pgxRepository) Create(ctx context.Context, l *Lot) error {
	spots, numbers, available, err := marshalDoc(l)
	if err != nil {
		return err
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.lots").
		Columns("name", "address", "longitude", "latitude", "per_hour_cents", "spots", "numbers", "available").
		Values(l.Name, l.Address, l.Location.Longitude, l.Location.Latitude, l.PerHourCents, spots, numbers, available).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create lot query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Lot, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(lotColumns).
		From("public.lots").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get lot query failed: %w", err)
	}

	l, err := scanLot(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get lot failed: %w", err)
	}
	return l, nil
}

func (r *pgxRepository) Save(ctx context.Context, l *Lot) error {
	spots, numbers, available, err := marshalDoc(l)
	if err != nil {
		return err
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.lots").
		Set("name", l.Name).
		Set("address", l.Address).
		Set("longitude", l.Location.Longitude).
		Set("latitude", l.Location.Latitude).
		Set("per_hour_cents", l.PerHourCents).
		Set("spots", spots).
		Set("numbers", numbers).
		Set("available", available).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": l.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build save lot query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save lot failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Lot, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select(lotColumns + ", count(*) OVER() AS total_count").
		From("public.lots").
		OrderBy("created_at DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64((filter.Page - 1) * filter.PageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list lots query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list lots failed: %w", err)
	}
	defer rows.Close()

	var lots []*Lot
	var total int
	for rows.Next() {
		var l Lot
		var spots, numbers, available []byte
		if err := rows.Scan(
			&l.ID, &l.Name, &l.Address, &l.Location.Longitude, &l.Location.Latitude,
			&l.PerHourCents, &spots, &numbers, &available,
			&l.CreatedAt, &l.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan lot failed: %w", err)
		}
		if err := json.Unmarshal(spots, &l.Spots); err != nil {
			return nil, 0, fmt.Errorf("unmarshal spot ids: %w", err)
		}
		l.Numbers = &numberpool.Pool{}
		if err := json.Unmarshal(numbers, l.Numbers); err != nil {
			return nil, 0, fmt.Errorf("unmarshal number pool: %w", err)
		}
		l.Available = &timeset.Set{}
		if err := json.Unmarshal(available, l.Available); err != nil {
			return nil, 0, fmt.Errorf("unmarshal availability: %w", err)
		}
		lots = append(lots, &l)
	}
	return lots, total, rows.Err()
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.lots").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete lot query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete lot failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
