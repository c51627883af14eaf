package spot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openlot/parking-booking-backend/internal/timeset"
)

// Repository persists spot documents. Save writes the whole document in a
// single UPDATE, which is the engine's atomicity unit.
type Repository interface {
	Create(ctx context.Context, s *Spot) error
	GetByID(ctx context.Context, id string) (*Spot, error)
	GetByIDs(ctx context.Context, ids []string) ([]*Spot, error)
	Save(ctx context.Context, s *Spot) error
	List(ctx context.Context, filter Filter) ([]*Spot, int, error)
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const spotColumns = "id, address, longitude, latitude, lot_id, number, price_cents, available, booked, bookings, created_at, updated_at"

func marshalDoc(s *Spot) (available, booked, bookings []byte, err error) {
	if available, err = json.Marshal(s.Available); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal available ranges: %w", err)
	}
	if booked, err = json.Marshal(s.Booked); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal booked ranges: %w", err)
	}
	ids := s.Bookings
	if ids == nil {
		ids = []string{}
	}
	if bookings, err = json.Marshal(ids); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal booking ids: %w", err)
	}
	return available, booked, bookings, nil
}

func scanSpot(row pgx.Row) (*Spot, error) {
	var s Spot
	var available, booked, bookings []byte

	if err := row.Scan(
		&s.ID, &s.Address, &s.Location.Longitude, &s.Location.Latitude,
		&s.LotID, &s.Number, &s.PriceCents,
		&available, &booked, &bookings,
		&s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}

	s.Available = &timeset.Set{}
	if err := json.Unmarshal(available, s.Available); err != nil {
		return nil, fmt.Errorf("unmarshal available ranges: %w", err)
	}
	s.Booked = &timeset.Set{}
	if err := json.Unmarshal(booked, s.Booked); err != nil {
		return nil, fmt.Errorf("unmarshal booked ranges: %w", err)
	}
	if err := json.Unmarshal(bookings, &s.Bookings); err != nil {
		return nil, fmt.Errorf("unmarshal booking ids: %w", err)
	}
	return &s, nil
}

func (r *pgxRepository) Create(ctx context.Context, s *Spot) error {
	available, booked, bookings, err := marshalDoc(s)
	if err != nil {
		return err
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.spots").
		Columns("address", "longitude", "latitude", "lot_id", "number", "price_cents", "available", "booked", "bookings").
		Values(s.Address, s.Location.Longitude, s.Location.Latitude, s.LotID, s.Number, s.PriceCents, available, booked, bookings).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create spot query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Spot, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(spotColumns).
		From("public.spots").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get spot query failed: %w", err)
	}

	s, err := scanSpot(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get spot failed: %w", err)
	}
	return s, nil
}

func (r *pgxRepository) GetByIDs(ctx context.Context, ids []string) ([]*Spot, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(spotColumns).
		From("public.spots").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("number NULLS LAST", "created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get spots query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get spots failed: %w", err)
	}
	defer rows.Close()

	var spots []*Spot
	for rows.Next() {
		s, err := scanSpot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan spot failed: %w", err)
		}
		spots = append(spots, s)
	}
	return spots, rows.Err()
}

func (r *pgxRepository) Save(ctx context.Context, s *Spot) error {
	available, booked, bookings, err := marshalDoc(s)
	if err != nil {
		return err
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.spots").
		Set("address", s.Address).
		Set("longitude", s.Location.Longitude).
		Set("latitude", s.Location.Latitude).
		Set("lot_id", s.LotID).
		Set("number", s.Number).
		Set("price_cents", s.PriceCents).
		Set("available", available).
		Set("booked", booked).
		Set("bookings", bookings).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build save spot query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save spot failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Spot, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(spotColumns + ", count(*) OVER() AS total_count").
		From("public.spots")

	if filter.LotID != "" {
		query = query.Where(squirrel.Eq{"lot_id": filter.LotID})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	query = query.OrderBy("number NULLS LAST", "created_at").
		Limit(uint64(filter.PageSize)).
		Offset(uint64((filter.Page - 1) * filter.PageSize))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list spots query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list spots failed: %w", err)
	}
	defer rows.Close()

	var spots []*Spot
	var total int
	for rows.Next() {
		var s Spot
		var available, booked, bookings []byte
		if err := rows.Scan(
			&s.ID, &s.Address, &s.Location.Longitude, &s.Location.Latitude,
			&s.LotID, &s.Number, &s.PriceCents,
			&available, &booked, &bookings,
			&s.CreatedAt, &s.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan spot failed: %w", err)
		}
		s.Available = &timeset.Set{}
		if err := json.Unmarshal(available, s.Available); err != nil {
			return nil, 0, fmt.Errorf("unmarshal available ranges: %w", err)
		}
		s.Booked = &timeset.Set{}
		if err := json.Unmarshal(booked, s.Booked); err != nil {
			return nil, 0, fmt.Errorf("unmarshal booked ranges: %w", err)
		}
		if err := json.Unmarshal(bookings, &s.Bookings); err != nil {
			return nil, 0, fmt.Errorf("unmarshal booking ids: %w", err)
		}
		spots = append(spots, &s)
	}
	return spots, total, rows.Err()
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.spots").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete spot query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete spot failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
