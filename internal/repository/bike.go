package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velobase/jobsheet-tracker/internal/common"
	"github.com/velobase/jobsheet-tracker/internal/entity"
)

// CreateBikeRequest wraps parameters for registering a bike.
type CreateBikeRequest struct {
	ClientID *uuid.UUID
	Model    string
	Color    *string
	SerialNo *string
}

type BikeRepository interface {
	Create(ctx context.Context, req *CreateBikeRequest) (*entity.Bike, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Bike, error)
	List(ctx context.Context, clientID *uuid.UUID) ([]*entity.Bike, error)
}

type bikeRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewBikeRepository(pool *pgxpool.Pool, logger *slog.Logger) BikeRepository {
	return &bikeRepository{pool: pool, logger: logger}
}

func (r *bikeRepository) Create(ctx context.Context, req *CreateBikeRequest) (*entity.Bike, error) {
	b := &entity.Bike{
		ID:       uuid.New(),
		ClientID: req.ClientID,
		Model:    req.Model,
		Color:    req.Color,
		SerialNo: req.SerialNo,
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO bike (id, client_id, model, color, serial_no) VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		b.ID, b.ClientID, b.Model, b.Color, b.SerialNo,
	)
	if err := row.Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		r.logger.Error("failed to create bike", "model", req.Model, "error", err)
		return nil, common.WrapError(err, "create bike")
	}
	return b, nil
}

func (r *bikeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Bike, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, client_id, model, color, serial_no, created_at, updated_at FROM bike WHERE id = $1`, id)
	b := &entity.Bike{}
	if err := row.Scan(&b.ID, &b.ClientID, &b.Model, &b.Color, &b.SerialNo, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		r.logger.Error("failed to get bike", "bike_id", id, "error", err)
		return nil, err
	}
	return b, nil
}

func (r *bikeRepository) List(ctx context.Context, clientID *uuid.UUID) ([]*entity.Bike, error) {
	q := `SELECT id, client_id, model, color, serial_no, created_at, updated_at FROM bike`
	args := []any{}
	if clientID != nil {
		q += ` WHERE client_id = $1`
		args = append(args, *clientID)
	}
	q += ` ORDER BY created_at`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list bikes", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Bike
	for rows.Next() {
		b := &entity.Bike{}
		if err := rows.Scan(&b.ID, &b.ClientID, &b.Model, &b.Color, &b.SerialNo, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
