package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velobase/jobsheet-tracker/internal/common"
	"github.com/velobase/jobsheet-tracker/internal/entity"
)

// CreateSaleRequest wraps parameters for recording a bike sale.
type CreateSaleRequest struct {
	ClientID *uuid.UUID
	BikeID   *uuid.UUID
	Amount   float64
	SoldAt   time.Time
}

type SaleRepository interface {
	Create(ctx context.Context, req *CreateSaleRequest) (*entity.Sale, error)
	List(ctx context.Context) ([]*entity.Sale, error)
}

type saleRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewSaleRepository(pool *pgxpool.Pool, logger *slog.Logger) SaleRepository {
	return &saleRepository{pool: pool, logger: logger}
}

func (r *saleRepository) Create(ctx context.Context, req *CreateSaleRequest) (*entity.Sale, error) {
	s := &entity.Sale{
		ID:       uuid.New(),
		ClientID: req.ClientID,
		BikeID:   req.BikeID,
		Amount:   req.Amount,
		SoldAt:   req.SoldAt,
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO sale (id, client_id, bike_id, amount, sold_at) VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		s.ID, s.ClientID, s.BikeID, s.Amount, s.SoldAt,
	)
	if err := row.Scan(&s.CreatedAt); err != nil {
		r.logger.Error("failed to create sale", "error", err)
		return nil, common.WrapError(err, "create sale")
	}
	return s, nil
}

func (r *saleRepository) List(ctx context.Context) ([]*entity.Sale, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, client_id, bike_id, amount, sold_at, created_at FROM sale ORDER BY sold_at`)
	if err != nil {
		r.logger.Error("failed to list sales", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Sale
	for rows.Next() {
		s := &entity.Sale{}
		if err := rows.Scan(&s.ID, &s.ClientID, &s.BikeID, &s.Amount, &s.SoldAt, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
