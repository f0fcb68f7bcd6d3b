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

// CreateClientRequest wraps parameters for creating a client.
type CreateClientRequest struct {
	Name  string
	Phone string
	Email *string
}

type ClientRepository interface {
	Create(ctx context.Context, req *CreateClientRequest) (*entity.Client, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Client, error)
	List(ctx context.Context) ([]*entity.Client, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type clientRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewClientRepository(pool *pgxpool.Pool, logger *slog.Logger) ClientRepository {
	return &clientRepository{pool: pool, logger: logger}
}

func (r *clientRepository) Create(ctx context.Context, req *CreateClientRequest) (*entity.Client, error) {
	c := &entity.Client{ID: uuid.New(), Name: req.Name, Phone: req.Phone, Email: req.Email}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO client (id, name, phone, email) VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Phone, c.Email,
	)
	if err := row.Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		r.logger.Error("failed to create client", "name", req.Name, "error", err)
		return nil, common.WrapError(err, "create client")
	}
	return c, nil
}

func (r *clientRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, phone, email, created_at, updated_at FROM client WHERE id = $1`, id)
	c := &entity.Client{}
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		r.logger.Error("failed to get client", "client_id", id, "error", err)
		return nil, err
	}
	return c, nil
}

func (r *clientRepository) List(ctx context.Context) ([]*entity.Client, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, phone, email, created_at, updated_at FROM client ORDER BY created_at`)
	if err != nil {
		r.logger.Error("failed to list clients", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Client
	for rows.Next() {
		c := &entity.Client{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *clientRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM client WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check client existence", "client_id", id, "error", err)
		return false, err
	}
	return exists, nil
}
