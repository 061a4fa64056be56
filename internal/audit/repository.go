package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SignInEvent records one resolver outcome.
type SignInEvent struct {
	ID           uuid.UUID
	OccurredAt   time.Time
	AuthProvider string
	UserSource   *string
	EmployeeID   *string
	Success      bool
	DenyReason   *string
}

// Repository persists sign-in events.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RecordSignIn inserts one event row.
func (r *Repository) RecordSignIn(ctx context.Context, event SignInEvent) error {
	const query = `
        INSERT INTO signin_events (id, occurred_at, auth_provider, user_source, employee_id, success, deny_reason)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `

	var userSource any
	if event.UserSource != nil {
		userSource = *event.UserSource
	}
	var employeeID any
	if event.EmployeeID != nil {
		employeeID = *event.EmployeeID
	}
	var denyReason any
	if event.DenyReason != nil {
		denyReason = *event.DenyReason
	}

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.OccurredAt,
		event.AuthProvider,
		userSource,
		employeeID,
		event.Success,
		denyReason,
	)
	return err
}
