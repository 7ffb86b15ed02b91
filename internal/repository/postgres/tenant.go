package postgres

import (
	"context"
	"encoding/json"

	"github.com/suicidekings/carclub/internal/domain/tenant"
	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/logger"
	"github.com/suicidekings/carclub/internal/postgres"
	"github.com/suicidekings/carclub/internal/types"
)

type tenantRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewTenantRepository(db *postgres.DB, logger *logger.Logger) tenant.Repository {
	return &tenantRepository{db: db, logger: logger}
}

func (r *tenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	query := `
	INSERT INTO tenants (
		id, name, city, status, payment_settings,
		product_id, monthly_plan_id, yearly_plan_id,
		monthly_amount, yearly_amount, currency,
		last_completed_step, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
	)
	`

	settingsJSON, err := marshalPaymentSettings(t.PaymentSettings)
	if err != nil {
		return err
	}

	_, err = r.db.GetQuerier(ctx).ExecContext(ctx, query,
		t.ID,
		t.Name,
		t.City,
		t.Status,
		settingsJSON,
		t.ProductID,
		t.MonthlyPlanID,
		t.YearlyPlanID,
		t.MonthlyAmount,
		t.YearlyAmount,
		t.Currency,
		t.LastCompletedStep,
		t.CreatedAt,
		t.UpdatedAt,
	)
	return mapDBError(err, "tenant")
}

func (r *tenantRepository) Get(ctx context.Context, id string) (*tenant.Tenant, error) {
	query := `
	SELECT
		id, name, city, status, payment_settings,
		product_id, monthly_plan_id, yearly_plan_id,
		monthly_amount, yearly_amount, currency,
		last_completed_step, created_at, updated_at
	FROM tenants
	WHERE id = $1 AND status != $2
	`

	t, err := r.scanTenant(r.db.GetQuerier(ctx).QueryRowContext(ctx, query, id, types.StatusDeleted))
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *tenantRepository) Update(ctx context.Context, t *tenant.Tenant) error {
	query := `
	UPDATE tenants SET
		name = $2,
		city = $3,
		status = $4,
		payment_settings = $5,
		product_id = $6,
		monthly_plan_id = $7,
		yearly_plan_id = $8,
		monthly_amount = $9,
		yearly_amount = $10,
		currency = $11,
		last_completed_step = $12,
		updated_at = NOW()
	WHERE id = $1
	`

	settingsJSON, err := marshalPaymentSettings(t.PaymentSettings)
	if err != nil {
		return err
	}

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		t.ID,
		t.Name,
		t.City,
		t.Status,
		settingsJSON,
		t.ProductID,
		t.MonthlyPlanID,
		t.YearlyPlanID,
		t.MonthlyAmount,
		t.YearlyAmount,
		t.Currency,
		t.LastCompletedStep,
	)
	if err != nil {
		return mapDBError(err, "tenant")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return mapDBError(err, "tenant")
	}
	if rows == 0 {
		return ierr.NewError("tenant not found").
			WithHintf("Chapter %s does not exist", t.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *tenantRepository) List(ctx context.Context) ([]*tenant.Tenant, error) {
	return r.list(ctx, `status != $1`, types.StatusDeleted)
}

func (r *tenantRepository) ListActive(ctx context.Context) ([]*tenant.Tenant, error) {
	return r.list(ctx, `status = $1`, types.StatusActive)
}

func (r *tenantRepository) list(ctx context.Context, where string, args ...interface{}) ([]*tenant.Tenant, error) {
	query := `
	SELECT
		id, name, city, status, payment_settings,
		product_id, monthly_plan_id, yearly_plan_id,
		monthly_amount, yearly_amount, currency,
		last_completed_step, created_at, updated_at
	FROM tenants
	WHERE ` + where + `
	ORDER BY created_at ASC
	`

	rows, err := r.db.GetQuerier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapDBError(err, "tenant")
	}
	defer rows.Close()

	var tenants []*tenant.Tenant
	for rows.Next() {
		t, err := r.scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err, "tenant")
	}
	return tenants, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *tenantRepository) scanTenant(row rowScanner) (*tenant.Tenant, error) {
	var t tenant.Tenant
	var settingsJSON []byte

	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.City,
		&t.Status,
		&settingsJSON,
		&t.ProductID,
		&t.MonthlyPlanID,
		&t.YearlyPlanID,
		&t.MonthlyAmount,
		&t.YearlyAmount,
		&t.Currency,
		&t.LastCompletedStep,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, mapDBError(err, "tenant")
	}

	if len(settingsJSON) > 0 {
		var settings tenant.PaymentSettings
		if err := json.Unmarshal(settingsJSON, &settings); err != nil {
			return nil, ierr.WithError(err).
				WithMessage("unmarshal payment settings").
				Mark(ierr.ErrDatabase)
		}
		t.PaymentSettings = &settings
	}

	return &t, nil
}

func marshalPaymentSettings(settings *tenant.PaymentSettings) ([]byte, error) {
	if settings == nil {
		return nil, nil
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return nil, ierr.WithError(err).
			WithMessage("marshal payment settings").
			Mark(ierr.ErrDatabase)
	}
	return data, nil
}
