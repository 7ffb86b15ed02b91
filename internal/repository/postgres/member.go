package postgres

import (
	"context"

	"github.com/suicidekings/carclub/internal/domain/member"
	"github.com/suicidekings/carclub/internal/logger"
	"github.com/suicidekings/carclub/internal/postgres"
	"github.com/suicidekings/carclub/internal/types"
)

type memberRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewMemberRepository(db *postgres.DB, logger *logger.Logger) member.Repository {
	return &memberRepository{db: db, logger: logger}
}

const memberColumns = `
	id, tenant_id, email, first_name, last_name,
	subscription_id, subscription_status, membership_status, membership_tier,
	subscription_start, next_billing_date,
	status, created_at, updated_at, created_by, updated_by
`

func (r *memberRepository) Create(ctx context.Context, m *member.Member) error {
	query := `
	INSERT INTO members (` + memberColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		m.ID,
		m.TenantID,
		member.NormalizeEmail(m.Email),
		m.FirstName,
		m.LastName,
		m.SubscriptionID,
		m.SubscriptionStatus,
		m.MembershipStatus,
		m.MembershipTier,
		m.SubscriptionStart,
		m.NextBillingDate,
		m.Status,
		m.CreatedAt,
		m.UpdatedAt,
		m.CreatedBy,
		m.UpdatedBy,
	)
	return mapDBError(err, "member")
}

func (r *memberRepository) Get(ctx context.Context, id string) (*member.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1 AND status != $2`

	return r.scanMember(r.db.GetQuerier(ctx).QueryRowContext(ctx, query, id, types.StatusDeleted))
}

func (r *memberRepository) GetByEmail(ctx context.Context, tenantID, email string) (*member.Member, error) {
	query := `
	SELECT ` + memberColumns + `
	FROM members
	WHERE tenant_id = $1 AND email = $2 AND status != $3
	`

	return r.scanMember(r.db.GetQuerier(ctx).QueryRowContext(
		ctx, query, tenantID, member.NormalizeEmail(email), types.StatusDeleted))
}

func (r *memberRepository) GetBySubscriptionID(ctx context.Context, tenantID, subscriptionID string) (*member.Member, error) {
	query := `
	SELECT ` + memberColumns + `
	FROM members
	WHERE tenant_id = $1 AND subscription_id = $2 AND status != $3
	`

	return r.scanMember(r.db.GetQuerier(ctx).QueryRowContext(
		ctx, query, tenantID, subscriptionID, types.StatusDeleted))
}

func (r *memberRepository) Update(ctx context.Context, m *member.Member) error {
	query := `
	UPDATE members SET
		email = $2,
		first_name = $3,
		last_name = $4,
		subscription_id = $5,
		subscription_status = $6,
		membership_status = $7,
		membership_tier = $8,
		subscription_start = $9,
		next_billing_date = $10,
		status = $11,
		updated_at = NOW(),
		updated_by = $12
	WHERE id = $1
	`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		m.ID,
		member.NormalizeEmail(m.Email),
		m.FirstName,
		m.LastName,
		m.SubscriptionID,
		m.SubscriptionStatus,
		m.MembershipStatus,
		m.MembershipTier,
		m.SubscriptionStart,
		m.NextBillingDate,
		m.Status,
		types.GetUserID(ctx),
	)
	return mapDBError(err, "member")
}

func (r *memberRepository) ListByTenant(ctx context.Context, tenantID string) ([]*member.Member, error) {
	query := `
	SELECT ` + memberColumns + `
	FROM members
	WHERE tenant_id = $1 AND status != $2
	ORDER BY created_at ASC
	`

	rows, err := r.db.GetQuerier(ctx).QueryContext(ctx, query, tenantID, types.StatusDeleted)
	if err != nil {
		return nil, mapDBError(err, "member")
	}
	defer rows.Close()

	var members []*member.Member
	for rows.Next() {
		m, err := r.scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err, "member")
	}
	return members, nil
}

func (r *memberRepository) scanMember(row rowScanner) (*member.Member, error) {
	var m member.Member
	err := row.Scan(
		&m.ID,
		&m.TenantID,
		&m.Email,
		&m.FirstName,
		&m.LastName,
		&m.SubscriptionID,
		&m.SubscriptionStatus,
		&m.MembershipStatus,
		&m.MembershipTier,
		&m.SubscriptionStart,
		&m.NextBillingDate,
		&m.Status,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.CreatedBy,
		&m.UpdatedBy,
	)
	if err != nil {
		return nil, mapDBError(err, "member")
	}
	return &m, nil
}
