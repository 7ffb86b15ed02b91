package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/suicidekings/carclub/internal/domain/transaction"
	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/logger"
	"github.com/suicidekings/carclub/internal/postgres"
	"github.com/suicidekings/carclub/internal/types"
)

type transactionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewTransactionRepository(db *postgres.DB, logger *logger.Logger) transaction.Repository {
	return &transactionRepository{db: db, logger: logger}
}

const transactionColumns = `
	id, tenant_id, member_id, provider_event_id,
	provider_subscription_id, provider_payment_id,
	type, status, amount, currency, payer_email, metadata, created_at
`

func (r *transactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	// The unique index on (tenant_id, provider_event_id) rejects the
	// second insert for a replayed provider event; the mapped
	// ErrAlreadyExists is the caller's idempotency signal.
	query := `
	INSERT INTO transactions (` + transactionColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	var metadataJSON []byte
	if len(txn.Metadata) > 0 {
		var err error
		metadataJSON, err = json.Marshal(txn.Metadata)
		if err != nil {
			return ierr.WithError(err).
				WithMessage("marshal transaction metadata").
				Mark(ierr.ErrDatabase)
		}
	}

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		txn.ID,
		txn.TenantID,
		txn.MemberID,
		txn.ProviderEventID,
		txn.ProviderSubscriptionID,
		txn.ProviderPaymentID,
		txn.Type,
		txn.Status,
		txn.Amount,
		txn.Currency,
		txn.PayerEmail,
		metadataJSON,
		txn.CreatedAt,
	)
	return mapDBError(err, "transaction")
}

func (r *transactionRepository) Get(ctx context.Context, id string) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	return r.scanTransaction(r.db.GetQuerier(ctx).QueryRowContext(ctx, query, id))
}

func (r *transactionRepository) List(ctx context.Context, filter *types.TransactionFilter) ([]*transaction.Transaction, error) {
	query, args := buildTransactionQuery(`SELECT `+transactionColumns+` FROM transactions WHERE 1=1`, filter)
	query += " ORDER BY created_at DESC"

	rows, err := r.db.GetQuerier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapDBError(err, "transaction")
	}
	defer rows.Close()

	var txns []*transaction.Transaction
	for rows.Next() {
		t, err := r.scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err, "transaction")
	}
	return txns, nil
}

func (r *transactionRepository) Count(ctx context.Context, filter *types.TransactionFilter) (int, error) {
	query, args := buildTransactionQuery(`SELECT COUNT(*) FROM transactions WHERE 1=1`, filter)

	var count int
	err := r.db.GetQuerier(ctx).QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, mapDBError(err, "transaction")
	}
	return count, nil
}

func buildTransactionQuery(base string, filter *types.TransactionFilter) (string, []interface{}) {
	query := base
	args := []interface{}{}

	if filter == nil {
		return query, args
	}

	if filter.TenantID != "" {
		args = append(args, filter.TenantID)
		query += fmt.Sprintf(" AND tenant_id = $%d", len(args))
	}
	if filter.MemberID != nil {
		args = append(args, *filter.MemberID)
		query += fmt.Sprintf(" AND member_id = $%d", len(args))
	}
	if filter.TransactionType != nil {
		args = append(args, *filter.TransactionType)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.TimeRangeFilter != nil {
		if filter.StartTime != nil {
			args = append(args, *filter.StartTime)
			query += fmt.Sprintf(" AND created_at >= $%d", len(args))
		}
		if filter.EndTime != nil {
			args = append(args, *filter.EndTime)
			query += fmt.Sprintf(" AND created_at <= $%d", len(args))
		}
	}

	return query, args
}

func (r *transactionRepository) scanTransaction(row rowScanner) (*transaction.Transaction, error) {
	var t transaction.Transaction
	var metadataJSON []byte

	err := row.Scan(
		&t.ID,
		&t.TenantID,
		&t.MemberID,
		&t.ProviderEventID,
		&t.ProviderSubscriptionID,
		&t.ProviderPaymentID,
		&t.Type,
		&t.Status,
		&t.Amount,
		&t.Currency,
		&t.PayerEmail,
		&metadataJSON,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, mapDBError(err, "transaction")
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &t.Metadata); err != nil {
			return nil, ierr.WithError(err).
				WithMessage("unmarshal transaction metadata").
				Mark(ierr.ErrDatabase)
		}
	}

	return &t, nil
}
