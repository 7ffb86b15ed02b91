package repository

import (
	"github.com/suicidekings/carclub/internal/domain/member"
	"github.com/suicidekings/carclub/internal/domain/tenant"
	"github.com/suicidekings/carclub/internal/domain/transaction"
	"github.com/suicidekings/carclub/internal/domain/webhookevent"
	"github.com/suicidekings/carclub/internal/logger"
	"github.com/suicidekings/carclub/internal/postgres"
	postgresRepo "github.com/suicidekings/carclub/internal/repository/postgres"
)

func NewTenantRepository(db *postgres.DB, logger *logger.Logger) tenant.Repository {
	return postgresRepo.NewTenantRepository(db, logger)
}

func NewMemberRepository(db *postgres.DB, logger *logger.Logger) member.Repository {
	return postgresRepo.NewMemberRepository(db, logger)
}

func NewWebhookEventRepository(db *postgres.DB, logger *logger.Logger) webhookevent.Repository {
	return postgresRepo.NewWebhookEventRepository(db, logger)
}

func NewTransactionRepository(db *postgres.DB, logger *logger.Logger) transaction.Repository {
	return postgresRepo.NewTransactionRepository(db, logger)
}
