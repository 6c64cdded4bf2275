package migrations

import (
	"gorm.io/gorm"

	customerpostgres "github.com/agizo/agizo-api/internal/domains/customers/adapters/persistence/postgres"
	notificationpostgres "github.com/agizo/agizo-api/internal/domains/notifications/adapters/persistence/postgres"
	orderpostgres "github.com/agizo/agizo-api/internal/domains/orders/adapters/persistence/postgres"
)

// Run applies the schema for every bounded context. Order matters: customers must
// exist before orders reference them.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&customerpostgres.AccountRecord{},
		&customerpostgres.CustomerRecord{},
		&orderpostgres.OrderRecord{},
		&orderpostgres.LineItemRecord{},
		&orderpostgres.IdempotencyRecord{},
		&notificationpostgres.AttemptRecord{},
	)
}
