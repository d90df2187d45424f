package postgres

import (
	"fulfillment/internal/adapters/out/postgres/historyrepo"
	"fulfillment/internal/adapters/out/postgres/noterepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"

	"gorm.io/gorm"
)

// Models lists every table of the row store.
func Models() []any {
	return []any{
		&orderrepo.OrderDTO{},
		&orderrepo.ItemDTO{},
		&historyrepo.StatusRecordDTO{},
		&historyrepo.ItemRecordDTO{},
		&historyrepo.ChangeRecordDTO{},
		&noterepo.CompletionNoteDTO{},
		&noterepo.CommentDTO{},
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// TruncateAll empties every table. Integration tests call it between cases.
func TruncateAll(db *gorm.DB) error {
	return db.Exec(`TRUNCATE TABLE orders, order_items, order_status_history, order_item_history,
		order_changes, order_completion_notes, order_comments`).Error
}
