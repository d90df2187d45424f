package postgres

import (
	"fulfillment/internal/adapters/out/postgres/historyrepo"
	"fulfillment/internal/adapters/out/postgres/noterepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/core/ports"

	"gorm.io/gorm"
)

// GormStore hands out repositories on the main connection. Their change events are
// published as soon as each statement succeeds.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(s.db)
}

func (s *GormStore) ItemRepository() ports.ItemRepository {
	return orderrepo.NewGormItemRepository(s.db)
}

func (s *GormStore) HistoryRepository() ports.HistoryRepository {
	return historyrepo.NewGormHistoryRepository(s.db)
}

func (s *GormStore) NoteRepository() ports.NoteRepository {
	return noterepo.NewGormNoteRepository(s.db)
}
