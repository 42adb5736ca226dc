package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByStatus filters jobs by their lifecycle status
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByBatch filters jobs/raw events by the batch correlation id
type ByBatch struct {
	BatchID uuid.UUID
}

func (s ByBatch) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("batch_id = ?", s.BatchID)
}

// BySourceKey filters interactions by their provenance key
type BySourceKey struct {
	Source   string
	SourceID string
}

func (s BySourceKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source = ? AND source_id = ?", s.Source, s.SourceID)
}
