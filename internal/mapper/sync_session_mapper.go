package mapper

import (
	"encoding/json"

	"practicehub-be/internal/entity"
	"practicehub-be/internal/model"

	"gorm.io/datatypes"
)

type SyncSessionMapper struct{}

func NewSyncSessionMapper() *SyncSessionMapper {
	return &SyncSessionMapper{}
}

func (m *SyncSessionMapper) ToEntity(s *model.SyncSession) *entity.SyncSession {
	if s == nil {
		return nil
	}

	var errDetails *entity.SyncError
	if len(s.ErrorDetails) > 0 {
		var se entity.SyncError
		if err := json.Unmarshal(s.ErrorDetails, &se); err == nil {
			errDetails = &se
		}
	}

	return &entity.SyncSession{
		Id:                 s.Id,
		UserId:             s.UserId,
		Service:            s.Service,
		Status:             s.Status,
		CurrentStep:        s.CurrentStep,
		ProgressPercentage: s.ProgressPercentage,
		TotalItems:         s.TotalItems,
		ImportedItems:      s.ImportedItems,
		FailedItems:        s.FailedItems,
		ErrorDetails:       errDetails,
		StartedAt:          s.StartedAt,
		CompletedAt:        s.CompletedAt,
	}
}

func (m *SyncSessionMapper) ToModel(s *entity.SyncSession) *model.SyncSession {
	if s == nil {
		return nil
	}

	var errDetails datatypes.JSON
	if s.ErrorDetails != nil {
		if data, err := json.Marshal(s.ErrorDetails); err == nil {
			errDetails = datatypes.JSON(data)
		}
	}

	return &model.SyncSession{
		Id:                 s.Id,
		UserId:             s.UserId,
		Service:            s.Service,
		Status:             s.Status,
		CurrentStep:        s.CurrentStep,
		ProgressPercentage: s.ProgressPercentage,
		TotalItems:         s.TotalItems,
		ImportedItems:      s.ImportedItems,
		FailedItems:        s.FailedItems,
		ErrorDetails:       errDetails,
		StartedAt:          s.StartedAt,
		CompletedAt:        s.CompletedAt,
	}
}
