package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	InteractionTypeEmail   = "email"
	InteractionTypeMeeting = "meeting"
	InteractionTypeNote    = "note"
)

// Interaction is the normalized projection of one RawEvent, created exactly
// once per distinct (UserId, Source, SourceId).
type Interaction struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	ContactId *uuid.UUID
	Type      string
	Subject   string
	BodyText  string
	Source    string
	SourceId  string
	BatchId   *uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
}
