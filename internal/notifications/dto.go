package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
)

// View is the transport shape returned by the list endpoint.
type View struct {
	ID        uuid.UUID              `json:"id"`
	Type      enums.NotificationType `json:"type"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	RefType   *string                `json:"ref_type,omitempty"`
	RefID     *uuid.UUID             `json:"ref_id,omitempty"`
	ReadAt    *time.Time             `json:"read_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

func fromModel(n *models.Notification) View {
	return View{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		RefType:   n.RefType,
		RefID:     n.RefID,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
