package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
	pkgerrors "github.com/tresmarias-build/procure-backend/pkg/errors"
	"github.com/tresmarias-build/procure-backend/pkg/pagination"
)

// Service defines notification fan-out and list/read operations.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, userID uuid.UUID, role enums.UserRole, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, role enums.UserRole) (int64, error)

	// Emitters used by the document services. Each accepts an optional
	// transaction handle so the notification row commits with the document
	// state change.
	ApprovalRequested(ctx context.Context, tx *gorm.DB, event DocumentEvent, approverRole enums.UserRole) error
	DocumentDecided(ctx context.Context, tx *gorm.DB, event DocumentEvent, approved bool, recipientID uuid.UUID) error
	QuotationAwarded(ctx context.Context, tx *gorm.DB, event DocumentEvent, recipientID uuid.UUID) error
	DeliveryReceived(ctx context.Context, tx *gorm.DB, event DocumentEvent, recipientRole enums.UserRole) error
	InvoiceMismatch(ctx context.Context, tx *gorm.DB, event DocumentEvent, recipientRole enums.UserRole) error
}

// DocumentEvent identifies the document a notification refers to.
type DocumentEvent struct {
	RefType string
	RefID   uuid.UUID
	Number  string
	Detail  string
}

type service struct {
	repo Repository
}

// ListParams configures pagination for notifications.
type ListParams struct {
	UserID     uuid.UUID
	Role       enums.UserRole
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []View `json:"items"`
	Cursor string `json:"cursor"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := listNotificationsParams{
		UserID:     params.UserID,
		Role:       params.Role,
		Limit:      pagination.LimitWithBuffer(params.Limit),
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	items := make([]View, 0, len(rows))
	for i := range rows {
		items = append(items, fromModel(&rows[i]))
	}

	return &ListResult{
		Items:  items,
		Cursor: cursor,
	}, nil
}

func (s *service) MarkRead(ctx context.Context, userID uuid.UUID, role enums.UserRole, notificationID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, userID, role, notificationID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID, role enums.UserRole) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	count, err := s.repo.MarkAllRead(ctx, userID, role, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func (s *service) ApprovalRequested(ctx context.Context, tx *gorm.DB, event DocumentEvent, approverRole enums.UserRole) error {
	role := approverRole
	return s.create(ctx, tx, &models.Notification{
		RecipientRole: &role,
		Type:          enums.NotificationTypeApprovalRequested,
		Title:         fmt.Sprintf("%s %s awaits approval", event.RefType, event.Number),
		Body:          body(event, "is pending your approval"),
		RefType:       &event.RefType,
		RefID:         refID(event),
	})
}

func (s *service) DocumentDecided(ctx context.Context, tx *gorm.DB, event DocumentEvent, approved bool, recipientID uuid.UUID) error {
	notificationType := enums.NotificationTypeDocumentApproved
	verb := "was approved"
	if !approved {
		notificationType = enums.NotificationTypeDocumentDeclined
		verb = "was declined"
	}
	id := recipientID
	return s.create(ctx, tx, &models.Notification{
		RecipientID: &id,
		Type:        notificationType,
		Title:       fmt.Sprintf("%s %s %s", event.RefType, event.Number, verb),
		Body:        body(event, verb),
		RefType:     &event.RefType,
		RefID:       refID(event),
	})
}

func (s *service) QuotationAwarded(ctx context.Context, tx *gorm.DB, event DocumentEvent, recipientID uuid.UUID) error {
	id := recipientID
	return s.create(ctx, tx, &models.Notification{
		RecipientID: &id,
		Type:        enums.NotificationTypeQuotationAwarded,
		Title:       fmt.Sprintf("%s %s awarded", event.RefType, event.Number),
		Body:        body(event, "has an awarded quotation"),
		RefType:     &event.RefType,
		RefID:       refID(event),
	})
}

func (s *service) DeliveryReceived(ctx context.Context, tx *gorm.DB, event DocumentEvent, recipientRole enums.UserRole) error {
	role := recipientRole
	return s.create(ctx, tx, &models.Notification{
		RecipientRole: &role,
		Type:          enums.NotificationTypeDeliveryReceived,
		Title:         fmt.Sprintf("Delivery recorded for %s %s", event.RefType, event.Number),
		Body:          body(event, "received a delivery"),
		RefType:       &event.RefType,
		RefID:         refID(event),
	})
}

func (s *service) InvoiceMismatch(ctx context.Context, tx *gorm.DB, event DocumentEvent, recipientRole enums.UserRole) error {
	role := recipientRole
	return s.create(ctx, tx, &models.Notification{
		RecipientRole: &role,
		Type:          enums.NotificationTypeInvoiceMismatch,
		Title:         fmt.Sprintf("%s %s failed matching", event.RefType, event.Number),
		Body:          body(event, "did not pass the three-way match"),
		RefType:       &event.RefType,
		RefID:         refID(event),
	})
}

func (s *service) create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error {
	if err := s.repo.WithTx(tx).Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return nil
}

func body(event DocumentEvent, verb string) string {
	text := fmt.Sprintf("%s %s %s.", event.RefType, event.Number, verb)
	if detail := strings.TrimSpace(event.Detail); detail != "" {
		text = text + " " + detail
	}
	return text
}

func refID(event DocumentEvent) *uuid.UUID {
	if event.RefID == uuid.Nil {
		return nil
	}
	id := event.RefID
	return &id
}
