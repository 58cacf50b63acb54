package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/internal/notifications"
	"github.com/tresmarias-build/procure-backend/internal/workflow"
	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
	"github.com/tresmarias-build/procure-backend/pkg/logger"
)

const defaultReminderAgeHours = 24

type pendingRequestLister interface {
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.MaterialRequest, error)
}

type pendingOrderLister interface {
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.PurchaseOrder, error)
}

type approverResolver interface {
	Resolve(ctx context.Context, input workflow.ResolveInput) (*workflow.ResolveOutput, error)
}

type reminderNotifier interface {
	ApprovalRequested(ctx context.Context, tx *gorm.DB, event notifications.DocumentEvent, approverRole enums.UserRole) error
}

type ApprovalReminderJobParams struct {
	Logger   *logger.Logger
	Requests pendingRequestLister
	Orders   pendingOrderLister
	Workflow approverResolver
	Notifier reminderNotifier
	// MaxAgeHours is how long a document may sit PENDING before approvers
	// are nudged again.
	MaxAgeHours int
}

// NewApprovalReminderJob re-notifies approvers about documents stuck in
// PENDING beyond the configured age.
func NewApprovalReminderJob(params ApprovalReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Requests == nil {
		return nil, fmt.Errorf("material requests lister required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("purchase orders lister required")
	}
	if params.Workflow == nil {
		return nil, fmt.Errorf("workflow resolver required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	maxAge := params.MaxAgeHours
	if maxAge <= 0 {
		maxAge = defaultReminderAgeHours
	}
	return &approvalReminderJob{
		logg:     params.Logger,
		requests: params.Requests,
		orders:   params.Orders,
		workflow: params.Workflow,
		notify:   params.Notifier,
		maxAge:   time.Duration(maxAge) * time.Hour,
		now:      time.Now,
	}, nil
}

type approvalReminderJob struct {
	logg     *logger.Logger
	requests pendingRequestLister
	orders   pendingOrderLister
	workflow approverResolver
	notify   reminderNotifier
	maxAge   time.Duration
	now      func() time.Time
}

func (j *approvalReminderJob) Name() string { return "approval-reminder" }

func (j *approvalReminderJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.maxAge)

	reminded, err := j.remindRequests(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("approval reminder: %w", err)
	}
	orderReminded, err := j.remindOrders(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("approval reminder: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":    cutoff,
		"reminders": reminded + orderReminded,
	})
	j.logg.Info(logCtx, "approval reminders sent")
	return nil
}

func (j *approvalReminderJob) remindRequests(ctx context.Context, cutoff time.Time) (int, error) {
	requests, err := j.requests.ListPendingOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list pending requests: %w", err)
	}
	sent := 0
	for _, request := range requests {
		event := notifications.DocumentEvent{
			RefType: "MR",
			RefID:   request.ID,
			Number:  request.RequestNumber,
			Detail:  fmt.Sprintf("Awaiting a decision since %s.", request.CreatedAt.Format("2006-01-02")),
		}
		if err := j.notify.ApprovalRequested(ctx, nil, event, enums.UserRoleProjectManager); err != nil {
			return sent, fmt.Errorf("remind request %s: %w", request.RequestNumber, err)
		}
		sent++
	}
	return sent, nil
}

func (j *approvalReminderJob) remindOrders(ctx context.Context, cutoff time.Time) (int, error) {
	orders, err := j.orders.ListPendingOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list pending orders: %w", err)
	}
	sent := 0
	for _, order := range orders {
		resolved, err := j.workflow.Resolve(ctx, workflow.ResolveInput{
			ProcessType: enums.ProcessTypePO,
			Amount:      order.TotalAmount,
		})
		if err != nil {
			return sent, fmt.Errorf("resolve approver for %s: %w", order.PONumber, err)
		}
		if resolved.ApproverRole == nil {
			// No band covers the amount; nobody to remind.
			continue
		}
		event := notifications.DocumentEvent{
			RefType: "PO",
			RefID:   order.ID,
			Number:  order.PONumber,
			Detail:  fmt.Sprintf("Awaiting a decision since %s.", order.CreatedAt.Format("2006-01-02")),
		}
		if err := j.notify.ApprovalRequested(ctx, nil, event, *resolved.ApproverRole); err != nil {
			return sent, fmt.Errorf("remind order %s: %w", order.PONumber, err)
		}
		sent++
	}
	return sent, nil
}
