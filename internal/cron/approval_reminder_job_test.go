package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/internal/notifications"
	"github.com/tresmarias-build/procure-backend/internal/workflow"
	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
	"github.com/tresmarias-build/procure-backend/pkg/logger"
)

type fakeRequestLister struct {
	requests []models.MaterialRequest
}

func (f *fakeRequestLister) ListPendingOlderThan(context.Context, time.Time) ([]models.MaterialRequest, error) {
	return f.requests, nil
}

type fakeOrderLister struct {
	orders []models.PurchaseOrder
}

func (f *fakeOrderLister) ListPendingOlderThan(context.Context, time.Time) ([]models.PurchaseOrder, error) {
	return f.orders, nil
}

type fakeResolver struct {
	role *enums.UserRole
}

func (f *fakeResolver) Resolve(context.Context, workflow.ResolveInput) (*workflow.ResolveOutput, error) {
	return &workflow.ResolveOutput{ApproverRole: f.role}, nil
}

type recordingNotifier struct {
	events []notifications.DocumentEvent
	roles  []enums.UserRole
}

func (r *recordingNotifier) ApprovalRequested(_ context.Context, _ *gorm.DB, event notifications.DocumentEvent, role enums.UserRole) error {
	r.events = append(r.events, event)
	r.roles = append(r.roles, role)
	return nil
}

func newReminderJob(t *testing.T, requests *fakeRequestLister, orders *fakeOrderLister, resolver *fakeResolver, notifier *recordingNotifier) Job {
	t.Helper()
	job, err := NewApprovalReminderJob(ApprovalReminderJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Requests: requests,
		Orders:   orders,
		Workflow: resolver,
		Notifier: notifier,
	})
	if err != nil {
		t.Fatalf("NewApprovalReminderJob: %v", err)
	}
	return job
}

func TestApprovalReminderNudgesStaleDocuments(t *testing.T) {
	gm := enums.UserRoleGeneralManager
	requests := &fakeRequestLister{requests: []models.MaterialRequest{
		{ID: uuid.New(), RequestNumber: "MR-20260801-0001"},
	}}
	orders := &fakeOrderLister{orders: []models.PurchaseOrder{
		{ID: uuid.New(), PONumber: "PO-20260801-0001", TotalAmount: decimal.NewFromInt(250000)},
	}}
	notifier := &recordingNotifier{}

	job := newReminderJob(t, requests, orders, &fakeResolver{role: &gm}, notifier)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(notifier.events) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(notifier.events))
	}
	if notifier.events[0].Number != "MR-20260801-0001" || notifier.roles[0] != enums.UserRoleProjectManager {
		t.Fatalf("unexpected request reminder: %+v to %s", notifier.events[0], notifier.roles[0])
	}
	if notifier.events[1].Number != "PO-20260801-0001" || notifier.roles[1] != gm {
		t.Fatalf("unexpected order reminder: %+v to %s", notifier.events[1], notifier.roles[1])
	}
}

func TestApprovalReminderSkipsUnroutedOrders(t *testing.T) {
	orders := &fakeOrderLister{orders: []models.PurchaseOrder{
		{ID: uuid.New(), PONumber: "PO-20260801-0002", TotalAmount: decimal.NewFromInt(5)},
	}}
	notifier := &recordingNotifier{}

	job := newReminderJob(t, &fakeRequestLister{}, orders, &fakeResolver{role: nil}, notifier)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(notifier.events) != 0 {
		t.Fatalf("expected no reminders, got %d", len(notifier.events))
	}
}
