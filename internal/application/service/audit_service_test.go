package service

import (
	"context"
	"testing"

	"github.com/quyenpham2020/shinsei-portal/internal/application/dispatcher"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/event"
)

func TestHandleEvent(t *testing.T) {
	var stored *entity.AuditRecord
	auditRepo := &mockAuditRepo{
		createFunc: func(ctx context.Context, rec *entity.AuditRecord) error {
			stored = rec
			return nil
		},
	}
	svc := NewAuditService(auditRepo, noopLogger{})

	evt := event.New(event.TypeApplicationRejected, 7, 20, map[string]interface{}{
		"reason": "missing receipt",
	})
	if err := svc.HandleEvent(context.Background(), evt); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	if stored == nil {
		t.Fatal("no audit record written")
	}
	if stored.EventID != evt.ID {
		t.Errorf("event id = %s, want %s", stored.EventID, evt.ID)
	}
	if stored.EventType != "application.rejected" {
		t.Errorf("event type = %s, want application.rejected", stored.EventType)
	}
	if stored.ApplicationID != 7 || stored.ActorID != 20 {
		t.Errorf("record = %+v, want application 7 actor 20", stored)
	}
	if stored.Detail == "" {
		t.Error("payload detail is empty")
	}
}

func TestRegister_CoversAllEventTypes(t *testing.T) {
	d := dispatcher.NewDispatcher()
	defer d.Close()

	svc := NewAuditService(&mockAuditRepo{}, noopLogger{})
	svc.Register(d)

	for _, typ := range []event.Type{
		event.TypeApplicationCreated,
		event.TypeApplicationSubmitted,
		event.TypeApplicationApproved,
		event.TypeApplicationRejected,
		event.TypeApplicationCommented,
		event.TypeApplicationDeleted,
	} {
		handlers := d.ListHandlers(typ)
		if len(handlers) != 1 || handlers[0].Name != "audit-log" {
			t.Errorf("handlers for %s = %v, want one audit-log handler", typ, handlers)
		}
	}
}

func TestTrail_RequiresApprover(t *testing.T) {
	svc := NewAuditService(&mockAuditRepo{}, noopLogger{})

	if _, err := svc.Trail(context.Background(), owner, 1); !apperr.IsForbidden(err) {
		t.Errorf("Trail() error = %v, want forbidden", err)
	}
	if _, err := svc.Trail(context.Background(), approver, 1); err != nil {
		t.Errorf("approver Trail() error = %v", err)
	}
}
