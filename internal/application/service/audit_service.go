package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/quyenpham2020/shinsei-portal/internal/application/dispatcher"
	"github.com/quyenpham2020/shinsei-portal/internal/application/port"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/authz"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/event"
)

// AuditService persists workflow events as an audit trail and exposes it
// per application. Register subscribes it to every event type, so the
// trail is written as a side effect of dispatch, never by the services
// that raise the events.
type AuditService interface {
	Register(d dispatcher.Dispatcher)
	HandleEvent(ctx context.Context, evt *event.Event) error
	Trail(ctx context.Context, actor authz.Actor, applicationID int64) ([]*entity.AuditRecord, error)
}

type auditServiceImpl struct {
	auditRepo port.AuditRepository
	logger    Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(auditRepo port.AuditRepository, logger Logger) AuditService {
	return &auditServiceImpl{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Register subscribes the audit sink to all workflow event types
func (s *auditServiceImpl) Register(d dispatcher.Dispatcher) {
	for _, t := range []event.Type{
		event.TypeApplicationCreated,
		event.TypeApplicationSubmitted,
		event.TypeApplicationApproved,
		event.TypeApplicationRejected,
		event.TypeApplicationCommented,
		event.TypeApplicationDeleted,
	} {
		d.SubscribeNamed(t, "audit-log", s.HandleEvent)
	}
}

// HandleEvent writes one event to the audit log
func (s *auditServiceImpl) HandleEvent(ctx context.Context, evt *event.Event) error {
	detail := ""
	if len(evt.Payload) > 0 {
		raw, err := json.Marshal(evt.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		detail = string(raw)
	}

	rec := &entity.AuditRecord{
		EventID:       evt.ID,
		EventType:     evt.Type.String(),
		ApplicationID: evt.ApplicationID,
		ActorID:       evt.ActorID,
		Detail:        detail,
		CreatedAt:     evt.Timestamp,
	}

	if err := s.auditRepo.Create(ctx, rec); err != nil {
		s.logger.Error("Failed to write audit record", "error", err, "event_id", evt.ID)
		return fmt.Errorf("write audit record: %w", err)
	}
	return nil
}

// Trail returns the audit records of one application, oldest first.
// Approvers and admins only.
func (s *auditServiceImpl) Trail(ctx context.Context, actor authz.Actor, applicationID int64) ([]*entity.AuditRecord, error) {
	if !actor.Role.IsApprover() {
		return nil, fmt.Errorf("%w: approver role required", apperr.ErrForbidden)
	}
	return s.auditRepo.ListByApplication(ctx, applicationID)
}
