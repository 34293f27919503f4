package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quyenpham2020/shinsei-portal/internal/application/port"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/authz"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
)

const maxAttachmentSize = 10 << 20 // 10 MiB

// AttachmentInput carries the metadata for a stored file
type AttachmentInput struct {
	FileName string `json:"file_name"`
	FilePath string `json:"file_path"`
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type"`
}

// AttachmentService manages attachment metadata on applications. Files
// may only be added or removed while the application is still editable.
type AttachmentService interface {
	Add(ctx context.Context, actor authz.Actor, applicationID int64, input AttachmentInput) (*entity.Attachment, error)
	List(ctx context.Context, actor authz.Actor, applicationID int64) ([]*entity.Attachment, error)
	Delete(ctx context.Context, actor authz.Actor, id int64) error
}

type attachmentServiceImpl struct {
	attRepo port.AttachmentRepository
	appRepo port.ApplicationRepository
	policy  authz.Policy
	logger  Logger
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(attRepo port.AttachmentRepository, appRepo port.ApplicationRepository, logger Logger) AttachmentService {
	return &attachmentServiceImpl{
		attRepo: attRepo,
		appRepo: appRepo,
		policy:  authz.NewPolicy(),
		logger:  logger,
	}
}

// Add records attachment metadata against an editable application
func (s *attachmentServiceImpl) Add(ctx context.Context, actor authz.Actor, applicationID int64, input AttachmentInput) (*entity.Attachment, error) {
	input.FileName = strings.TrimSpace(input.FileName)
	if input.FileName == "" {
		return nil, fmt.Errorf("%w: file name is required", apperr.ErrValidation)
	}
	if input.FileSize <= 0 || input.FileSize > maxAttachmentSize {
		return nil, fmt.Errorf("%w: file size must be between 1 byte and %d bytes", apperr.ErrValidation, maxAttachmentSize)
	}

	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanAttach(actor, app.ApplicantID, app.Status) {
		if app.IsTerminal() && actor.ID == app.ApplicantID {
			return nil, fmt.Errorf("%w: application %d is %s and can no longer change", apperr.ErrInvalidState, applicationID, app.Status)
		}
		return nil, fmt.Errorf("%w: not allowed to attach to application %d", apperr.ErrForbidden, applicationID)
	}

	att := &entity.Attachment{
		ApplicationID: applicationID,
		FileName:      input.FileName,
		FilePath:      input.FilePath,
		FileSize:      input.FileSize,
		MimeType:      input.MimeType,
		UploadedBy:    actor.ID,
		CreatedAt:     time.Now(),
	}
	if err := s.attRepo.Create(ctx, att); err != nil {
		s.logger.Error("Failed to add attachment", "error", err, "application_id", applicationID)
		return nil, fmt.Errorf("add attachment: %w", err)
	}

	s.logger.Info("Attachment added", "id", att.ID, "application_id", applicationID, "file_name", att.FileName)
	return att, nil
}

// List returns the attachments of an application the actor can view
func (s *attachmentServiceImpl) List(ctx context.Context, actor authz.Actor, applicationID int64) ([]*entity.Attachment, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanView(actor, app.ApplicantID) {
		return nil, fmt.Errorf("%w: not allowed to view application %d", apperr.ErrForbidden, applicationID)
	}
	return s.attRepo.ListByApplication(ctx, applicationID)
}

// Delete removes attachment metadata while the application is editable
func (s *attachmentServiceImpl) Delete(ctx context.Context, actor authz.Actor, id int64) error {
	att, err := s.attRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	app, err := s.appRepo.GetByID(ctx, att.ApplicationID)
	if err != nil {
		return err
	}
	if !s.policy.CanAttach(actor, app.ApplicantID, app.Status) {
		if app.IsTerminal() && actor.ID == app.ApplicantID {
			return fmt.Errorf("%w: application %d is %s and can no longer change", apperr.ErrInvalidState, app.ID, app.Status)
		}
		return fmt.Errorf("%w: not allowed to modify application %d", apperr.ErrForbidden, app.ID)
	}

	if err := s.attRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete attachment", "error", err, "id", id)
		return fmt.Errorf("delete attachment: %w", err)
	}
	return nil
}
