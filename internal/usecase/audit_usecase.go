package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	repo "github.com/Ignaci05/Area51Bazar/internal/repository"
)

// 監査ログの閲覧（管理者）
type AuditUsecase struct {
	audit repo.AuditLogRepository
}

func NewAuditUsecase(audit repo.AuditLogRepository) *AuditUsecase {
	return &AuditUsecase{audit: audit}
}

type ListAuditLogsInput struct {
	ActorUserID  string
	Action       string
	ResourceType string
	ResourceID   string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

func (u *AuditUsecase) List(ctx context.Context, in ListAuditLogsInput) ([]model.AuditLog, error) {
	if in.Limit < 0 || in.Limit > 200 {
		return nil, Validation("invalid limit")
	}
	if in.Offset < 0 {
		return nil, Validation("invalid offset")
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return nil, Validation("from must be <= to")
	}

	f := repo.AuditLogFilter{
		ActorUserID: strings.TrimSpace(in.ActorUserID),
		ResourceID:  strings.TrimSpace(in.ResourceID),
		CreatedFrom: in.From,
		CreatedTo:   in.To,
		Limit:       in.Limit,
		Offset:      in.Offset,
	}
	if in.Action != "" {
		a := model.AuditAction(strings.ToUpper(in.Action))
		f.Action = &a
	}
	if in.ResourceType != "" {
		rt := model.AuditResourceType(strings.ToLower(in.ResourceType))
		f.ResourceType = &rt
	}

	logs, err := u.audit.List(ctx, f)
	if err != nil {
		return nil, fromRepo(err, "not found")
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}
