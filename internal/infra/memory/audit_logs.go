package memory

import (
	"context"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	repo "github.com/Ignaci05/Area51Bazar/internal/repository"
)

type stateAuditLogs struct {
	st *state
}

func (r stateAuditLogs) Create(ctx context.Context, log model.AuditLog) error {
	r.st.nextAuditID++
	log.ID = r.st.nextAuditID
	r.st.auditLogs = append(r.st.auditLogs, log)
	return nil
}

func (r stateAuditLogs) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	out := make([]model.AuditLog, 0)
	skipped := 0
	//新しい順
	for i := len(r.st.auditLogs) - 1; i >= 0 && len(out) < limit; i-- {
		l := r.st.auditLogs[i]
		if f.ActorUserID != "" && l.ActorUserID != f.ActorUserID {
			continue
		}
		if f.Action != nil && l.Action != *f.Action {
			continue
		}
		if f.ResourceType != nil && l.ResourceType != *f.ResourceType {
			continue
		}
		if f.ResourceID != "" && l.ResourceID != f.ResourceID {
			continue
		}
		if f.CreatedFrom != nil && l.CreatedAt.Before(*f.CreatedFrom) {
			continue
		}
		if f.CreatedTo != nil && l.CreatedAt.After(*f.CreatedTo) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

type lockedAuditLogs struct {
	s *Store
}

func (r *lockedAuditLogs) Create(ctx context.Context, log model.AuditLog) (err error) {
	r.s.withState(func(st *state) { err = stateAuditLogs{st: st}.Create(ctx, log) })
	return
}

func (r *lockedAuditLogs) List(ctx context.Context, f repo.AuditLogFilter) (out []model.AuditLog, err error) {
	r.s.withState(func(st *state) { out, err = stateAuditLogs{st: st}.List(ctx, f) })
	return
}
