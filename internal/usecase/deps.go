package usecase

import (
	"log/slog"
	"time"

	"github.com/Ignaci05/Area51Bazar/internal/infra/feed"
	"github.com/Ignaci05/Area51Bazar/internal/metrics"

	"github.com/google/uuid"
)

// 現在の時間
type Clock interface {
	Now() time.Time
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.NewString() }

// 各usecaseに共通で渡す部品。ゼロ値の項目は既定値になる
type Deps struct {
	Notifier feed.Publisher
	Metrics  *metrics.Metrics
	Log      *slog.Logger
	Clock    Clock
	IDs      IDGenerator
}

func (d Deps) withDefaults() Deps {
	if d.Notifier == nil {
		d.Notifier = feed.Nop{}
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Clock == nil {
		d.Clock = systemClock{}
	}
	if d.IDs == nil {
		d.IDs = uuidGenerator{}
	}
	return d
}
