package out

import (
	"sync"

	"go.uber.org/zap"

	"demoprep/internal/modules/session/domain"
	sessionout "demoprep/internal/modules/session/port/out"
)

// NoticeBuffer collects notices until a front end drains them. Every notice
// is also logged.
type NoticeBuffer struct {
	mu      sync.Mutex
	notices []domain.Notice
	log     *zap.Logger
}

func NewNoticeBuffer(log *zap.Logger) *NoticeBuffer {
	if log == nil {
		log = zap.NewNop()
	}
	return &NoticeBuffer{log: log.Named("notice")}
}

var _ sessionout.Notifier = (*NoticeBuffer)(nil)

func (b *NoticeBuffer) Notify(notice domain.Notice) {
	fields := []zap.Field{zap.String("level", string(notice.Level)), zap.String("message", notice.Message)}
	switch notice.Level {
	case domain.NoticeError, domain.NoticeWarning:
		b.log.Warn("notice", fields...)
	default:
		b.log.Debug("notice", fields...)
	}
	b.mu.Lock()
	b.notices = append(b.notices, notice)
	b.mu.Unlock()
}

// Drain returns the pending notices oldest first and empties the buffer.
func (b *NoticeBuffer) Drain() []domain.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	return out
}
