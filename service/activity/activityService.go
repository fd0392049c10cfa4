package activitysvc

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"kitabu/model"
	"kitabu/repository/stream"
)

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, l *model.ActivityLog) error
	List(ctx context.Context, f model.ActivityFilter) ([]model.ActivityLog, error)
}

type Service interface {
	// Record writes an entry inside the caller's transaction.
	Record(ctx context.Context, tx *sql.Tx, actorID int64, action, item string) (*model.ActivityLog, error)
	// Publish forwards a committed entry to the stream; failures are logged, not returned.
	Publish(ctx context.Context, l *model.ActivityLog)
	List(ctx context.Context, f model.ActivityFilter) ([]model.ActivityLog, error)
	Actions() []string
}

type service struct {
	r   Repo
	pub stream.Publisher
	log *slog.Logger
}

func New(r Repo, pub stream.Publisher, log *slog.Logger) Service {
	if pub == nil {
		pub = stream.Noop()
	}
	if log == nil {
		log = slog.Default()
	}
	return &service{r: r, pub: pub, log: log}
}

func (s *service) Record(ctx context.Context, tx *sql.Tx, actorID int64, action, item string) (*model.ActivityLog, error) {
	l := &model.ActivityLog{UserID: &actorID, Action: action, Item: item}
	if err := s.r.Insert(ctx, tx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *service) Publish(ctx context.Context, l *model.ActivityLog) {
	if l == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.pub.Publish(ctx, *l); err != nil {
		s.log.Warn("activity publish failed", "err", err, "activity_id", l.ID)
	}
}

func (s *service) List(ctx context.Context, f model.ActivityFilter) ([]model.ActivityLog, error) {
	return s.r.List(ctx, f)
}

func (s *service) Actions() []string { return model.LogActions }
