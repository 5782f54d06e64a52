package audit

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kasuganosora/enemyai/game/world"
	"github.com/kasuganosora/enemyai/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	queueSize     = 1024
	batchSize     = 100
	flushInterval = 2 * time.Second
)

// Entry holds one combat event to be persisted.
type Entry struct {
	TraceID   string
	MonsterID string
	Monster   string
	Kind      string
	Damage    int
	X         float64
	Y         float64
	GameTime  float64
	Detail    interface{}
}

// EntryFromEvent converts an arena event into an audit entry. The clip name, if any,
// goes into Detail.
func EntryFromEvent(ev world.CombatEvent) Entry {
	e := Entry{
		MonsterID: ev.MonsterID,
		Monster:   ev.MonsterName,
		Kind:      string(ev.Kind),
		Damage:    ev.Damage,
		X:         ev.X,
		Y:         ev.Y,
		GameTime:  ev.At,
	}
	if ev.Clip != "" {
		e.Detail = map[string]string{"clip": ev.Clip}
	}
	return e
}

// Service logs combat events asynchronously in batches.
type Service struct {
	db      *gorm.DB
	ch      chan *model.CombatEvent
	stopCh  chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	dropped atomic.Int64
	logger  *zap.Logger
}

// New creates a new audit Service and starts its background worker.
func New(db *gorm.DB, logger *zap.Logger) *Service {
	svc := &Service{
		db:     db,
		ch:     make(chan *model.CombatEvent, queueSize),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Log enqueues an entry for async DB write. It never blocks; when the queue is full
// the entry is dropped and counted.
func (svc *Service) Log(entry Entry) {
	if entry.TraceID == "" {
		entry.TraceID = uuid.NewString()
	}
	var detail datatypes.JSON
	if entry.Detail != nil {
		raw, err := json.Marshal(entry.Detail)
		if err != nil {
			svc.logger.Warn("audit detail not serializable", zap.String("kind", entry.Kind), zap.Error(err))
		} else {
			detail = datatypes.JSON(raw)
		}
	}
	record := &model.CombatEvent{
		TraceID:   entry.TraceID,
		MonsterID: entry.MonsterID,
		Monster:   entry.Monster,
		Kind:      entry.Kind,
		Damage:    entry.Damage,
		X:         entry.X,
		Y:         entry.Y,
		GameTime:  entry.GameTime,
		Detail:    detail,
	}
	select {
	case svc.ch <- record:
	default:
		svc.dropped.Add(1)
		svc.logger.Warn("audit channel full, dropping entry",
			zap.String("kind", entry.Kind),
			zap.String("monster_id", entry.MonsterID))
	}
}

// Dropped returns how many entries were discarded because the queue was full.
func (svc *Service) Dropped() int64 { return svc.dropped.Load() }

// Stop flushes remaining entries and shuts down the worker.
// It blocks until the worker finishes or ctx is done.
func (svc *Service) Stop(ctx context.Context) {
	svc.once.Do(func() { close(svc.stopCh) })
	done := make(chan struct{})
	go func() {
		svc.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		svc.logger.Warn("audit stop interrupted before flush completed", zap.Error(ctx.Err()))
	}
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]*model.CombatEvent, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("audit batch write failed", zap.Int("size", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-svc.ch:
			batch = append(batch, entry)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			for {
				select {
				case entry := <-svc.ch:
					batch = append(batch, entry)
					if len(batch) >= batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}
