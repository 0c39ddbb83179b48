package todo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/mvi/internal/clock"
	"github.com/verte-zerg/mvi/internal/codec"
	"github.com/verte-zerg/mvi/internal/kv"
	"github.com/verte-zerg/mvi/internal/model"
)

// Service is the persistence collaborator the Store delegates to. Its methods
// never fail from the caller's point of view; problems are logged.
type Service interface {
	LoadTodos(ctx context.Context) []model.Todo
	AddTodo(ctx context.Context, t model.Todo) model.Todo
	UpdateTodo(ctx context.Context, t model.Todo) model.Todo
	DeleteTodo(ctx context.Context, id uuid.UUID)
	ClearCompleted(ctx context.Context)
}

// DefaultKey is the well-known key holding the whole collection.
const DefaultKey = "todos_data"

// DefaultLatency is the simulated delay of LoadTodos.
const DefaultLatency = 100 * time.Millisecond

// PersistenceRecorder observes collaborator operations.
type PersistenceRecorder interface {
	Persistence(op string, start time.Time, err error)
}

// BlobService keeps the full collection as one encoded blob under one key.
// Every write reads the whole collection, mutates it and writes it back, with
// no locking: two concurrent writers can lose an update.
type BlobService struct {
	store    kv.Store
	codec    codec.Codec
	key      string
	clock    clock.Clock
	latency  time.Duration
	logger   *slog.Logger
	recorder PersistenceRecorder
}

var _ Service = (*BlobService)(nil)

// ServiceOption configures a BlobService.
type ServiceOption func(*BlobService)

func WithCodec(c codec.Codec) ServiceOption { return func(s *BlobService) { s.codec = c } }

func WithKey(key string) ServiceOption { return func(s *BlobService) { s.key = key } }

func WithServiceClock(c clock.Clock) ServiceOption { return func(s *BlobService) { s.clock = c } }

func WithLatency(d time.Duration) ServiceOption { return func(s *BlobService) { s.latency = d } }

func WithServiceLogger(l *slog.Logger) ServiceOption { return func(s *BlobService) { s.logger = l } }

func WithPersistenceRecorder(r PersistenceRecorder) ServiceOption {
	return func(s *BlobService) { s.recorder = r }
}

// NewBlobService returns a Service over store.
func NewBlobService(store kv.Store, opts ...ServiceOption) *BlobService {
	s := &BlobService{
		store:   store,
		codec:   codec.JSON(),
		key:     DefaultKey,
		clock:   clock.Real(),
		latency: DefaultLatency,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadTodos waits the simulated latency and returns the stored collection.
func (s *BlobService) LoadTodos(ctx context.Context) []model.Todo {
	if err := clock.Sleep(ctx, s.clock, s.latency); err != nil {
		s.logger.Debug("load interrupted", "error", err)
	}
	return s.read(ctx)
}

// AddTodo appends t and echoes it back.
func (s *BlobService) AddTodo(ctx context.Context, t model.Todo) model.Todo {
	todos := s.read(ctx)
	s.write(ctx, "add", appended(todos, t))
	return t
}

// UpdateTodo replaces the entry with t's ID, if present, and echoes t back.
func (s *BlobService) UpdateTodo(ctx context.Context, t model.Todo) model.Todo {
	todos := s.read(ctx)
	for i := range todos {
		if todos[i].ID == t.ID {
			todos[i] = t
			break
		}
	}
	s.write(ctx, "update", todos)
	return t
}

// DeleteTodo removes the entry with id.
func (s *BlobService) DeleteTodo(ctx context.Context, id uuid.UUID) {
	s.write(ctx, "delete", without(s.read(ctx), id))
}

// ClearCompleted removes every completed entry.
func (s *BlobService) ClearCompleted(ctx context.Context) {
	todos := s.read(ctx)
	kept := make([]model.Todo, 0, len(todos))
	for _, t := range todos {
		if !t.IsCompleted {
			kept = append(kept, t)
		}
	}
	s.write(ctx, "clearCompleted", kept)
}

// read treats a missing, empty or undecodable blob as an empty collection.
func (s *BlobService) read(ctx context.Context) []model.Todo {
	start := time.Now()
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			s.observe("read", start, nil)
			return []model.Todo{}
		}
		s.observe("read", start, err)
		s.logger.Warn("failed to read todos", "key", s.key, "error", err)
		return []model.Todo{}
	}
	if len(data) == 0 {
		s.observe("read", start, nil)
		return []model.Todo{}
	}
	var todos []model.Todo
	if err := s.codec.Unmarshal(data, &todos); err != nil {
		s.observe("decode", start, err)
		s.logger.Warn("failed to decode todos", "key", s.key, "codec", s.codec.Name(), "error", err)
		return []model.Todo{}
	}
	s.observe("read", start, nil)
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos
}

// write logs and swallows failures; nothing is rolled back or retried.
func (s *BlobService) write(ctx context.Context, op string, todos []model.Todo) {
	start := time.Now()
	data, err := s.codec.Marshal(todos)
	if err != nil {
		s.observe("encode", start, err)
		s.logger.Warn("failed to encode todos", "op", op, "codec", s.codec.Name(), "error", err)
		return
	}
	if err := s.store.Put(ctx, s.key, data); err != nil {
		s.observe("write", start, err)
		s.logger.Warn("failed to write todos", "op", op, "key", s.key, "error", err)
		return
	}
	s.observe("write", start, nil)
	s.logger.Debug("todos written", "op", op, "count", len(todos), "bytes", len(data))
}

func (s *BlobService) observe(op string, start time.Time, err error) {
	if s.recorder != nil {
		s.recorder.Persistence(op, start, err)
	}
}
