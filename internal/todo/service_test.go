package todo

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/mvi/internal/clock"
	"github.com/verte-zerg/mvi/internal/codec"
	"github.com/verte-zerg/mvi/internal/kv"
	"github.com/verte-zerg/mvi/internal/model"
)

func newTestService(t *testing.T, store kv.Store, opts ...ServiceOption) (*BlobService, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	base := []ServiceOption{
		WithServiceClock(clock.NewFake(time.Date(2025, 7, 8, 0, 0, 0, 0, time.UTC))),
		WithServiceLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	}
	return NewBlobService(store, append(base, opts...)...), &logs
}

func TestServiceRoundTrip(t *testing.T) {
	for _, c := range []codec.Codec{codec.JSON(), codec.CBOR()} {
		t.Run(c.Name(), func(t *testing.T) {
			ctx := context.Background()
			svc, _ := newTestService(t, kv.NewMemory(), WithCodec(c))
			want := fixtureTodos()
			for _, todo := range want {
				if got := svc.AddTodo(ctx, todo); !got.Equal(todo) {
					t.Fatalf("AddTodo should echo its input")
				}
			}
			got := svc.LoadTodos(ctx)
			if len(got) != len(want) {
				t.Fatalf("expected %d todos, got %d", len(want), len(got))
			}
			for i := range want {
				if !got[i].Equal(want[i]) {
					t.Fatalf("todo %d mismatch: got %+v, want %+v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestServiceLoadWaitsLatency(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	svc := NewBlobService(kv.NewMemory(), WithServiceClock(clk), WithLatency(250*time.Millisecond))
	if todos := svc.LoadTodos(context.Background()); len(todos) != 0 {
		t.Fatalf("expected empty collection, got %d", len(todos))
	}
	waits := clk.Waits()
	if len(waits) != 1 || waits[0] != 250*time.Millisecond {
		t.Fatalf("expected one latency wait, got %v", waits)
	}
}

func TestServiceUpdateDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, kv.NewMemory())
	todos := fixtureTodos()
	for _, todo := range todos {
		svc.AddTodo(ctx, todo)
	}

	renamed := todos[0]
	renamed.Title = "renamed"
	svc.UpdateTodo(ctx, renamed)
	svc.DeleteTodo(ctx, todos[2].ID)

	got := svc.LoadTodos(ctx)
	if len(got) != 2 || got[0].Title != "renamed" || got[1].ID != todos[1].ID {
		t.Fatalf("unexpected collection: %+v", got)
	}

	svc.ClearCompleted(ctx)
	got = svc.LoadTodos(ctx)
	if len(got) != 1 || got[0].ID != todos[0].ID {
		t.Fatalf("expected only the active todo to remain, got %+v", got)
	}
}

func TestServiceDecodeFailureYieldsEmpty(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	if err := store.Put(ctx, DefaultKey, []byte("{not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc, logs := newTestService(t, store)
	if todos := svc.LoadTodos(ctx); len(todos) != 0 {
		t.Fatalf("expected empty collection on decode failure, got %+v", todos)
	}
	if !strings.Contains(logs.String(), "failed to decode todos") {
		t.Fatalf("expected diagnostic log, got %q", logs.String())
	}
}

type failingStore struct {
	kv.Store
	putErr error
}

func (f failingStore) Put(context.Context, string, []byte) error { return f.putErr }

type persistenceLog []string

func (p *persistenceLog) Persistence(op string, _ time.Time, err error) {
	if err != nil {
		*p = append(*p, op)
	}
}

func TestServiceWriteFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	var failures persistenceLog
	store := failingStore{Store: kv.NewMemory(), putErr: errors.New("disk full")}
	svc, logs := newTestService(t, store, WithPersistenceRecorder(&failures))

	todo := fixtureTodos()[0]
	if got := svc.AddTodo(ctx, todo); !got.Equal(todo) {
		t.Fatalf("AddTodo should still echo its input")
	}
	if todos := svc.LoadTodos(ctx); len(todos) != 0 {
		t.Fatalf("nothing should be stored, got %+v", todos)
	}
	if !strings.Contains(logs.String(), "failed to write todos") {
		t.Fatalf("expected diagnostic log, got %q", logs.String())
	}
	if len(failures) != 1 || failures[0] != "write" {
		t.Fatalf("expected one recorded write failure, got %v", failures)
	}
}

func TestServiceUpdateUnknownIDLeavesCollection(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, kv.NewMemory())
	todos := fixtureTodos()
	svc.AddTodo(ctx, todos[0])

	svc.UpdateTodo(ctx, model.NewTodo("stranger", time.Now()))
	got := svc.LoadTodos(ctx)
	if len(got) != 1 || !got[0].Equal(todos[0]) {
		t.Fatalf("unexpected collection: %+v", got)
	}
}
