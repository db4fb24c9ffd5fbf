package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"image-studio/internal/adjust"
	"image-studio/internal/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() ByImage {
	s := adjust.Defaults()
	s.Brightness, s.Invert = 25, true
	at := time.Date(2024, 3, 9, 10, 11, 12, 13, time.UTC)
	return ByImage{
		"img-a": {ImageID: "img-a", Adjustments: s, AppliedAt: at, PresetUsed: "vivid"},
		"img-b": {ImageID: "img-b", Adjustments: adjust.Defaults(), AppliedAt: at},
	}
}

func adapters(t *testing.T) map[string]Adapter {
	t.Helper()
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	file := OpenFile(filepath.Join(t.TempDir(), "project.json"))
	return map[string]Adapter{"memory": NewMemory(), "sqlite": db, "json": file}
}

func TestAdapters(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			got, err := a.Load(ctx, "p1")
			require.NoError(t, err)
			assert.Nil(t, got, "never-saved project loads as nil")

			require.NoError(t, a.Save(ctx, "p1", sample()))
			got, err = a.Load(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, sample(), got)

			require.NoError(t, a.Save(ctx, "p1", ByImage{"img-b": sample()["img-b"]}))
			got, err = a.Load(ctx, "p1")
			require.NoError(t, err)
			assert.Len(t, got, 1, "save replaces the project's set")

			require.NoError(t, a.Save(ctx, "p2", ByImage{}))
			got, err = a.Load(ctx, "p2")
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestSQLiteFileSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "studio.db")
	db, err := OpenSQLite(path, WithMkdirAll())
	require.NoError(t, err)
	require.NoError(t, db.Save(context.Background(), "p", sample()))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()
	got, err := db.Load(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestSQLiteErrorsArePersistenceKind(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Close())
	err = db.Save(context.Background(), "p", sample())
	assert.True(t, errs.Is(err, errs.KindPersistence))
}

func TestFileKeepsOtherProjects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "project.json")
	ctx := context.Background()

	f := OpenFile(path)
	require.NoError(t, f.Save(ctx, "a", sample()))
	require.NoError(t, f.Save(ctx, "b", ByImage{"img-b": sample()["img-b"]}))

	reopened := OpenFile(path)
	got, err := reopened.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
	got, err = reopened.Load(ctx, "b")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFileCorruptIsPersistenceKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err := OpenFile(path).Load(context.Background(), "p")
	assert.True(t, errs.Is(err, errs.KindPersistence))
}

func TestOpen(t *testing.T) {
	a, err := Open("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, a)
	a, err = Open("json", filepath.Join(t.TempDir(), "p.json"))
	require.NoError(t, err)
	assert.IsType(t, &File{}, a)
	_, err = Open("postgres", "")
	assert.Error(t, err)
}

func TestSaverDebounces(t *testing.T) {
	mem := NewMemory()
	s := NewSaver(mem, "p", 30*time.Millisecond, nil)
	var saved atomic.Int32
	s.OnSaved(func(ByImage) { saved.Add(1) })

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		s.Schedule(func() ByImage { calls.Add(1); return sample() })
	}
	assert.True(t, s.Pending())
	assert.Eventually(t, func() bool { return saved.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, mem.Saves())

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestSaverFlush(t *testing.T) {
	mem := NewMemory()
	s := NewSaver(mem, "p", time.Hour, nil)
	require.NoError(t, s.Flush(context.Background()), "nothing pending")
	s.Schedule(sample)
	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, 1, mem.Saves())
	assert.False(t, s.Pending())
}

// slow blocks Save until release is closed and records whether Close ran
// while a save was still writing.
type slow struct {
	*Memory
	started  chan struct{}
	release  chan struct{}
	writing  atomic.Bool
	closed   atomic.Bool
	overlaps atomic.Int32
}

func (a *slow) Save(ctx context.Context, id string, data ByImage) error {
	a.writing.Store(true)
	a.started <- struct{}{}
	<-a.release
	if a.closed.Load() {
		a.overlaps.Add(1)
	}
	a.writing.Store(false)
	return a.Memory.Save(ctx, id, data)
}

func (a *slow) Close() error {
	if a.writing.Load() {
		a.overlaps.Add(1)
	}
	a.closed.Store(true)
	return nil
}

func TestSaverCloseWaitsForBackgroundSave(t *testing.T) {
	a := &slow{Memory: NewMemory(), started: make(chan struct{}, 1), release: make(chan struct{})}
	s := NewSaver(a, "p", time.Millisecond, nil)
	s.Schedule(sample)
	<-a.started

	done := make(chan error, 1)
	go func() { done <- s.Close(context.Background()) }()
	select {
	case <-done:
		t.Fatal("Close returned while a save was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(a.release)
	require.NoError(t, <-done)
	assert.True(t, a.closed.Load())
	assert.Zero(t, a.overlaps.Load())
	assert.Equal(t, 1, a.Saves())
}

func TestSaverCloseWritesPending(t *testing.T) {
	mem := NewMemory()
	s := NewSaver(mem, "p", time.Hour, nil)
	s.Schedule(sample)
	require.NoError(t, s.Close(context.Background()))
	assert.Equal(t, 1, mem.Saves())
	assert.False(t, s.Pending())
}

type failing struct{ Memory }

func (f *failing) Save(context.Context, string, ByImage) error {
	return errs.E("store.Save", errs.KindPersistence, errors.New("disk full"))
}

func TestSaverReportsBackgroundErrors(t *testing.T) {
	s := NewSaver(&failing{}, "p", 5*time.Millisecond, nil)
	got := make(chan error, 1)
	s.OnError(func(err error) { got <- err })
	s.Schedule(sample)
	select {
	case err := <-got:
		assert.True(t, errs.Is(err, errs.KindPersistence))
	case <-time.After(time.Second):
		t.Fatal("no error reported")
	}
}
