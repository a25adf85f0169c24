package feed

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"feedview/internal/model"

	"github.com/rs/zerolog"
)

type fakeRepo struct {
	comments      map[string][]model.CommentRecord
	fetches       int
	writeErr      error
	createdPosts  []string
	postsListings int
	// duringFetch runs while a comment fetch is in flight.
	duringFetch func()
}

func (f *fakeRepo) FetchComments(_ context.Context, postID string) ([]model.CommentRecord, error) {
	f.fetches++
	out := f.comments[postID]
	if f.duringFetch != nil {
		f.duringFetch()
	}
	return out, nil
}

func (f *fakeRepo) CreateComment(_ context.Context, c model.NewComment) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.createdPosts = append(f.createdPosts, c.Post)
	return nil
}

func (f *fakeRepo) CreateReply(_ context.Context, r model.NewReply) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.createdPosts = append(f.createdPosts, r.Data.Post)
	return nil
}

func (f *fakeRepo) ListPosts(_ context.Context, list PostList, page, limit int) (model.Page, error) {
	f.postsListings++
	return model.Page{Posts: []model.Post{{ID: string(list)}}, Meta: model.PageMeta{Page: page, Limit: limit}}, nil
}

func (f *fakeRepo) Post(_ context.Context, id string) (model.Post, error) {
	return model.Post{ID: id, Title: "T"}, nil
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{comments: map[string][]model.CommentRecord{
		"p1": {{ID: "c1", Text: "hi"}},
	}}
}

func TestCachedRepository_ReadThroughAndInvalidate(t *testing.T) {
	up := newFakeRepo()
	r := NewCachedRepository(up, NewMemoryCache(), time.Minute, zerolog.Nop())
	ctx := context.Background()

	if _, ok := r.SnapshotComments(ctx, "p1"); ok {
		t.Fatalf("expected empty snapshot before first fetch")
	}
	for i := 0; i < 3; i++ {
		got, err := r.FetchComments(ctx, "p1")
		if err != nil {
			t.Fatalf("FetchComments: %v", err)
		}
		if len(got) != 1 || got[0].ID != "c1" {
			t.Fatalf("unexpected comments: %+v", got)
		}
	}
	if up.fetches != 1 {
		t.Fatalf("expected 1 upstream fetch, got %d", up.fetches)
	}
	if snap, ok := r.SnapshotComments(ctx, "p1"); !ok || len(snap) != 1 {
		t.Fatalf("expected snapshot after fetch")
	}

	if err := r.CreateReply(ctx, model.NewReply{CommentID: "c1", Data: model.CommentData{Post: "p1", Text: "yo"}}); err != nil {
		t.Fatalf("CreateReply: %v", err)
	}
	if _, err := r.FetchComments(ctx, "p1"); err != nil {
		t.Fatalf("FetchComments: %v", err)
	}
	if up.fetches != 2 {
		t.Fatalf("expected refetch after write, got %d fetches", up.fetches)
	}
}

func TestCachedRepository_FailedWriteKeepsCache(t *testing.T) {
	up := newFakeRepo()
	up.writeErr = errors.New("rejected")
	r := NewCachedRepository(up, NewMemoryCache(), 0, zerolog.Nop())
	ctx := context.Background()

	if _, err := r.FetchComments(ctx, "p1"); err != nil {
		t.Fatalf("FetchComments: %v", err)
	}
	if err := r.CreateComment(ctx, model.NewComment{Post: "p1", Text: "x"}); err == nil {
		t.Fatalf("expected write error")
	}
	if _, err := r.FetchComments(ctx, "p1"); err != nil {
		t.Fatalf("FetchComments: %v", err)
	}
	if up.fetches != 1 {
		t.Fatalf("expected cache to survive failed write, got %d fetches", up.fetches)
	}
}

func TestCachedRepository_InvalidationDuringFetchIsNotOverwritten(t *testing.T) {
	up := newFakeRepo()
	r := NewCachedRepository(up, NewMemoryCache(), time.Minute, zerolog.Nop())
	ctx := context.Background()

	up.duringFetch = func() {
		up.duringFetch = nil
		up.comments["p1"] = append(up.comments["p1"], model.CommentRecord{ID: "c2", Text: "fresh"})
		r.InvalidateComments(ctx, "p1")
	}
	got, err := r.FetchComments(ctx, "p1")
	if err != nil {
		t.Fatalf("FetchComments: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("in-flight result should still be returned, got %+v", got)
	}
	if _, ok := r.SnapshotComments(ctx, "p1"); ok {
		t.Fatalf("stale result was written back after invalidation")
	}

	got, err = r.FetchComments(ctx, "p1")
	if err != nil {
		t.Fatalf("FetchComments: %v", err)
	}
	if len(got) != 2 || up.fetches != 2 {
		t.Fatalf("expected fresh upstream read, got %d records after %d fetches", len(got), up.fetches)
	}
	if snap, ok := r.SnapshotComments(ctx, "p1"); !ok || len(snap) != 2 {
		t.Fatalf("expected fresh result cached, got %+v", snap)
	}
}

func TestCachedRepository_PostsAreCachedPerPage(t *testing.T) {
	up := newFakeRepo()
	r := NewCachedRepository(up, NewMemoryCache(), time.Minute, zerolog.Nop())
	ctx := context.Background()

	for _, page := range []int{1, 1, 2} {
		if _, err := r.ListPosts(ctx, ListMyPosts, page, 10); err != nil {
			t.Fatalf("ListPosts: %v", err)
		}
	}
	if up.postsListings != 2 {
		t.Fatalf("expected 2 upstream listings, got %d", up.postsListings)
	}
	p, err := r.Post(ctx, "x")
	if err != nil || p.ID != "x" {
		t.Fatalf("Post: %+v %v", p, err)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if b, err := c.Get(ctx, "k"); err != nil || string(b) != "v" {
		t.Fatalf("Get: %q %v", b, err)
	}
	now = now.Add(2 * time.Second)
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after expiry, got %v", err)
	}
}

func TestQuery_Lifecycle(t *testing.T) {
	var q Query[[]string]
	if !q.Loading() || q.HasData() {
		t.Fatalf("zero query should be pending without data")
	}
	q = q.Snapshot([]string{"old"})
	if !q.Loading() || !q.HasData() || !q.Stale {
		t.Fatalf("snapshot should be stale pending data: %+v", q)
	}
	q = q.Resolve([]string{"new"}, nil)
	if q.Status != StatusLoaded || q.Stale || q.Data[0] != "new" {
		t.Fatalf("unexpected loaded query: %+v", q)
	}
	q = q.Refetch()
	if !q.Loading() || !q.Stale || q.Data[0] != "new" {
		t.Fatalf("refetch should keep data: %+v", q)
	}
	q = q.Resolve(nil, errors.New("offline"))
	if q.Status != StatusFailed || q.Data[0] != "new" || q.Err == nil {
		t.Fatalf("failed refetch should keep data: %+v", q)
	}
	if q.Snapshot([]string{"ignored"}).Data[0] != "new" {
		t.Fatalf("snapshot must not override a settled query")
	}
}

func TestCachedRepository_SnapshotOutlivesTTLOnSQLite(t *testing.T) {
	ctx := context.Background()
	cache, err := OpenSQLiteCache(ctx, filepath.Join(t.TempDir(), "cache.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer cache.Close()
	now := time.Now()
	cache.now = func() time.Time { return now }

	up := newFakeRepo()
	r := NewCachedRepository(up, cache, time.Second, zerolog.Nop())
	if _, err := r.FetchComments(ctx, "p1"); err != nil {
		t.Fatalf("FetchComments: %v", err)
	}

	cache.now = func() time.Time { return now.Add(time.Hour) }
	snap, ok := r.SnapshotComments(ctx, "p1")
	if !ok || len(snap) != 1 || snap[0].ID != "c1" {
		t.Fatalf("expected stale snapshot, got %v %v", snap, ok)
	}
	if _, err := r.FetchComments(ctx, "p1"); err != nil {
		t.Fatalf("FetchComments: %v", err)
	}
	if up.fetches != 2 {
		t.Fatalf("expired entry must not satisfy a fetch; fetches=%d", up.fetches)
	}
}
