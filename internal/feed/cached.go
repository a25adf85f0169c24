package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"feedview/internal/model"

	"github.com/rs/zerolog"
)

// CachedRepository puts a Cache in front of a Repository. Reads are read-through;
// a successful comment write invalidates that post's comment query.
//
// Cache failures never fail a read or a write; they are logged and the upstream
// result is used.
type CachedRepository struct {
	upstream Repository
	cache    Cache
	ttl      time.Duration
	log      zerolog.Logger

	// gens counts invalidations per key. A fetch that started before an
	// invalidation does not write its result back.
	mu   sync.Mutex
	gens map[string]uint64
}

var _ Repository = (*CachedRepository)(nil)

func NewCachedRepository(upstream Repository, cache Cache, ttl time.Duration, log zerolog.Logger) *CachedRepository {
	return &CachedRepository{
		upstream: upstream,
		cache:    cache,
		ttl:      ttl,
		log:      log.With().Str("component", "feed.cache").Logger(),
		gens:     map[string]uint64{},
	}
}

func CommentsKey(postID string) string { return "comments:" + postID }

func PostKey(postID string) string { return "post:" + postID }

func ListKey(list PostList, page, limit int) string {
	return "posts:" + string(list) + ":" + strconv.Itoa(page) + ":" + strconv.Itoa(limit)
}

func (r *CachedRepository) FetchComments(ctx context.Context, postID string) ([]model.CommentRecord, error) {
	var out []model.CommentRecord
	err := r.readThrough(ctx, CommentsKey(postID), &out, func() (any, error) {
		return r.upstream.FetchComments(ctx, postID)
	})
	return out, err
}

// SnapshotComments returns cached comments without touching the network. A
// persistent cache serves them even past their TTL.
func (r *CachedRepository) SnapshotComments(ctx context.Context, postID string) ([]model.CommentRecord, bool) {
	var out []model.CommentRecord
	key := CommentsKey(postID)
	p, ok := r.cache.(peeker)
	if !ok {
		found := r.lookup(ctx, key, &out)
		return out, found
	}
	b, err := p.Peek(ctx, key)
	if err != nil {
		return nil, false
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, false
	}
	return out, true
}

// InvalidateComments drops the cached comment query for postID.
func (r *CachedRepository) InvalidateComments(ctx context.Context, postID string) {
	key := CommentsKey(postID)
	r.mu.Lock()
	r.gens[key]++
	r.mu.Unlock()
	if err := r.cache.Delete(ctx, key); err != nil {
		r.log.Warn().Err(err).Str("post_id", postID).Msg("invalidate comments")
	}
}

func (r *CachedRepository) CreateComment(ctx context.Context, c model.NewComment) error {
	if err := r.upstream.CreateComment(ctx, c); err != nil {
		return err
	}
	r.InvalidateComments(ctx, c.Post)
	return nil
}

func (r *CachedRepository) CreateReply(ctx context.Context, rep model.NewReply) error {
	if err := r.upstream.CreateReply(ctx, rep); err != nil {
		return err
	}
	r.InvalidateComments(ctx, rep.Data.Post)
	return nil
}

func (r *CachedRepository) ListPosts(ctx context.Context, list PostList, page, limit int) (model.Page, error) {
	var out model.Page
	err := r.readThrough(ctx, ListKey(list, page, limit), &out, func() (any, error) {
		return r.upstream.ListPosts(ctx, list, page, limit)
	})
	return out, err
}

func (r *CachedRepository) Post(ctx context.Context, id string) (model.Post, error) {
	var out model.Post
	err := r.readThrough(ctx, PostKey(id), &out, func() (any, error) {
		return r.upstream.Post(ctx, id)
	})
	return out, err
}

func (r *CachedRepository) lookup(ctx context.Context, key string, out any) bool {
	b, err := r.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			r.log.Warn().Err(err).Str("key", key).Msg("cache get")
		}
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("cache decode; dropping entry")
		_ = r.cache.Delete(ctx, key)
		return false
	}
	return true
}

func (r *CachedRepository) readThrough(ctx context.Context, key string, out any, fetch func() (any, error)) error {
	if r.lookup(ctx, key, out) {
		return nil
	}
	gen := r.generation(key)
	v, err := fetch()
	if err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	if r.generation(key) != gen {
		r.log.Debug().Str("key", key).Msg("invalidated during fetch; not caching")
		return nil
	}
	if err := r.cache.Set(ctx, key, b, r.ttl); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("cache set")
	}
	return nil
}

func (r *CachedRepository) generation(key string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gens[key]
}
