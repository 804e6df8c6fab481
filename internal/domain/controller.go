package domain

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// SearchState is the controller's per-view lifecycle.
type SearchState string

const (
	SearchIdle       SearchState = "idle"
	SearchSearching  SearchState = "searching"
	SearchDisplaying SearchState = "displaying"
)

// View is a snapshot of the controller's current result set.
type View struct {
	Scope QueryScope
	State SearchState
	Posts []Post
}

// Controller orchestrates the query builder and the result mapper for one
// navigation surface (home, topic, user). Starting a new search clears the
// previous results immediately; a superseded search may still resolve later
// but never overwrites a newer one (last-search-wins, tracked by a
// monotonically increasing generation counter).
type Controller struct {
	mu      sync.Mutex
	querier LedgerQuerier
	mapper  *Mapper
	logger  *zap.Logger

	generation uint64
	scope      QueryScope
	state      SearchState
	posts      []Post
}

// NewController creates a Controller in the Idle state.
func NewController(querier LedgerQuerier, mapper *Mapper, logger *zap.Logger) *Controller {
	return &Controller{
		querier: querier,
		mapper:  mapper,
		logger:  logger,
		state:   SearchIdle,
	}
}

// View returns a snapshot of the current search state and results.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	posts := make([]Post, len(c.posts))
	copy(posts, c.posts)
	return View{Scope: c.scope, State: c.state, Posts: posts}
}

// Search runs a full retrieval for the given scope and returns the mapped
// posts. A query failure yields an empty result set and a logged
// diagnostic; it never fails the controller. If a newer search started
// while this one was in flight, its results are returned to the caller but
// the displayed view is left untouched.
func (c *Controller) Search(ctx context.Context, scope QueryScope) []Post {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.scope = scope
	c.state = SearchSearching
	c.posts = nil
	c.mu.Unlock()

	posts := c.retrieve(ctx, scope)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		// Superseded while in flight; discard.
		c.logger.Debug("discarding stale search results", zap.String("scope", scope.String()))
		return posts
	}
	c.posts = posts
	c.state = SearchDisplaying
	return posts
}

// HandleIncoming prepends a live record to the displayed results if it
// matches the active scope. Stale or non-matching posts are dropped.
func (c *Controller) HandleIncoming(post Post) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != SearchDisplaying || !scopeMatches(c.scope, post) {
		return
	}
	for _, p := range c.posts {
		if p.ID == post.ID {
			return
		}
	}
	c.posts = append([]Post{post}, c.posts...)
}

func (c *Controller) retrieve(ctx context.Context, scope QueryScope) []Post {
	q := BuildQuery(scope)

	records, err := c.querier.Execute(ctx, q)
	if err != nil {
		qerr := &QueryError{Scope: scope, Err: err}
		c.logger.Error("ledger query failed", zap.String("scope", scope.String()), zap.Error(qerr))
		return []Post{}
	}

	return c.mapper.Collect(ctx, records)
}

func scopeMatches(scope QueryScope, post Post) bool {
	switch scope.Kind {
	case ScopeTopic:
		return post.Topic == scope.Topic
	case ScopeAuthor:
		return post.Author == scope.Author
	default:
		return true
	}
}
