package resolver

import (
	"context"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	libstore "github.com/eko/gocache/lib/v4/store"
	ristrettostore "github.com/eko/gocache/store/ristretto/v4"

	"github.com/chanombude/twitter-go-client/internal/common"
	"github.com/chanombude/twitter-go-client/internal/log"
)

const (
	resolveTTL        = time.Minute
	resolveSearchSize = 10
)

type searchAPI interface {
	SearchUsers(ctx context.Context, query string, page, size int) (common.Page[common.User], error)
}

// Resolver turns a username into a user record. The server has no
// by-username endpoint, so the resolver searches and picks the exact
// case-insensitive match, caching both hits and misses for a short TTL.
type Resolver struct {
	api   searchAPI
	cache *cache.Cache[*common.User]

	log log.Logger
}

func New(api searchAPI, logger log.Logger) (*Resolver, error) {
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1 << 12,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	st := ristrettostore.NewRistretto(client, libstore.WithExpiration(resolveTTL))

	return &Resolver{
		api:   api,
		cache: cache.New[*common.User](st),
		log:   logger,
	}, nil
}

// Resolve looks a username up. A nil cached value is a remembered miss and
// resolves to ErrUserNotFound without touching the server again.
func (r *Resolver) Resolve(ctx context.Context, username string) (common.User, error) {
	uname := strings.ToLower(strings.TrimSpace(username))
	if uname == "" {
		return common.User{}, common.ErrUserNotFound
	}

	if cached, err := r.cache.Get(ctx, uname); err == nil {
		if cached == nil {
			return common.User{}, common.ErrUserNotFound
		}

		return cached.Clone(), nil
	}

	page, err := r.api.SearchUsers(ctx, uname, 0, resolveSearchSize)
	if err != nil {
		return common.User{}, err
	}

	for i := range page.Content {
		if strings.EqualFold(page.Content[i].Username, uname) {
			found := page.Content[i].Clone()
			r.put(ctx, uname, &found)

			return found.Clone(), nil
		}
	}

	r.put(ctx, uname, nil)

	return common.User{}, common.ErrUserNotFound
}

func (r *Resolver) put(ctx context.Context, uname string, u *common.User) {
	if err := r.cache.Set(ctx, uname, u, libstore.WithCost(1)); err != nil {
		r.log.WithError(err).WithField("username", uname).Debug("resolver cache set failed")
	}
}
