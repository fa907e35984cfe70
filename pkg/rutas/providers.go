package rutas

import (
	"context"
	"database/sql"
	"time"
)

// Document is an HTML page under construction.
type Document interface {
	SetTitle(title string)
	AddBody(html string)
	// Render finishes the page
	Render() Response
}

// DB is the database handle handed to handlers. *sql.DB satisfies it.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Cache is the key/value cache handed to handlers.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// DocumentProvider is implemented by applications whose handlers take a
// Document.
type DocumentProvider interface {
	Document(ctx context.Context, req Request) (Document, error)
}

// DatabaseProvider is implemented by applications whose handlers take a DB.
type DatabaseProvider interface {
	Database(ctx context.Context) (DB, error)
}

// CacheProvider is implemented by applications whose handlers take a Cache.
type CacheProvider interface {
	Cache(ctx context.Context) (Cache, error)
}

// AcquireDocument asks app for a fresh document.
func AcquireDocument(ctx context.Context, handler string, app any, req Request) (Document, error) {
	p, ok := app.(DocumentProvider)
	if !ok {
		return nil, &ProviderError{Handler: handler, Capability: "document", Err: ErrNoProvider}
	}
	doc, err := p.Document(ctx, req)
	if err != nil {
		return nil, &ProviderError{Handler: handler, Capability: "document", Err: err}
	}
	return doc, nil
}

// AcquireDatabase asks app for a database handle.
func AcquireDatabase(ctx context.Context, handler string, app any) (DB, error) {
	p, ok := app.(DatabaseProvider)
	if !ok {
		return nil, &ProviderError{Handler: handler, Capability: "database", Err: ErrNoProvider}
	}
	db, err := p.Database(ctx)
	if err != nil {
		return nil, &ProviderError{Handler: handler, Capability: "database", Err: err}
	}
	return db, nil
}

// AcquireCache asks app for a cache handle.
func AcquireCache(ctx context.Context, handler string, app any) (Cache, error) {
	p, ok := app.(CacheProvider)
	if !ok {
		return nil, &ProviderError{Handler: handler, Capability: "cache", Err: ErrNoProvider}
	}
	c, err := p.Cache(ctx)
	if err != nil {
		return nil, &ProviderError{Handler: handler, Capability: "cache", Err: err}
	}
	return c, nil
}
