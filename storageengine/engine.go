// Package storageengine wires the lower components — disk manager,
// buffer pool, header catalog — together with the lookup cache into
// one handle the CLI and callers open against a data directory.
package storageengine

import (
	"fmt"
	"os"
	"path/filepath"

	"CoreStore/internal/config"
	"CoreStore/internal/corelog"
	"CoreStore/internal/lookupcache"
	"CoreStore/storageengine/bptree"
	"CoreStore/storageengine/bufferpool"
	"CoreStore/storageengine/disk"
	"CoreStore/storageengine/header"
)

// Engine is an open database: one data file, one buffer pool, and
// whatever B+-tree indexes have been opened against it.
type Engine struct {
	cfg     *config.Config
	disk    *disk.Manager
	pool    *bufferpool.Pool
	catalog *header.Catalog
	cache   *lookupcache.Cache
	log     *corelog.Logger

	trees map[string]*bptree.Tree
}

// Open opens (or creates) the data file dbName under cfg.DataDir and
// brings up the buffer pool, header catalog, and lookup cache above it.
func Open(dbName string, cfg *config.Config, logOut *os.File) (*Engine, error) {
	dbPath := filepath.Join(cfg.DataDir, dbName+".db")

	var log *corelog.Logger
	if logOut != nil {
		log = corelog.New(logOut, "Engine", corelog.Info)
	}

	d, err := disk.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("storageengine: open %s: %w", dbPath, err)
	}

	pool := bufferpool.New(cfg.PoolSize, cfg.BucketSize, cfg.ReplacerK, d, log)
	catalog := header.New(pool)

	cache, err := lookupcache.New(cfg.LookupCacheEntries)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("storageengine: lookup cache: %w", err)
	}

	return &Engine{
		cfg:     cfg,
		disk:    d,
		pool:    pool,
		catalog: catalog,
		cache:   cache,
		log:     log,
		trees:   make(map[string]*bptree.Tree),
	}, nil
}

// Index opens (creating the catalog entry on first write) the named
// B+-tree index, sharing this engine's buffer pool and catalog.
func (e *Engine) Index(name string, leafMaxSize, internalMaxSize int, cmp bptree.Comparator) (*bptree.Tree, error) {
	if t, ok := e.trees[name]; ok {
		return t, nil
	}
	t, err := bptree.Open(e.pool, e.catalog, name, leafMaxSize, internalMaxSize, cmp, e.log)
	if err != nil {
		return nil, err
	}
	e.trees[name] = t
	return t, nil
}

// Get performs a cached point lookup against the named index.
func (e *Engine) Get(indexName string, key []byte, t *bptree.Tree) ([]byte, bool, error) {
	if v, ok := e.cache.Get(indexName, key); ok {
		return v, true, nil
	}
	v, found, err := t.GetValue(key)
	if err != nil {
		return nil, false, err
	}
	if found {
		e.cache.Put(indexName, key, v)
	}
	return v, found, nil
}

// Put inserts (key, value) into t, invalidating the lookup cache entry
// for key so a stale negative or value never lingers.
func (e *Engine) Put(indexName string, key, value []byte, t *bptree.Tree) (bool, error) {
	ok, err := t.Insert(key, value)
	if err != nil {
		return false, err
	}
	if ok {
		e.cache.Invalidate(indexName, key)
	}
	return ok, nil
}

// Stats reports a snapshot of engine configuration for the CLI's
// "stats" command.
type Stats struct {
	PoolSize  int
	DataDir   string
	NumTrees  int
}

// Stats returns a snapshot of the engine's current configuration.
func (e *Engine) Stats() Stats {
	return Stats{
		PoolSize: e.cfg.PoolSize,
		DataDir:  e.cfg.DataDir,
		NumTrees: len(e.trees),
	}
}

// Close flushes all dirty pages and releases the data file.
func (e *Engine) Close() error {
	e.pool.FlushAllPages()
	e.cache.Close()
	return e.disk.Close()
}
