package cache

import (
	"sync/atomic"

	"github.com/chazu/hlang/compiler"
	lru "github.com/hashicorp/golang-lru"
	"github.com/tliron/commonlog"
)

// Programs memoises parsed programs in memory and token streams on disk.
// It is safe for concurrent use.
type Programs struct {
	recent   *lru.Cache // Key -> []compiler.Stmt; nil when disabled
	disk     *DiskStore // may be nil
	tabWidth int
	log      commonlog.Logger

	hits, misses atomic.Int64
}

// Option configures Programs.
type Option func(*Programs)

// WithDiskStore adds an on-disk token store behind the in-memory cache.
func WithDiskStore(d *DiskStore) Option {
	return func(p *Programs) { p.disk = d }
}

// WithTabWidth sets the tab width sources are tokenized with.
func WithTabWidth(n int) Option {
	return func(p *Programs) {
		if n > 0 {
			p.tabWidth = n
		}
	}
}

// NewPrograms creates a cache holding up to entries parsed programs.
// Zero entries disables the in-memory layer.
func NewPrograms(entries int, opts ...Option) (*Programs, error) {
	p := &Programs{
		tabWidth: compiler.DefaultTabWidth,
		log:      commonlog.GetLogger("hlang.cache"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if entries > 0 {
		c, err := lru.New(entries)
		if err != nil {
			return nil, err
		}
		p.recent = c
	}
	return p, nil
}

// TabWidth returns the tab width sources are tokenized with.
func (p *Programs) TabWidth() int {
	return p.tabWidth
}

// Parse returns the program for src. Syntax errors are returned as
// *compiler.SyntaxError and never cached.
func (p *Programs) Parse(src string) ([]compiler.Stmt, error) {
	key := NewKey(src, p.tabWidth)
	if p.recent != nil {
		if v, ok := p.recent.Get(key); ok {
			p.hits.Add(1)
			return v.([]compiler.Stmt), nil
		}
	}
	p.misses.Add(1)

	tokens, err := p.Tokens(src)
	if err != nil {
		return nil, err
	}
	stmts, err := compiler.NewParser(tokens).Parse()
	if err != nil {
		return nil, err
	}
	if p.recent != nil {
		p.recent.Add(key, stmts)
	}
	return stmts, nil
}

// Tokens returns the token stream for src, reading and filling the disk
// store when one is configured. Disk failures degrade to tokenizing.
func (p *Programs) Tokens(src string) ([]compiler.Token, error) {
	key := NewKey(src, p.tabWidth)
	if p.disk != nil {
		tokens, ok, err := p.disk.Load(key)
		if err != nil {
			p.log.Warningf("ignoring cache entry %s: %s", key, err)
		}
		if ok {
			p.log.Debugf("disk hit %s", key)
			return tokens, nil
		}
	}

	tokens, err := compiler.Tokenize(src, compiler.WithTabWidth(p.tabWidth))
	if err != nil {
		return nil, err
	}
	if p.disk != nil {
		if err := p.disk.Save(key, tokens); err != nil {
			p.log.Warningf("cannot save cache entry %s: %s", key, err)
		}
	}
	return tokens, nil
}

// Stats reports in-memory hits and misses.
func (p *Programs) Stats() (hits, misses int64) {
	return p.hits.Load(), p.misses.Load()
}

// Purge drops every in-memory entry.
func (p *Programs) Purge() {
	if p.recent != nil {
		p.recent.Purge()
	}
}
