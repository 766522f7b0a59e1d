// Package assets picks the display image shown to members.
package assets

import (
	"context"
	"errors"
	"math/rand/v2"
)

var ErrNoAsset = errors.New("asset not found")

// Catalog lists asset keys and resolves a key to a URL the browser can load.
type Catalog interface {
	Keys(ctx context.Context) ([]string, error)
	URL(ctx context.Context, key string) (string, error)
}

// StaticCatalog serves a fixed list of public paths.
type StaticCatalog struct {
	paths []string
}

var DefaultPaths = []string{"/public/cat1.gif", "/public/cat2.gif", "/public/cat3.gif"}

func NewStaticCatalog(paths ...string) *StaticCatalog {
	if len(paths) == 0 {
		paths = DefaultPaths
	}
	return &StaticCatalog{paths: append([]string(nil), paths...)}
}

func (c *StaticCatalog) Keys(ctx context.Context) ([]string, error) {
	return append([]string(nil), c.paths...), nil
}

func (c *StaticCatalog) URL(ctx context.Context, key string) (string, error) {
	return key, nil
}

type Picker struct {
	catalog Catalog
	intn    func(n int) int
}

func NewPicker(catalog Catalog) *Picker {
	return &Picker{catalog: catalog, intn: rand.IntN}
}

// Random resolves a uniformly chosen asset.
func (p *Picker) Random(ctx context.Context) (string, error) {
	keys, err := p.catalog.Keys(ctx)
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", ErrNoAsset
	}
	return p.catalog.URL(ctx, keys[p.intn(len(keys))])
}

// At resolves the n-th asset, counting from 1.
func (p *Picker) At(ctx context.Context, n int) (string, error) {
	keys, err := p.catalog.Keys(ctx)
	if err != nil {
		return "", err
	}
	if n < 1 || n > len(keys) {
		return "", ErrNoAsset
	}
	return p.catalog.URL(ctx, keys[n-1])
}
