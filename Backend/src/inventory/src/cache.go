package main

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// bookCache keeps recently looked-up rows by id. A nil cache is valid and
// never hits.
type bookCache struct {
	c *lru.Cache[int64, Book]
}

func newBookCache(size int) (*bookCache, error) {
	if size <= 0 {
		return nil, nil
	}
	c, err := lru.New[int64, Book](size)
	if err != nil {
		return nil, err
	}
	return &bookCache{c: c}, nil
}

func (bc *bookCache) get(id int64) (Book, bool) {
	if bc == nil {
		return Book{}, false
	}
	return bc.c.Get(id)
}

func (bc *bookCache) put(b Book) {
	if bc == nil {
		return
	}
	bc.c.Add(b.ID, b)
}

func (bc *bookCache) forget(id int64) {
	if bc == nil {
		return
	}
	bc.c.Remove(id)
}

func (bc *bookCache) len() int {
	if bc == nil {
		return 0
	}
	return bc.c.Len()
}
