package badgerdb

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

type BadgerDB struct {
	inMemory bool
	path     string

	DB *badger.DB
}

func New(path string, opts ...Option) (*BadgerDB, error) {
	b := &BadgerDB{path: path}

	for _, opt := range opts {
		opt(b)
	}

	bopts := badger.DefaultOptions(b.path).WithLogger(nil)
	if b.inMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("BadgerDB - New - badger.Open: %w", err)
	}
	b.DB = db

	return b, nil
}

func (b *BadgerDB) Close() error {
	if b.DB != nil {
		return b.DB.Close()
	}

	return nil
}
