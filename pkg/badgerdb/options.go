package badgerdb

type Option func(*BadgerDB)

// InMemory keeps the whole store in memory; the path is ignored.
func InMemory(inMemory bool) Option {
	return func(b *BadgerDB) {
		b.inMemory = inMemory
	}
}
