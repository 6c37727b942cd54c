package cache

type hitResult[T any] struct {
	data    T
	valid   bool
	claimed bool
}

// Cache coordinates concurrent computation of expensive values: the first
// caller to miss claims the key and computes, while later callers wait for
// the computed value instead of duplicating the work.
type Cache[T any] interface {
	getOrClaim(key string) hitResult[T]
	set(key string, data T)
	delete(key string)
	wait()
}
