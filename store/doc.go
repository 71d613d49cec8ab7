// Package store defines the storage contracts behind the two retrieval tiers.
//
// A SummaryIndex holds tier-1 records (summary plus embedding) and answers
// nearest-neighbor queries with optional exact-match tag filters on
// department, difficulty_level and format. A DetailsStore is a key-value
// store of serialized tier-2 course details keyed by entity id. A CodeIndex
// maps course codes to entity ids so detail lookups never scan the summary
// tier.
//
// Implementations live in subpackages:
//   - memory: in-process maps, for tests and small catalogs
//   - redis: RediSearch vector index, string keys for details and a hash for
//     the code index
//   - postgres: details in a JSONB table through pgx
//   - sqlite: details in a local SQLite file
//
// Summaries and codes live together; details may use any backend:
//
//	client := redis.NewClient(redis.Options{Addr: "localhost:6379"})
//	summaries := redis.NewSummaryIndex(client, redis.SummaryIndexOptions{})
//	codes := redis.NewCodeIndex(client, "")
//	details, err := postgres.NewDetailsStore(ctx, postgres.Options{ConnString: dsn})
//
// Stores report a missing details payload with ErrNotFound. All
// implementations are safe for concurrent use.
package store
