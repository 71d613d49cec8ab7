// Package redis provides Redis-backed implementations of the store contracts.
//
// The summary tier uses RediSearch (Redis Stack) so summaries can be searched
// with KNN vector queries combined with exact TAG filters. The details tier
// and the course code index only need plain Redis commands.
//
// # Key Layout
//
// With the default prefix "coursectx:" the following keys are used:
//
//	coursectx:summary:<id>   HASH   summary fields, JSON payload, FLOAT32 vector
//	coursectx:details:<id>   STRING JSON encoded course.CourseDetails
//	coursectx:code_index     HASH   course_code -> id
//
// # Basic Usage
//
//	client := redis.NewClient(redis.Options{Addr: "localhost:6379"})
//	summaries := redis.NewSummaryIndex(client, redis.SummaryIndexOptions{})
//	details := redis.NewDetailsStore(client, "")
//	codes := redis.NewCodeIndex(client, "")
//
//	if err := summaries.EnsureIndex(ctx, 1536); err != nil {
//		return err
//	}
//
// The client is created with RESP2 so FT.SEARCH replies decode through the
// stable go-redis search API.
package redis
