// Package coursectx provides hierarchical two-tier retrieval over a course
// catalog, built for assembling language model context under a token budget.
//
// Tier 1 holds short course summaries in a vector index and answers broad
// semantic queries with optional department, difficulty and format filters.
// Tier 2 holds full course details (syllabus, assignments, prerequisites) in
// a key-value store and is read only for the top-ranked tier-1 hits. The
// assembler turns both result sets into one markdown block, dropping expanded
// details from the tail until the block fits the budget.
//
// # Quick Start
//
//	cfg, err := config.LoadWithEnv("config.yaml")
//	if err != nil {
//		return err
//	}
//	sys, err := coursectx.New(ctx, cfg, coursectx.NewLogger(cfg.Log.Level))
//	if err != nil {
//		return err
//	}
//	defer sys.Close()
//
//	if _, err := catalog.Ingest(ctx, sys.Manager, catalog.Generate(100, 1), catalog.IngestOptions{}); err != nil {
//		return err
//	}
//
//	res, err := sys.Search(ctx, "intro machine learning", store.FilterFor("Computer Science", "", ""))
//	if err != nil {
//		return err
//	}
//	fmt.Println(res.Context)
//
// # Packages
//
//   - course: summary and details models, derivation and validation
//   - store: storage contracts with memory, redis, postgres and sqlite backends
//   - embedding: OpenAI, langchaingo and mock embedders
//   - hierarchy: the two-tier manager
//   - assembler: context rendering and token budgeting
//   - catalog: catalog files, synthetic catalogs and ingestion
//   - config: YAML and environment configuration
//   - log: logger interface with standard and golog backends
package coursectx
