package coursectx

import (
	"context"
	"errors"
	"fmt"

	"github.com/kataras/golog"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	lcopenai "github.com/tmc/langchaingo/llms/openai"

	"github.com/smallnest/coursectx/assembler"
	"github.com/smallnest/coursectx/config"
	"github.com/smallnest/coursectx/course"
	"github.com/smallnest/coursectx/embedding"
	"github.com/smallnest/coursectx/hierarchy"
	"github.com/smallnest/coursectx/log"
	"github.com/smallnest/coursectx/store"
	"github.com/smallnest/coursectx/store/memory"
	"github.com/smallnest/coursectx/store/postgres"
	"github.com/smallnest/coursectx/store/redis"
	"github.com/smallnest/coursectx/store/sqlite"
)

// System is a fully wired retrieval stack.
type System struct {
	Config    *config.Config
	Manager   *hierarchy.Manager
	Assembler *assembler.Assembler
	Logger    log.Logger

	closers []func() error
}

// Result is the outcome of System.Search.
type Result struct {
	Summaries []course.CourseSummary
	Details   []course.CourseDetails
	Context   string
	Tokens    int
}

// Option configures New.
type Option func(*options)

type options struct {
	registerer prometheus.Registerer
	embedder   embedding.Embedder
}

// WithRegisterer registers the manager's metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithEmbedder overrides the embedder selected by the configuration.
func WithEmbedder(e embedding.Embedder) Option {
	return func(o *options) {
		o.embedder = e
	}
}

// NewLogger returns a golog-backed logger at the given level.
func NewLogger(level string) log.Logger {
	l := log.NewGologLogger(golog.New())
	l.SetLevel(log.ParseLevel(level))
	return l
}

// New builds the stores, embedder, manager and assembler described by cfg
// and prepares the summary index.
func New(ctx context.Context, cfg *config.Config, logger log.Logger, opts ...Option) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	logger = log.OrDefault(logger)

	sys := &System{Config: cfg, Logger: logger}

	embedder := o.embedder
	if embedder == nil {
		var err error
		if embedder, err = newEmbedder(cfg.Embedding); err != nil {
			return nil, err
		}
	}

	summaries, details, codes, err := sys.newStores(ctx, cfg.Storage)
	if err != nil {
		_ = sys.Close()
		return nil, err
	}

	sys.Manager = hierarchy.NewManager(embedder, summaries, details, codes,
		hierarchy.WithLogger(logger),
		hierarchy.WithMetrics(hierarchy.NewMetrics(o.registerer)),
	)
	if err := sys.Manager.Init(ctx); err != nil {
		_ = sys.Close()
		return nil, err
	}

	estimator, err := newEstimator(cfg.Retrieval)
	if err != nil {
		_ = sys.Close()
		return nil, err
	}
	sys.Assembler = assembler.New(assembler.WithEstimator(estimator))

	logger.Info("coursectx ready: summaries=%s details=%s embedder=%s dim=%d",
		cfg.Storage.Summaries, cfg.Storage.Details, cfg.Embedding.Type, embedder.Dimension())
	return sys, nil
}

// Search runs a hierarchical search with the configured limits and assembles
// the result within the configured token budget.
func (s *System) Search(ctx context.Context, query string, filter store.Filter) (*Result, error) {
	r := s.Config.Retrieval
	summaries, details, err := s.Manager.HierarchicalSearch(ctx, query, r.SummaryLimit, r.DetailLimit, filter)
	if err != nil {
		return nil, err
	}
	text, tokens := s.Assembler.AssembleWithBudget(summaries, details, query, r.MaxTokens)
	return &Result{
		Summaries: summaries,
		Details:   details,
		Context:   text,
		Tokens:    tokens,
	}, nil
}

// Close releases every connection opened by New.
func (s *System) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

func (s *System) newStores(ctx context.Context, cfg config.StorageConfig) (store.SummaryIndex, store.DetailsStore, store.CodeIndex, error) {
	var client *goredis.Client
	redisClient := func() *goredis.Client {
		if client == nil {
			client = redis.NewClient(redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			s.closers = append(s.closers, client.Close)
		}
		return client
	}

	var (
		summaries store.SummaryIndex
		codes     store.CodeIndex
		details   store.DetailsStore
	)

	switch cfg.Summaries {
	case config.BackendRedis:
		summaries = redis.NewSummaryIndex(redisClient(), redis.SummaryIndexOptions{
			IndexName: cfg.Redis.IndexName,
			Prefix:    cfg.Redis.Prefix,
		})
		codes = redis.NewCodeIndex(redisClient(), cfg.Redis.Prefix)
	default:
		summaries = memory.NewSummaryIndex()
		codes = memory.NewCodeIndex()
	}

	switch cfg.Details {
	case config.BackendRedis:
		details = redis.NewDetailsStore(redisClient(), cfg.Redis.Prefix)
	case config.BackendPostgres:
		pg, err := postgres.NewDetailsStore(ctx, postgres.Options{
			ConnString: cfg.Postgres.ConnString,
			TableName:  cfg.Postgres.Table,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		s.closers = append(s.closers, func() error { pg.Close(); return nil })
		if err := pg.InitSchema(ctx); err != nil {
			return nil, nil, nil, err
		}
		details = pg
	case config.BackendSQLite:
		lite, err := sqlite.NewDetailsStore(sqlite.Options{
			Path:      cfg.SQLite.Path,
			TableName: cfg.SQLite.Table,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		s.closers = append(s.closers, lite.Close)
		details = lite
	default:
		details = memory.NewDetailsStore()
	}

	if client != nil {
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
	}
	return summaries, details, codes, nil
}

func newEmbedder(cfg config.EmbeddingConfig) (embedding.Embedder, error) {
	switch cfg.Type {
	case config.EmbedderOpenAI:
		return embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
			APIKey:    cfg.OpenAI.APIKey(),
			BaseURL:   cfg.OpenAI.BaseURL,
			Model:     cfg.OpenAI.Model,
			Dimension: cfg.Dimension,
		})
	case config.EmbedderLangChain:
		client, err := newLangChainClient(cfg.LangChain)
		if err != nil {
			return nil, err
		}
		e, err := embeddings.NewEmbedder(client)
		if err != nil {
			return nil, fmt.Errorf("failed to create langchain embedder: %w", err)
		}
		return embedding.NewLangChainEmbedder(e, cfg.Dimension), nil
	default:
		return embedding.NewMockEmbedder(cfg.Dimension), nil
	}
}

func newLangChainClient(cfg *config.LangChainConfig) (embeddings.EmbedderClient, error) {
	switch cfg.Provider {
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.ServerURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.ServerURL))
		}
		return ollama.New(opts...)
	case "openai":
		opts := []lcopenai.Option{}
		if cfg.Model != "" {
			opts = append(opts, lcopenai.WithEmbeddingModel(cfg.Model))
		}
		if cfg.ServerURL != "" {
			opts = append(opts, lcopenai.WithBaseURL(cfg.ServerURL))
		}
		return lcopenai.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported langchain provider %q", cfg.Provider)
	}
}

func newEstimator(cfg config.RetrievalConfig) (assembler.TokenEstimator, error) {
	if cfg.Estimator == config.EstimatorTiktoken {
		return assembler.NewTiktokenEstimator(cfg.Encoding)
	}
	return assembler.HeuristicEstimator{}, nil
}
