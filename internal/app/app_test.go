package app_test

import (
	"context"
	"errors"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"loomsales.app/copilot/common/embedding"
	"loomsales.app/copilot/core/config"
	"loomsales.app/copilot/internal/app"
)

type nopDBTX struct{}

func (nopDBTX) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("unused")
}

func (nopDBTX) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("unused")
}

func (nopDBTX) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

var _ = Describe("BuildCopilot", func() {
	var (
		cfg config.Config
		ctx context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = config.Config{
			LLM: config.LLMConfig{
				APIKey:          "sk-test",
				BaseURL:         "https://dashscope.aliyuncs.com/api/v1",
				Dialect:         config.DialectDashScope,
				ChatModel:       "qwen3.5-plus",
				ReasoningModel:  "qwen-turbo",
				EmbedModel:      "text-embedding-v4",
				ReasoningFormat: "json_object",
			},
			Search: config.SearchConfig{Backend: config.SearchBackendPostgres},
			Redis:  config.RedisConfig{EmbedCacheTTL: time.Hour, EventStream: "copilot_queries"},
		}
	})

	It("assembles a configured pipeline", func() {
		c, err := app.BuildCopilot(ctx, cfg, nopDBTX{}, nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(c.Orchestrator.Configured()).To(BeTrue())
		Expect(c.Embedder).NotTo(BeNil())
		Expect(c.Embedder.Model()).To(Equal("text-embedding-v4"))
		Expect(c.Events).To(BeNil())
	})

	It("leaves the pipeline unconfigured without an API key", func() {
		cfg.LLM.APIKey = ""

		c, err := app.BuildCopilot(ctx, cfg, nopDBTX{}, nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(c.Orchestrator.Configured()).To(BeFalse())
		Expect(c.Embedder).To(BeNil())
	})

	It("leaves the pipeline unconfigured without a database for postgres search", func() {
		c, err := app.BuildCopilot(ctx, cfg, nil, nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(c.Orchestrator.Configured()).To(BeFalse())
		Expect(c.Embedder).NotTo(BeNil())
	})

	It("uses typesense without a database when configured", func() {
		cfg.Search = config.SearchConfig{
			Backend:         config.SearchBackendTypesense,
			TypesenseURL:    "http://localhost:8108",
			TypesenseAPIKey: "xyz",
			Collection:      "knowledge_base",
		}

		c, err := app.BuildCopilot(ctx, cfg, nil, nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(c.Orchestrator.Configured()).To(BeTrue())
	})

	It("caches embeddings and publishes events when redis is available", func() {
		mr := miniredis.RunT(GinkgoT())
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		DeferCleanup(rdb.Close)

		c, err := app.BuildCopilot(ctx, cfg, nopDBTX{}, rdb)

		Expect(err).NotTo(HaveOccurred())
		Expect(c.Embedder).To(BeAssignableToTypeOf(&embedding.CachedEmbedder{}))
		Expect(c.Events).NotTo(BeNil())
	})

	DescribeTable("rejects invalid settings",
		func(mutate func(*config.Config)) {
			mutate(&cfg)
			_, err := app.BuildCopilot(ctx, cfg, nopDBTX{}, nil)
			Expect(err).To(HaveOccurred())
		},
		Entry("unknown dialect", func(c *config.Config) { c.LLM.Dialect = "bedrock" }),
		Entry("unknown search backend", func(c *config.Config) { c.Search.Backend = "elastic" }),
	)
})

var _ = Describe("ConnectRedis", func() {
	It("returns nil when redis is not configured", func() {
		client, err := app.ConnectRedis(context.Background(), config.RedisConfig{})
		Expect(err).NotTo(HaveOccurred())
		Expect(client).To(BeNil())
	})

	It("connects and pings", func() {
		mr := miniredis.RunT(GinkgoT())
		client, err := app.ConnectRedis(context.Background(), config.RedisConfig{URL: "redis://" + mr.Addr()})
		Expect(err).NotTo(HaveOccurred())
		Expect(client).NotTo(BeNil())
		Expect(client.Close()).To(Succeed())
	})

	It("rejects malformed urls", func() {
		_, err := app.ConnectRedis(context.Background(), config.RedisConfig{URL: "http://nope"})
		Expect(err).To(HaveOccurred())
	})
})
