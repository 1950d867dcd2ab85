package embedding_test

import (
	"context"
	"errors"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"loomsales.app/copilot/common/embedding"
)

type mockEmbedder struct {
	embedFn   func(ctx context.Context, text string, kind embedding.Kind) ([]float32, error)
	callCount int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string, kind embedding.Kind) ([]float32, error) {
	m.callCount++
	if m.embedFn != nil {
		return m.embedFn(ctx, text, kind)
	}
	return nil, errors.New("mock not configured")
}

func (m *mockEmbedder) Model() string {
	return "test-embed"
}

var _ = Describe("CachedEmbedder", func() {
	var (
		mr     *miniredis.Miniredis
		rdb    *redis.Client
		inner  *mockEmbedder
		cached *embedding.CachedEmbedder
		ctx    context.Context
	)

	BeforeEach(func() {
		var err error
		mr, err = miniredis.Run()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(mr.Close)

		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		DeferCleanup(rdb.Close)

		ctx = context.Background()
		inner = &mockEmbedder{
			embedFn: func(_ context.Context, text string, _ embedding.Kind) ([]float32, error) {
				return []float32{float32(len(text)), 1}, nil
			},
		}
		cached = embedding.NewCachedEmbedder(inner, rdb, time.Hour)
	})

	It("serves repeated texts from redis", func() {
		first, err := cached.Embed(ctx, "能耗", embedding.KindQuery)
		Expect(err).NotTo(HaveOccurred())
		second, err := cached.Embed(ctx, "能耗", embedding.KindQuery)
		Expect(err).NotTo(HaveOccurred())

		Expect(second).To(Equal(first))
		Expect(inner.callCount).To(Equal(1))
		Expect(mr.Keys()).To(HaveLen(1))
		Expect(mr.TTL(mr.Keys()[0])).To(Equal(time.Hour))
	})

	It("keys entries by kind", func() {
		_, _ = cached.Embed(ctx, "x", embedding.KindQuery)
		_, _ = cached.Embed(ctx, "x", embedding.KindDocument)
		Expect(inner.callCount).To(Equal(2))
		Expect(mr.Keys()).To(HaveLen(2))
	})

	It("does not cache failures", func() {
		inner.embedFn = func(context.Context, string, embedding.Kind) ([]float32, error) {
			return nil, errors.New("provider down")
		}
		_, err := cached.Embed(ctx, "x", embedding.KindQuery)
		Expect(err).To(MatchError("provider down"))
		Expect(mr.Keys()).To(BeEmpty())
	})

	It("falls through to the provider when redis is unavailable", func() {
		mr.Close()
		vec, err := cached.Embed(ctx, "abc", embedding.KindQuery)
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(Equal([]float32{3, 1}))
		Expect(inner.callCount).To(Equal(1))
	})

	It("ignores malformed cache entries", func() {
		_, _ = cached.Embed(ctx, "abc", embedding.KindQuery)
		Expect(mr.Set(mr.Keys()[0], "not-json")).To(Succeed())

		vec, err := cached.Embed(ctx, "abc", embedding.KindQuery)
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(Equal([]float32{3, 1}))
		Expect(inner.callCount).To(Equal(2))
	})
})
