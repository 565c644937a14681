package memory_test

import (
	"context"
	"math"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/braidhq/braid/pkg/memory"
	"github.com/braidhq/braid/pkg/storage/inmemory"
	testutils "github.com/braidhq/braid/pkg/utils/test"
)

// unitVec returns a unit vector rotated deg degrees in the xy-plane, so the
// cosine similarity between two vectors is the cosine of their angle.
func unitVec(deg float64) []float32 {
	rad := deg * math.Pi / 180
	return []float32{float32(math.Cos(rad)), float32(math.Sin(rad)), 0}
}

var _ = Describe("Core", func() {
	var (
		store    *inmemory.Store
		embedder *testutils.MockEmbedder
		judger   *testutils.MockJudge
		core     *memory.Core
		ctx      context.Context
	)

	newCore := func() *memory.Core {
		return memory.NewCore(memory.Config{
			Store:    store,
			Embedder: embedder,
			Judge:    judger,
		})
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = inmemory.New()
		embedder = testutils.NewMockEmbedder()
		judger = testutils.NewMockJudge()
		core = newCore()
	})

	Describe("AddEvent", func() {
		It("assigns dense increasing ids starting at 1", func() {
			id1, err := core.AddEvent(ctx, "first thing happened")
			Expect(err).NotTo(HaveOccurred())
			Expect(id1).To(Equal(int64(1)))

			id2, err := core.AddEvent(ctx, "second thing happened")
			Expect(err).NotTo(HaveOccurred())
			Expect(id2).To(Equal(int64(2)))
		})

		It("rejects empty text", func() {
			_, err := core.AddEvent(ctx, "")
			Expect(err).To(HaveOccurred())
			Expect(memory.KindOf(err)).To(Equal(memory.KindValidation))
		})

		It("rejects whitespace-only text", func() {
			_, err := core.AddEvent(ctx, "   \t\n  ")
			Expect(memory.KindOf(err)).To(Equal(memory.KindValidation))
		})

		It("rejects text over the length cap", func() {
			_, err := core.AddEvent(ctx, strings.Repeat("x", 10001))
			Expect(memory.KindOf(err)).To(Equal(memory.KindValidation))
		})

		It("accepts text exactly at the length cap", func() {
			_, err := core.AddEvent(ctx, strings.Repeat("x", 10000))
			Expect(err).NotTo(HaveOccurred())
		})

		It("surfaces embedder outages as ServiceUnavailable", func() {
			embedder.FailAll = true
			_, err := core.AddEvent(ctx, "anything")
			Expect(err).To(HaveOccurred())
			Expect(memory.KindOf(err)).To(Equal(memory.KindUnavailable))
		})

		It("inserts a root when the store is empty", func() {
			id, err := core.AddEvent(ctx, "a lone event")
			Expect(err).NotTo(HaveOccurred())

			ev, err := store.GetByID(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.CauseID).To(BeNil())
			Expect(ev.Relationship).To(BeNil())
		})

		It("links to the candidate the judge affirms", func() {
			embedder.Embeddings["the server crashed"] = unitVec(0)
			embedder.Embeddings["the pager went off"] = unitVec(25)
			judger.Affirm("the server crashed", "the pager went off", "the crash triggered the page")

			_, err := core.AddEvent(ctx, "the server crashed")
			Expect(err).NotTo(HaveOccurred())
			id2, err := core.AddEvent(ctx, "the pager went off")
			Expect(err).NotTo(HaveOccurred())

			ev, err := store.GetByID(ctx, id2)
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.CauseID).NotTo(BeNil())
			Expect(*ev.CauseID).To(Equal(int64(1)))
			Expect(*ev.Relationship).To(Equal("the crash triggered the page"))
		})

		It("leaves the event a root when the judge declines and similarity is moderate", func() {
			// 45 degrees apart: cosine ~0.707, above candidate threshold but
			// below the soft-link bar.
			embedder.Embeddings["alpha"] = unitVec(0)
			embedder.Embeddings["beta"] = unitVec(45)

			_, err := core.AddEvent(ctx, "alpha")
			Expect(err).NotTo(HaveOccurred())
			id2, err := core.AddEvent(ctx, "beta")
			Expect(err).NotTo(HaveOccurred())

			ev, _ := store.GetByID(ctx, id2)
			Expect(ev.CauseID).To(BeNil())
		})

		It("soft-links near-identical events the judge declined", func() {
			embedder.Embeddings["Fixed bug #1234: NPE in user authentication"] = unitVec(0)
			embedder.Embeddings["Added regression tests for authentication flow"] = unitVec(10)
			embedder.Embeddings["Deployed hotfix v1.2.3 to production"] = unitVec(20)

			for _, text := range []string{
				"Fixed bug #1234: NPE in user authentication",
				"Added regression tests for authentication flow",
				"Deployed hotfix v1.2.3 to production",
			} {
				_, err := core.AddEvent(ctx, text)
				Expect(err).NotTo(HaveOccurred())
			}

			for id := int64(2); id <= 3; id++ {
				ev, err := store.GetByID(ctx, id)
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.CauseID).NotTo(BeNil())
				Expect(*ev.CauseID).To(Equal(id - 1))
				Expect(*ev.Relationship).To(Equal(memory.SoftLinkRelationship))
			}
		})

		It("absorbs judge outages and still inserts", func() {
			judger.FailAll = true
			embedder.Embeddings["one"] = unitVec(0)
			embedder.Embeddings["two"] = unitVec(45)

			_, err := core.AddEvent(ctx, "one")
			Expect(err).NotTo(HaveOccurred())
			id2, err := core.AddEvent(ctx, "two")
			Expect(err).NotTo(HaveOccurred())

			ev, _ := store.GetByID(ctx, id2)
			Expect(ev.CauseID).To(BeNil())
		})

		It("ignores candidates outside the time-decay window", func() {
			old := time.Now().Add(-48 * time.Hour)
			_, err := store.InsertAt(ctx, "ancient but similar", unitVec(0), nil, nil, old)
			Expect(err).NotTo(HaveOccurred())

			embedder.Embeddings["fresh event"] = unitVec(0)
			judger.AffirmAll = true

			id, err := core.AddEvent(ctx, "fresh event")
			Expect(err).NotTo(HaveOccurred())

			ev, _ := store.GetByID(ctx, id)
			Expect(ev.CauseID).To(BeNil())
		})

		It("never considers an identically-worded event as its own cause", func() {
			judger.AffirmAll = true

			_, err := core.AddEvent(ctx, "heartbeat tick")
			Expect(err).NotTo(HaveOccurred())
			id2, err := core.AddEvent(ctx, "heartbeat tick")
			Expect(err).NotTo(HaveOccurred())

			ev, _ := store.GetByID(ctx, id2)
			Expect(ev.CauseID).To(BeNil())
		})

		It("assigns deterministic ids for a fixed embedder and judge", func() {
			texts := []string{"a happened", "b happened", "c happened"}

			var first []int64
			for _, t := range texts {
				id, err := core.AddEvent(ctx, t)
				Expect(err).NotTo(HaveOccurred())
				first = append(first, id)
			}

			store = inmemory.New()
			core = newCore()

			var second []int64
			for _, t := range texts {
				id, err := core.AddEvent(ctx, t)
				Expect(err).NotTo(HaveOccurred())
				second = append(second, id)
			}

			Expect(second).To(Equal(first))
		})
	})

	Describe("Query", func() {
		It("returns the sentinel on an empty store", func() {
			narrative, err := core.Query(ctx, "anything at all")
			Expect(err).NotTo(HaveOccurred())
			Expect(narrative).To(Equal(memory.NoContextFound))
		})

		It("rejects empty queries", func() {
			_, err := core.Query(ctx, "  ")
			Expect(memory.KindOf(err)).To(Equal(memory.KindValidation))
		})

		It("rejects queries over the length cap", func() {
			_, err := core.Query(ctx, strings.Repeat("q", 1001))
			Expect(memory.KindOf(err)).To(Equal(memory.KindValidation))
		})

		It("returns the sentinel when nothing clears the similarity bar", func() {
			embedder.Embeddings["stored event"] = unitVec(0)
			embedder.Embeddings["unrelated query"] = unitVec(90)

			_, err := core.AddEvent(ctx, "stored event")
			Expect(err).NotTo(HaveOccurred())

			narrative, err := core.Query(ctx, "unrelated query")
			Expect(err).NotTo(HaveOccurred())
			Expect(narrative).To(Equal(memory.NoContextFound))
		})

		It("narrates a single matching event", func() {
			_, err := core.AddEvent(ctx, "User opened the application")
			Expect(err).NotTo(HaveOccurred())

			narrative, err := core.Query(ctx, "application")
			Expect(err).NotTo(HaveOccurred())
			Expect(narrative).To(Equal("Initially, User opened the application."))
		})

		It("reconstructs a full saga in order", func() {
			saga := []string{
				"A bug report was filed for 'User login fails with 500 error'",
				"The production server logs were inspected, revealing a NullPointerException",
				"The UserAuthentication service code was reviewed, identifying a missing null check",
				"A patch was written to add the necessary null check",
				"The patch was deployed to production and the bug was marked resolved",
			}

			// Rotate each event 25 degrees from the last: adjacent pairs sit
			// at ~0.91 similarity, two-apart at ~0.64, three-apart below the
			// candidate threshold.
			for i, text := range saga {
				embedder.Embeddings[text] = unitVec(float64(i) * 25)
			}
			for i := 1; i < len(saga); i++ {
				judger.Affirm(saga[i-1], saga[i], "step "+string(rune('a'+i)))
			}
			embedder.Embeddings["login bug resolution"] = unitVec(100)

			for _, text := range saga {
				_, err := core.AddEvent(ctx, text)
				Expect(err).NotTo(HaveOccurred())
			}

			narrative, err := core.Query(ctx, "login bug resolution")
			Expect(err).NotTo(HaveOccurred())

			Expect(narrative).To(HavePrefix("Initially, A bug report was filed"))
			Expect(narrative).To(ContainSubstring("This led to"))
			Expect(narrative).To(ContainSubstring("which in turn caused"))

			// Every event appears, in chronological order.
			pos := -1
			for _, text := range saga {
				idx := strings.Index(narrative, text)
				Expect(idx).To(BeNumerically(">", pos), "event out of order: %s", text)
				pos = idx
			}
		})

		It("matches get_context exactly", func() {
			_, err := core.AddEvent(ctx, "User opened the application")
			Expect(err).NotTo(HaveOccurred())

			fromQuery, err := core.Query(ctx, "application")
			Expect(err).NotTo(HaveOccurred())
			fromContext, err := core.GetContext(ctx, "application")
			Expect(err).NotTo(HaveOccurred())

			Expect(fromContext).To(Equal(fromQuery))
		})

		It("serves repeated queries from the embedding cache", func() {
			_, err := core.AddEvent(ctx, "cached event")
			Expect(err).NotTo(HaveOccurred())

			_, err = core.Query(ctx, "cached event lookup")
			Expect(err).NotTo(HaveOccurred())
			callsAfterFirst := embedder.Calls

			_, err = core.Query(ctx, "cached event lookup")
			Expect(err).NotTo(HaveOccurred())

			Expect(embedder.Calls).To(Equal(callsAfterFirst))
		})
	})

	Describe("AddEventsBatch", func() {
		It("ingests every event during a judge outage", func() {
			judger.FailAll = true

			texts := make([]string, 10)
			for i := range texts {
				texts[i] = "workflow step " + string(rune('a'+i))
			}

			result := core.AddEventsBatch(ctx, texts)
			Expect(result.Total).To(Equal(10))
			Expect(result.Successful).To(Equal(10))
			Expect(result.Failed).To(BeZero())

			stats, err := core.Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalEvents).To(Equal(int64(10)))
		})

		It("collects per-item failures without aborting", func() {
			result := core.AddEventsBatch(ctx, []string{"good one", "   ", "another good one"})
			Expect(result.Total).To(Equal(3))
			Expect(result.Successful).To(Equal(2))
			Expect(result.Failed).To(Equal(1))
			Expect(result.Errors).To(HaveLen(1))
			Expect(result.Errors[0].Index).To(Equal(1))
			Expect(result.Errors[0].Kind).To(Equal(memory.KindValidation))
		})

		It("handles an empty batch", func() {
			result := core.AddEventsBatch(ctx, nil)
			Expect(result.Total).To(BeZero())
			Expect(result.Successful).To(BeZero())
		})
	})

	Describe("Stats", func() {
		It("counts linked and orphan events", func() {
			embedder.Embeddings["a"] = unitVec(0)
			embedder.Embeddings["b"] = unitVec(10)
			judger.Affirm("a", "b", "a led to b")

			_, err := core.AddEvent(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			_, err = core.AddEvent(ctx, "b")
			Expect(err).NotTo(HaveOccurred())

			stats, err := core.Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalEvents).To(Equal(int64(2)))
			Expect(stats.LinkedEvents).To(Equal(int64(1)))
			Expect(stats.OrphanEvents()).To(Equal(int64(1)))
			Expect(stats.ChainCoverage()).To(BeNumerically("~", 0.5, 0.001))
		})
	})

	Describe("Close", func() {
		It("is idempotent", func() {
			Expect(core.Close()).To(Succeed())
			Expect(core.Close()).To(Succeed())
		})
	})
})
