package preprocess_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/braidhq/braid/pkg/preprocess"
)

var _ = Describe("Classify", func() {
	It("recognises direct keyword queries", func() {
		Expect(preprocess.Classify("search for login failures")).To(Equal(preprocess.QueryDirectKeyword))
		Expect(preprocess.Classify("add event for deploy")).To(Equal(preprocess.QueryDirectKeyword))
	})

	It("recognises conceptual queries", func() {
		Expect(preprocess.Classify("why did the deploy fail")).To(Equal(preprocess.QueryConceptual))
		Expect(preprocess.Classify("explain the outage")).To(Equal(preprocess.QueryConceptual))
	})

	It("recognises causal queries", func() {
		Expect(preprocess.Classify("what led to the rollback")).To(Equal(preprocess.QueryCausal))
	})

	It("falls through to unknown", func() {
		Expect(preprocess.Classify("kumquats")).To(Equal(preprocess.QueryUnknown))
	})
})

var _ = Describe("Preprocessor", func() {
	It("passes everything through when disabled", func() {
		p := preprocess.New(preprocess.Config{Enabled: false})
		Expect(p.ProcessQuery("why did the deploy fail")).To(Equal("why did the deploy fail"))
		Expect(p.Snapshot().TotalCalls).To(BeZero())
	})

	It("keeps direct keyword queries unchanged", func() {
		p := preprocess.New(preprocess.Config{Enabled: true})
		Expect(p.ProcessQuery("search for login failures")).To(Equal("search for login failures"))
	})

	It("translates conceptual queries that overlap known vocabulary", func() {
		p := preprocess.New(preprocess.Config{Enabled: true, ConfidenceThreshold: 0.3})
		out := p.ProcessQuery("why was the bug resolved")
		Expect(out).To(Equal("bug resolved"))
	})

	It("keeps the original when confidence is too low", func() {
		p := preprocess.New(preprocess.Config{Enabled: true, ConfidenceThreshold: 0.99})
		Expect(p.ProcessQuery("why did everything break yesterday")).To(Equal("why did everything break yesterday"))
	})

	It("tracks metrics per decision", func() {
		p := preprocess.New(preprocess.Config{Enabled: true})
		p.ProcessQuery("search for things")
		p.ProcessQuery("kumquats")

		snapshot := p.Snapshot()
		Expect(snapshot.TotalCalls).To(Equal(2))
		Expect(snapshot.QueryCalls).To(Equal(2))
		Expect(snapshot.Classifications[preprocess.QueryDirectKeyword]).To(Equal(1))
		Expect(snapshot.Recent).To(HaveLen(2))
	})
})

var _ = Describe("Suggest", func() {
	It("ranks overlapping phrases highest", func() {
		p := preprocess.New(preprocess.Config{Enabled: true})
		suggestions := p.Suggest("the bug was resolved after the patch deployed", 3)

		Expect(suggestions).NotTo(BeEmpty())
		Expect(len(suggestions)).To(BeNumerically("<=", 3))
		for i := 1; i < len(suggestions); i++ {
			Expect(suggestions[i-1].Score).To(BeNumerically(">=", suggestions[i].Score))
		}
	})

	It("returns nothing for text with no overlap", func() {
		p := preprocess.New(preprocess.Config{Enabled: true})
		Expect(p.Suggest("zzzz qqqq", 5)).To(BeEmpty())
	})
})
