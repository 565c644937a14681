package event_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/braidhq/braid/pkg/event"
)

var _ = Describe("Validation", func() {
	It("accepts ordinary text", func() {
		Expect(event.ValidateEffectText("something happened")).To(Succeed())
		Expect(event.ValidateQueryText("what happened?")).To(Succeed())
	})

	It("rejects empty and whitespace text", func() {
		Expect(event.ValidateEffectText("")).To(MatchError(event.ErrEmptyText))
		Expect(event.ValidateEffectText(" \t\n ")).To(MatchError(event.ErrEmptyText))
		Expect(event.ValidateQueryText("   ")).To(MatchError(event.ErrEmptyText))
	})

	It("enforces the length caps exactly", func() {
		Expect(event.ValidateEffectText(strings.Repeat("x", 10000))).To(Succeed())
		Expect(event.ValidateEffectText(strings.Repeat("x", 10001))).To(HaveOccurred())
		Expect(event.ValidateQueryText(strings.Repeat("q", 1000))).To(Succeed())
		Expect(event.ValidateQueryText(strings.Repeat("q", 1001))).To(HaveOccurred())
	})
})

var _ = Describe("Embedding codec", func() {
	It("round-trips vectors through the blob format", func() {
		original := []float32{0.25, -1.5, 3.14159, 0}

		blob := event.MarshalEmbedding(original)
		Expect(blob).To(HaveLen(len(original) * 4))

		decoded, err := event.UnmarshalEmbedding(blob)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal(original))
	})

	It("rejects blobs with a torn length", func() {
		_, err := event.UnmarshalEmbedding([]byte{1, 2, 3})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Cosine", func() {
	It("scores identical vectors as 1", func() {
		v := []float32{0.3, 0.4, 0.5}
		Expect(event.Cosine(v, v)).To(BeNumerically("~", 1.0, 1e-6))
	})

	It("scores orthogonal vectors as 0", func() {
		Expect(event.Cosine([]float32{1, 0}, []float32{0, 1})).To(BeNumerically("~", 0, 1e-6))
	})

	It("scores opposite vectors as -1", func() {
		Expect(event.Cosine([]float32{1, 0}, []float32{-1, 0})).To(BeNumerically("~", -1, 1e-6))
	})

	It("scores mismatched dimensions as 0", func() {
		Expect(event.Cosine([]float32{1, 0}, []float32{1, 0, 0})).To(BeZero())
	})

	It("scores zero vectors as 0", func() {
		Expect(event.Cosine([]float32{0, 0}, []float32{1, 0})).To(BeZero())
	})
})
