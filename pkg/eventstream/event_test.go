package eventstream_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/braidhq/braid/pkg/event"
	"github.com/braidhq/braid/pkg/eventstream"
)

var _ = Describe("EventPersisted", func() {
	It("marshals with the expected top-level keys", func() {
		now := time.Unix(1735689600, 0).UTC()
		cause := int64(41)
		rel := "one led to the other"

		payload := eventstream.FromEvent(&event.Event{
			ID:           42,
			Timestamp:    now,
			EffectText:   "the deploy finished",
			CauseID:      &cause,
			Relationship: &rel,
		}, "notify-123", now, false)

		data, err := json.Marshal(payload)
		Expect(err).NotTo(HaveOccurred())

		var decoded map[string]any
		Expect(json.Unmarshal(data, &decoded)).To(Succeed())
		Expect(decoded).To(HaveKeyWithValue("schema_version", float64(eventstream.SchemaVersionV1)))
		Expect(decoded).To(HaveKeyWithValue("type", eventstream.TypeEventPersisted))
		Expect(decoded).To(HaveKeyWithValue("event_id", float64(42)))
		Expect(decoded).To(HaveKeyWithValue("cause_id", float64(41)))
		Expect(decoded).To(HaveKeyWithValue("effect_text", "the deploy finished"))
	})

	It("omits optional fields for root events", func() {
		payload := eventstream.FromEvent(&event.Event{
			ID:         1,
			Timestamp:  time.Now().UTC(),
			EffectText: "a root",
		}, "notify-1", time.Now().UTC(), false)

		data, err := json.Marshal(payload)
		Expect(err).NotTo(HaveOccurred())

		var decoded map[string]any
		Expect(json.Unmarshal(data, &decoded)).To(Succeed())
		Expect(decoded).NotTo(HaveKey("cause_id"))
		Expect(decoded).NotTo(HaveKey("causal_relationship"))
	})
})
