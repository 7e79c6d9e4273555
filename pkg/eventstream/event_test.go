package eventstream_test

import (
	"encoding/json"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ssecodec/pkg/eventstream"
	"github.com/papercomputeco/ssecodec/pkg/sse"
)

var _ = Describe("Event", func() {
	It("wraps a decoded SSE event in a stamped envelope", func() {
		id := "42"
		retry := uint64(3000)
		ev := sse.Event{Type: "update", Data: "a\nb", ID: &id, Retry: &retry}

		env := eventstream.NewDecodedEvent("https://example.com/stream", 7, ev)
		Expect(env.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(env.EventType).To(Equal(eventstream.EventTypeDecoded))
		Expect(uuid.Validate(env.EventID)).To(Succeed())
		Expect(env.EmittedAt.IsZero()).To(BeFalse())
		Expect(env.Source).To(Equal("https://example.com/stream"))
		Expect(env.Sequence).To(Equal(uint64(7)))
		Expect(env.Event.Type).To(Equal("update"))
		Expect(env.Event.Data).To(Equal("a\nb"))
		Expect(env.Event.ID).To(HaveValue(Equal("42")))
		Expect(env.Event.Retry).To(HaveValue(Equal(uint64(3000))))
	})

	It("stamps a distinct event ID on each envelope", func() {
		a := eventstream.NewDecodedEvent("-", 1, sse.Event{Type: "message", Data: "x"})
		b := eventstream.NewDecodedEvent("-", 2, sse.Event{Type: "message", Data: "x"})
		Expect(a.EventID).NotTo(Equal(b.EventID))
	})

	It("marshals DecodedEvent with expected top-level keys", func() {
		env := eventstream.NewDecodedEvent("-", 1, sse.Event{Type: "message", Data: "hi"})

		payload, err := json.Marshal(env)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("source"))
		Expect(got).To(HaveKey("sequence"))
		Expect(got).To(HaveKey("event"))

		inner, ok := got["event"].(map[string]any)
		Expect(ok).To(BeTrue())
		Expect(inner).NotTo(HaveKey("id"))
		Expect(inner).NotTo(HaveKey("retry"))
	})

	Describe("Key", func() {
		It("uses the last event ID when set", func() {
			id := "evt-9"
			env := eventstream.NewDecodedEvent("src", 1, sse.Event{ID: &id})
			Expect(env.Key()).To(Equal("evt-9"))
		})

		It("falls back to the source for missing or empty IDs", func() {
			empty := ""
			Expect(eventstream.NewDecodedEvent("src", 1, sse.Event{}).Key()).To(Equal("src"))
			Expect(eventstream.NewDecodedEvent("src", 1, sse.Event{ID: &empty}).Key()).To(Equal("src"))
		})
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeDecoded).To(Equal("ssecodec.event.decoded"))
	})

	It("provides ErrNilEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilEvent).To(MatchError("nil decoded event"))
	})
})
