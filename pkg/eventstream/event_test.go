package eventstream_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/eventstream"
)

var _ = Describe("Event", func() {
	It("marshals RequestPersistedEvent with expected top-level keys", func() {
		now := time.Unix(1735689600, 0).UTC()
		event := eventstream.RequestPersistedEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeRequestPersisted,
			EventID:       "evt_123",
			EmittedAt:     now,
			Session: eventstream.EventSession{
				ID:        "20250115_142233",
				StartedAt: now.Add(-time.Minute),
			},
			Request: eventstream.RequestMeta{
				Number:       7,
				Endpoint:     "/aiserver.v1/StreamUnifiedChat",
				Timestamp:    now,
				RawSizeBytes: 4096,
			},
			Content: eventstream.ContentMeta{
				TextFingerprint: "abc",
				JSONFingerprint: "def",
				JSONObjects:     2,
				TextCount:       5,
			},
		}

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("session"))
		Expect(got).To(HaveKey("request"))
		Expect(got).To(HaveKey("content"))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeRequestPersisted).To(Equal("scraper.request.persisted"))
	})

	It("provides ErrNilEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilEvent).NotTo(BeNil())
		Expect(eventstream.ErrNilEvent).To(MatchError("nil event"))
	})
})
