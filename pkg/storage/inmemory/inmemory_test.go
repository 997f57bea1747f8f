package inmemory_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/extract"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/record"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/storage/inmemory"
)

// testRecord builds a request record whose fingerprints derive from the
// given text content.
func testRecord(sessionID string, num int, text string) *record.Record {
	frags := []extract.Fragment{
		{"root": map[string]any{"a": map[string]any{"type": "text", "text": text}}},
	}
	groups := extract.HarvestGroups(frags)

	return record.NewRequest(sessionID, num, time.Now(), "/aiserver.v1/chat", frags, groups, 128)
}

var _ = Describe("InMemory Driver", func() {
	var (
		driver *inmemory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		driver = inmemory.NewDriver()
		ctx = context.Background()
	})

	Describe("InsertRequest", func() {
		It("inserts a new record", func() {
			inserted, err := driver.InsertRequest(ctx, testRecord("s1", 1, "hello"))
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeTrue())
		})

		It("rejects re-insertion of identical content in the same session", func() {
			_, err := driver.InsertRequest(ctx, testRecord("s1", 1, "hello"))
			Expect(err).NotTo(HaveOccurred())

			inserted, err := driver.InsertRequest(ctx, testRecord("s1", 2, "hello"))
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeFalse())
			Expect(driver.Records("s1")).To(HaveLen(1))
		})

		It("does not suppress identical content across sessions", func() {
			insertedA, err := driver.InsertRequest(ctx, testRecord("s1", 1, "hello"))
			Expect(err).NotTo(HaveOccurred())
			insertedB, err := driver.InsertRequest(ctx, testRecord("s2", 1, "hello"))
			Expect(err).NotTo(HaveOccurred())

			Expect(insertedA).To(BeTrue())
			Expect(insertedB).To(BeTrue())
		})

		It("rejects a nil record", func() {
			_, err := driver.InsertRequest(ctx, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Stats", func() {
		It("reports dedup outcomes after a duplicate insert", func() {
			_, err := driver.InsertRequest(ctx, testRecord("s1", 1, "hello"))
			Expect(err).NotTo(HaveOccurred())
			_, err = driver.InsertRequest(ctx, testRecord("s1", 2, "hello"))
			Expect(err).NotTo(HaveOccurred())

			stats, err := driver.Stats(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalRequests).To(Equal(2))
			Expect(stats.UniqueRequests).To(Equal(1))
			Expect(stats.DuplicatesPrevented).To(Equal(1))
		})

		It("scopes statistics to the requested session", func() {
			_, err := driver.InsertRequest(ctx, testRecord("s1", 1, "hello"))
			Expect(err).NotTo(HaveOccurred())
			_, err = driver.InsertRequest(ctx, testRecord("s2", 1, "other"))
			Expect(err).NotTo(HaveOccurred())

			stats, err := driver.Stats(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalRequests).To(Equal(1))
		})

		It("returns zeros for an unknown session", func() {
			stats, err := driver.Stats(ctx, "missing")
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalRequests).To(BeZero())
			Expect(stats.UniqueRequests).To(BeZero())
			Expect(stats.DuplicatesPrevented).To(BeZero())
		})
	})

	Describe("PutMarker", func() {
		It("stores start and end markers", func() {
			now := time.Now()
			Expect(driver.PutMarker(ctx, record.NewStartMarker("s1", now))).To(Succeed())
			Expect(driver.PutMarker(ctx, record.NewEndMarker("s1", now, 5))).To(Succeed())

			markers := driver.Markers("s1")
			Expect(markers).To(HaveLen(2))
			Expect(markers[0].Kind).To(Equal(record.KindSessionStart))
			Expect(markers[1].Kind).To(Equal(record.KindSessionEnd))
			Expect(markers[1].TotalRequests).To(Equal(5))
		})

		It("does not deduplicate end markers", func() {
			now := time.Now()
			Expect(driver.PutMarker(ctx, record.NewEndMarker("s1", now, 5))).To(Succeed())
			Expect(driver.PutMarker(ctx, record.NewEndMarker("s1", now, 5))).To(Succeed())

			Expect(driver.Markers("s1")).To(HaveLen(2))
		})
	})
})
