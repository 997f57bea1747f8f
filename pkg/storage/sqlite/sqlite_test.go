package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/extract"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/record"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/storage/sqlite"
)

func sqliteTestRecord(sessionID string, num int, text string) *record.Record {
	frags := []extract.Fragment{
		{"root": map[string]any{"a": map[string]any{"type": "text", "text": text}}},
	}
	groups := extract.HarvestGroups(frags)

	return record.NewRequest(sessionID, num, time.Now(), "/aiserver.v1/chat", frags, groups, 256)
}

var _ = Describe("SQLite Driver", func() {
	var (
		driver *sqlite.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		driver, err = sqlite.NewDriver(ctx, ":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if driver != nil {
			driver.Close()
		}
	})

	Describe("NewDriver", func() {
		It("creates a driver with a file database", func() {
			tmpDir := GinkgoT().TempDir()
			dbPath := filepath.Join(tmpDir, "captures.db")

			d, err := sqlite.NewDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer d.Close()

			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("InsertRequest", func() {
		It("inserts a new record", func() {
			inserted, err := driver.InsertRequest(ctx, sqliteTestRecord("s1", 1, "hello"))
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeTrue())
		})

		It("reports a duplicate on identical content in the same session", func() {
			_, err := driver.InsertRequest(ctx, sqliteTestRecord("s1", 1, "hello"))
			Expect(err).NotTo(HaveOccurred())

			inserted, err := driver.InsertRequest(ctx, sqliteTestRecord("s1", 2, "hello"))
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeFalse())
		})

		It("accepts identical content under a different session", func() {
			_, err := driver.InsertRequest(ctx, sqliteTestRecord("s1", 1, "hello"))
			Expect(err).NotTo(HaveOccurred())

			inserted, err := driver.InsertRequest(ctx, sqliteTestRecord("s2", 1, "hello"))
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeTrue())
		})

		It("treats different content in the same session as new", func() {
			_, err := driver.InsertRequest(ctx, sqliteTestRecord("s1", 1, "hello"))
			Expect(err).NotTo(HaveOccurred())

			inserted, err := driver.InsertRequest(ctx, sqliteTestRecord("s1", 2, "goodbye"))
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeTrue())
		})
	})

	Describe("Stats", func() {
		It("derives duplicates_prevented from attempts", func() {
			_, err := driver.InsertRequest(ctx, sqliteTestRecord("s1", 1, "hello"))
			Expect(err).NotTo(HaveOccurred())
			_, err = driver.InsertRequest(ctx, sqliteTestRecord("s1", 2, "hello"))
			Expect(err).NotTo(HaveOccurred())
			_, err = driver.InsertRequest(ctx, sqliteTestRecord("s1", 3, "goodbye"))
			Expect(err).NotTo(HaveOccurred())

			stats, err := driver.Stats(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalRequests).To(Equal(3))
			Expect(stats.UniqueRequests).To(Equal(2))
			Expect(stats.DuplicatesPrevented).To(Equal(1))
		})

		It("excludes markers from request statistics", func() {
			Expect(driver.PutMarker(ctx, record.NewStartMarker("s1", time.Now()))).To(Succeed())
			_, err := driver.InsertRequest(ctx, sqliteTestRecord("s1", 1, "hello"))
			Expect(err).NotTo(HaveOccurred())

			stats, err := driver.Stats(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalRequests).To(Equal(1))
			Expect(stats.UniqueRequests).To(Equal(1))
		})
	})

	Describe("PutMarker", func() {
		It("stores start and end markers without deduplication", func() {
			now := time.Now()
			Expect(driver.PutMarker(ctx, record.NewStartMarker("s1", now))).To(Succeed())
			Expect(driver.PutMarker(ctx, record.NewEndMarker("s1", now, 3))).To(Succeed())
			Expect(driver.PutMarker(ctx, record.NewEndMarker("s1", now, 3))).To(Succeed())

			stats, err := driver.Stats(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			// Markers never count as requests.
			Expect(stats.TotalRequests).To(BeZero())
		})
	})
})
