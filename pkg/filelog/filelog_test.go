package filelog_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/extract"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/filelog"
)

var _ = Describe("Writer", func() {
	var (
		dir    string
		writer *filelog.Writer
		ts     time.Time
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		var err error
		writer, err = filelog.NewWriter(dir, "20250115_142233")
		Expect(err).NotTo(HaveOccurred())
		ts = time.Date(2025, 1, 15, 14, 22, 33, 0, time.UTC)
	})

	AfterEach(func() {
		writer.Close()
	})

	It("creates the four session files", func() {
		for _, name := range []string{
			"raw_20250115_142233.log",
			"binary_20250115_142233.bin",
			"clean_20250115_142233.log",
			"json_20250115_142233.log",
		} {
			_, err := os.Stat(filepath.Join(dir, name))
			Expect(err).NotTo(HaveOccurred(), name)
		}
	})

	It("creates a missing log directory", func() {
		nested := filepath.Join(dir, "a", "b")
		w, err := filelog.NewWriter(nested, "s")
		Expect(err).NotTo(HaveOccurred())
		defer w.Close()

		_, err = os.Stat(nested)
		Expect(err).NotTo(HaveOccurred())
	})

	It("writes the raw log with a request banner", func() {
		Expect(writer.WriteRaw(1, ts, "/chat", "api2.cursor.sh/chat", "hello body")).To(Succeed())
		Expect(writer.Close()).To(Succeed())

		data, err := os.ReadFile(filepath.Join(dir, "raw_20250115_142233.log"))
		Expect(err).NotTo(HaveOccurred())
		content := string(data)
		Expect(content).To(ContainSubstring("REQUEST #1"))
		Expect(content).To(ContainSubstring("Endpoint: /chat"))
		Expect(content).To(ContainSubstring("Full URL: api2.cursor.sh/chat"))
		Expect(content).To(ContainSubstring("RAW DATA:\nhello body"))
	})

	It("writes the binary log with byte-exact payload", func() {
		payload := []byte{0x00, 0x01, 0xff, 'a', 'b'}
		Expect(writer.WriteBinary(2, ts, payload)).To(Succeed())
		Expect(writer.Close()).To(Succeed())

		data, err := os.ReadFile(filepath.Join(dir, "binary_20250115_142233.bin"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("REQUEST #2"))
		Expect(string(data)).To(ContainSubstring("Size: 5 bytes"))
		Expect(string(data)).To(ContainSubstring(string(payload)))
	})

	It("writes the clean log", func() {
		Expect(writer.WriteClean(3, ts, "printable only")).To(Succeed())
		Expect(writer.Close()).To(Succeed())

		data, err := os.ReadFile(filepath.Join(dir, "clean_20250115_142233.log"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("CLEAN TEXT (printable only):\nprintable only"))
	})

	It("writes the json log with pretty-printed objects", func() {
		frags := []extract.Fragment{
			{"root": map[string]any{"type": "text", "text": "hi"}},
		}
		Expect(writer.WriteJSON(4, ts, "envelope", frags)).To(Succeed())
		Expect(writer.Close()).To(Succeed())

		data, err := os.ReadFile(filepath.Join(dir, "json_20250115_142233.log"))
		Expect(err).NotTo(HaveOccurred())
		content := string(data)
		Expect(content).To(ContainSubstring("Extractor: envelope"))
		Expect(content).To(ContainSubstring("Valid JSON objects: 1"))
		Expect(content).To(ContainSubstring("-- Object #1 --"))
		Expect(content).To(ContainSubstring(`"text": "hi"`))
	})

	It("appends across multiple requests", func() {
		Expect(writer.WriteRaw(1, ts, "/chat", "u", "first")).To(Succeed())
		Expect(writer.WriteRaw(2, ts, "/chat", "u", "second")).To(Succeed())
		Expect(writer.Close()).To(Succeed())

		data, err := os.ReadFile(filepath.Join(dir, "raw_20250115_142233.log"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("REQUEST #1"))
		Expect(string(data)).To(ContainSubstring("REQUEST #2"))
	})
})

var _ = Describe("Discard", func() {
	It("accepts all writes", func() {
		var sink filelog.Sink = filelog.Discard{}
		Expect(sink.WriteRaw(1, time.Now(), "e", "u", "t")).To(Succeed())
		Expect(sink.WriteBinary(1, time.Now(), []byte("x"))).To(Succeed())
		Expect(sink.WriteClean(1, time.Now(), "t")).To(Succeed())
		Expect(sink.WriteJSON(1, time.Now(), "envelope", nil)).To(Succeed())
		Expect(sink.Close()).To(Succeed())
	})
})
