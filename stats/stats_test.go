/*
 * MIT License
 *
 * Copyright (c) 2026 rbroemeling/udplogger contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package stats_test

import (
	"path/filepath"
	"time"

	"github.com/rbroemeling/udplogger/parser"
	"github.com/rbroemeling/udplogger/stats"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Store", func() {
	var db *stats.Store

	BeforeEach(func() {
		path := filepath.Join(GinkgoT().TempDir(), "udploggerstats.db")
		var err error
		db, err = stats.Open(path)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = db.Close()
	})

	It("creates a counter at 1 on first sight of a key", func() {
		entry := parser.Entry{Status: 200, Tag: "web"}
		now := time.Date(2026, 1, 1, 14, 0, 0, 0, time.UTC)

		Expect(db.Record(entry, now)).To(Succeed())

		rows, err := db.Snapshot(stats.DimensionStatus)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].Hour).To(Equal(14))
		Expect(rows[0].Key).To(Equal("200"))
		Expect(rows[0].Count).To(Equal(int64(1)))
	})

	It("increments an existing counter rather than duplicating it", func() {
		entry := parser.Entry{Status: 200, Tag: "web"}
		now := time.Date(2026, 1, 1, 14, 0, 0, 0, time.UTC)

		Expect(db.Record(entry, now)).To(Succeed())
		Expect(db.Record(entry, now)).To(Succeed())
		Expect(db.Record(entry, now)).To(Succeed())

		rows, err := db.Snapshot(stats.DimensionStatus)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].Count).To(Equal(int64(3)))
	})

	It("buckets user sex and user type separately from status", func() {
		entry := parser.Entry{Status: 200, Tag: "web", UserSex: parser.SexMale, UserType: parser.UserTypePlus}
		now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

		Expect(db.Record(entry, now)).To(Succeed())

		sexRows, err := db.Snapshot(stats.DimensionUserSex)
		Expect(err).NotTo(HaveOccurred())
		Expect(sexRows).To(HaveLen(1))
		Expect(sexRows[0].Key).To(Equal("male"))

		typeRows, err := db.Snapshot(stats.DimensionUserType)
		Expect(err).NotTo(HaveOccurred())
		Expect(typeRows).To(HaveLen(1))
		Expect(typeRows[0].Key).To(Equal("plus"))
	})
})
