package bill

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Reader", func() {
	var (
		store  *spyStore
		reader *Reader
		rows   []Row
		err    error
	)

	BeforeEach(func() {
		store = newSpyStore()
		reader = NewReader(store, nil)
	})

	JustBeforeEach(func() {
		rows, err = reader.List(context.Background())
	})

	When("the store returns bills", func() {
		BeforeEach(func() {
			store.bills = []Bill{
				{ID: "a", Date: "2004-04-04", Status: StatusPending},
				{ID: "b", Date: "2002-02-02", Status: StatusAccepted},
				{ID: "c", Date: "2003-03-03", Status: StatusRefused},
			}
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps the store order", func() {
			Expect(rows).To(HaveLen(3))
			Expect(rows[0].ID).To(Equal("a"))
			Expect(rows[1].ID).To(Equal("b"))
			Expect(rows[2].ID).To(Equal("c"))
		})

		It("formats dates and statuses", func() {
			Expect(rows[0].Date).To(Equal("4 Avr. 04"))
			Expect(rows[0].Status).To(Equal(Status("En attente")))
			Expect(rows[1].Status).To(Equal(Status("Accepté")))
			Expect(rows[2].Status).To(Equal(Status("Refusé")))
		})

		It("keeps the stored date for sorting", func() {
			Expect(rows[0].ISODate).To(Equal("2004-04-04"))
			Expect(rows[0].Formatted).To(BeTrue())
		})

		It("does not modify the store's bills", func() {
			Expect(store.bills[0].Date).To(Equal("2004-04-04"))
		})
	})

	When("exactly one bill has an unparseable date", func() {
		BeforeEach(func() {
			store.bills = []Bill{
				{ID: "a", Date: "2004-04-04", Status: StatusPending},
				{ID: "broken", Date: "not-a-date", Status: StatusPending},
				{ID: "c", Date: "2003-03-03", Status: StatusAccepted},
			}
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns every bill", func() {
			Expect(rows).To(HaveLen(3))
		})

		It("leaves only the malformed bill unformatted", func() {
			Expect(rows[1].Bill).To(Equal(store.bills[1]))
			Expect(rows[1].Formatted).To(BeFalse())

			Expect(rows[0].Formatted).To(BeTrue())
			Expect(rows[2].Formatted).To(BeTrue())
			Expect(rows[2].Date).To(Equal("3 Mar. 03"))
		})
	})

	When("a bill has an unknown status", func() {
		BeforeEach(func() {
			store.bills = []Bill{{ID: "odd", Date: "2004-04-04", Status: "archived"}}
		})

		It("returns the bill as stored", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(rows[0].Bill).To(Equal(store.bills[0]))
		})
	})

	When("the store fails", func() {
		var setupErr error

		BeforeEach(func() {
			setupErr = &StoreError{Code: 404, Message: "not found"}
			store.listErr = setupErr
		})

		It("returns the store error untouched", func() {
			Expect(err).To(BeIdenticalTo(setupErr))
			Expect(err.Error()).To(Equal("Erreur 404"))
		})

		It("returns no rows", func() {
			Expect(rows).To(BeNil())
		})
	})

	When("the store fails with a transient error", func() {
		BeforeEach(func() {
			store.listErr = &StoreError{Code: 500}
		})

		It("surfaces the status text", func() {
			var storeErr *StoreError
			Expect(errors.As(err, &storeErr)).To(BeTrue())
			Expect(err.Error()).To(Equal("Erreur 500"))
		})
	})
})

var _ = Describe("SortAntiChrono", func() {
	It("orders the fixture bills newest first", func() {
		rows := []Row{
			{ISODate: "2004-04-04"},
			{ISODate: "2002-02-02"},
			{ISODate: "2003-03-03"},
		}

		SortAntiChrono(rows)

		Expect([]string{rows[0].ISODate, rows[1].ISODate, rows[2].ISODate}).
			To(Equal([]string{"2004-04-04", "2003-03-03", "2002-02-02"}))
	})

	It("yields non-increasing dates under lexical comparison", func() {
		rows := []Row{
			{ISODate: "2021-11-30"},
			{ISODate: "2022-01-05"},
			{ISODate: "2019-07-14"},
			{ISODate: "2022-01-05"},
			{ISODate: "2020-02-29"},
		}

		SortAntiChrono(rows)

		for i := 1; i < len(rows); i++ {
			Expect(rows[i-1].ISODate >= rows[i].ISODate).To(BeTrue())
		}
	})

	// Lexical order is only chronological for zero-padded dates.
	It("compares unpadded dates lexically, not chronologically", func() {
		rows := []Row{
			{ISODate: "2004-4-4"},
			{ISODate: "2004-10-01"},
		}

		SortAntiChrono(rows)

		Expect(rows[0].ISODate).To(Equal("2004-4-4"))
	})
})
