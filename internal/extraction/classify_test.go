package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Classify", func() {
	var (
		lines  []string
		result []string
	)

	JustBeforeEach(func() {
		result = Classify(lines)
	})

	When("given a mix of items and totals", func() {
		BeforeEach(func() {
			lines = []string{"SUBTOTAL", "2 Burger 12.99", "TOTAL $15.00", "Thank you"}
		})

		It("keeps only the item line", func() {
			Expect(result).To(Equal([]string{"2 Burger 12.99"}))
		})
	})

	When("a line is only metadata keywords", func() {
		BeforeEach(func() {
			lines = []string{"Sub-Total", "VISA CARD", "cash change due"}
		})

		It("drops every line", func() {
			Expect(result).To(BeEmpty())
		})
	})

	When("a keyword line carries an amount", func() {
		BeforeEach(func() {
			lines = []string{"TAX 0.50", "Balance due $4.75"}
		})

		It("still treats it as metadata", func() {
			Expect(result).To(BeEmpty())
		})
	})

	When("a line mixes a keyword with item words", func() {
		BeforeEach(func() {
			lines = []string{"1 Chocolate Bar 2.49"}
		})

		It("keeps the line because of its price shape", func() {
			Expect(result).To(Equal([]string{"1 Chocolate Bar 2.49"}))
		})
	})

	When("a short line mentions a keyword", func() {
		BeforeEach(func() {
			lines = []string{"TIP:"}
		})

		It("drops the line", func() {
			Expect(result).To(BeEmpty())
		})
	})

	When("a short line has no price or quantity", func() {
		BeforeEach(func() {
			lines = []string{"Hello", "#4411", "$ off"}
		})

		It("drops lines without a currency marker", func() {
			Expect(result).To(Equal([]string{"$ off"}))
		})
	})

	When("a line starts with a quantity", func() {
		BeforeEach(func() {
			lines = []string{"3 Eggs"}
		})

		It("keeps the line", func() {
			Expect(result).To(Equal([]string{"3 Eggs"}))
		})
	})

	When("a long line has no obvious shape", func() {
		BeforeEach(func() {
			lines = []string{"Large Cappuccino with oat milk"}
		})

		It("keeps the line by default", func() {
			Expect(result).To(HaveLen(1))
		})
	})

	When("lines are kept", func() {
		BeforeEach(func() {
			lines = []string{"2 Coffee 6.00", "TAX 0.50", "1 Muffin 3.25", "1 Scone 2.75"}
		})

		It("preserves their order", func() {
			Expect(result).To(Equal([]string{"2 Coffee 6.00", "1 Muffin 3.25", "1 Scone 2.75"}))
		})
	})

	When("given no lines", func() {
		BeforeEach(func() {
			lines = nil
		})

		It("returns an empty result", func() {
			Expect(result).NotTo(BeNil())
			Expect(result).To(BeEmpty())
		})
	})
})
