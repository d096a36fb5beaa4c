package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SplitLines", func() {
	It("splits on any newline style", func() {
		Expect(SplitLines("1 Tea 2.00\r\n1 Pie 4.50\r2 Buns 3.00")).To(Equal([]string{
			"1 Tea 2.00",
			"1 Pie 4.50",
			"2 Buns 3.00",
		}))
	})

	It("drops blank lines and trims whitespace", func() {
		Expect(SplitLines("  WELCOME \n\n\t\n 1 Tea 2.00  ")).To(Equal([]string{"WELCOME", "1 Tea 2.00"}))
	})

	It("collapses runs of spaces and tabs", func() {
		Expect(SplitLines("2\tCoffee     6.00")).To(Equal([]string{"2 Coffee 6.00"}))
	})

	It("returns an empty slice for empty text", func() {
		Expect(SplitLines("")).To(BeEmpty())
	})
})
