package extraction

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Extract", func() {
	var (
		lines []string
		items []Item
	)

	JustBeforeEach(func() {
		items = Extract(lines)
	})

	When("the quantity divides the total evenly", func() {
		BeforeEach(func() {
			lines = []string{"2 Fries 5.00"}
		})

		It("extracts one item", func() {
			Expect(items).To(HaveLen(1))
		})

		It("derives the unit price", func() {
			Expect(items[0].UnitPrice.Valid).To(BeTrue())
			Expect(items[0].UnitPrice.Decimal.StringFixed(2)).To(Equal("2.50"))
		})

		It("keeps the total price", func() {
			Expect(items[0].TotalPrice.StringFixed(2)).To(Equal("5.00"))
		})

		It("parses the label", func() {
			Expect(items[0].Label).To(Equal("Fries"))
		})
	})

	When("the unit price needs rounding", func() {
		BeforeEach(func() {
			lines = []string{"3 Bagels 10.00"}
		})

		It("rounds to two decimals", func() {
			Expect(items[0].UnitPrice.Decimal.String()).To(Equal("3.33"))
		})
	})

	When("the unit price lands on a half cent", func() {
		BeforeEach(func() {
			lines = []string{"2 Gum 0.05"}
		})

		It("rounds half away from zero", func() {
			Expect(items[0].UnitPrice.Decimal.String()).To(Equal("0.03"))
		})
	})

	When("the quantity is zero", func() {
		BeforeEach(func() {
			lines = []string{"0 Water 1.00"}
		})

		It("still extracts the item", func() {
			Expect(items).To(HaveLen(1))
		})

		It("leaves the unit price absent", func() {
			Expect(items[0].UnitPrice.Valid).To(BeFalse())
		})
	})

	When("the quantity is fractional", func() {
		BeforeEach(func() {
			lines = []string{"1.5 Bananas lb 0.90"}
		})

		It("parses the quantity", func() {
			Expect(items[0].Quantity.String()).To(Equal("1.5"))
		})

		It("keeps multi-word labels", func() {
			Expect(items[0].Label).To(Equal("Bananas lb"))
		})

		It("derives the unit price", func() {
			Expect(items[0].UnitPrice.Decimal.StringFixed(2)).To(Equal("0.60"))
		})
	})

	When("the price has a currency symbol", func() {
		BeforeEach(func() {
			lines = []string{"1 Club Sandwich $8.75"}
		})

		It("strips the symbol", func() {
			Expect(items[0].TotalPrice.StringFixed(2)).To(Equal("8.75"))
			Expect(items[0].Label).To(Equal("Club Sandwich"))
		})
	})

	When("lines do not match the item shape", func() {
		BeforeEach(func() {
			lines = []string{
				"Burger 12.99",
				"2 Burger 12.9",
				"2 Burger",
				"two Burger 12.99",
				"2 Burger 12.99 extra",
			}
		})

		It("skips them silently", func() {
			Expect(items).To(BeEmpty())
		})
	})

	When("matching and non-matching lines are mixed", func() {
		BeforeEach(func() {
			lines = []string{"1 Tea 2.00", "Cashier: Sam", "4 Donuts 6.00"}
		})

		It("keeps the source order", func() {
			Expect(items).To(HaveLen(2))
			Expect(items[0].Label).To(Equal("Tea"))
			Expect(items[1].Label).To(Equal("Donuts"))
		})

		It("leaves items unselected", func() {
			Expect(items[0].Selected).To(BeFalse())
			Expect(items[1].Selected).To(BeFalse())
		})
	})

	When("given no lines", func() {
		BeforeEach(func() {
			lines = []string{}
		})

		It("returns an empty result", func() {
			Expect(items).NotTo(BeNil())
			Expect(items).To(BeEmpty())
		})
	})

	Describe("the OCR path end to end", func() {
		BeforeEach(func() {
			lines = Classify(SplitLines("2 Coffee 6.00\nTAX 0.50\n1 Muffin 3.25"))
		})

		It("yields two items", func() {
			Expect(items).To(HaveLen(2))
		})

		It("extracts the coffee", func() {
			Expect(items[0].Label).To(Equal("Coffee"))
			Expect(items[0].Quantity.String()).To(Equal("2"))
			Expect(items[0].UnitPrice.Decimal.StringFixed(2)).To(Equal("3.00"))
			Expect(items[0].TotalPrice.StringFixed(2)).To(Equal("6.00"))
		})

		It("extracts the muffin", func() {
			Expect(items[1].Label).To(Equal("Muffin"))
			Expect(items[1].Quantity.String()).To(Equal("1"))
			Expect(items[1].UnitPrice.Decimal.StringFixed(2)).To(Equal("3.25"))
			Expect(items[1].TotalPrice.StringFixed(2)).To(Equal("3.25"))
		})

		It("serializes to canonical JSON", func() {
			data, err := MarshalItems(items)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal(strings.Join([]string{
				`{"items":[`,
				`{"label":"Coffee","quantity":2,"unitPrice":3.00,"totalPrice":6.00},`,
				`{"label":"Muffin","quantity":1,"unitPrice":3.25,"totalPrice":3.25}`,
				`]}`,
			}, "")))
		})
	})
})
