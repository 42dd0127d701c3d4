package xstrings_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/workmate-ai/workmate/pkg/xstrings"
)

var _ = Describe("UniqueSlice", func() {
	It("keeps the first occurrence of each element", func() {
		Expect(xstrings.UniqueSlice([]string{"a", "b", "a", "c", "b"})).To(Equal([]string{"a", "b", "c"}))
	})

	It("works on numeric slices", func() {
		Expect(xstrings.UniqueSlice([]int{3, 1, 3, 3, 2})).To(Equal([]int{3, 1, 2}))
	})

	It("returns an empty slice for empty input", func() {
		Expect(xstrings.UniqueSlice([]string{})).To(Equal([]string{}))
	})
})

var _ = Describe("CleanTags", func() {
	It("trims, drops empties and dedupes in order", func() {
		tags := []string{" urgent ", "backend", "", "urgent", "  ", "backend "}
		Expect(xstrings.CleanTags(tags)).To(Equal([]string{"urgent", "backend"}))
	})

	It("returns an empty slice when everything is blank", func() {
		Expect(xstrings.CleanTags([]string{"", "  "})).To(Equal([]string{}))
	})
})
