package harness

import (
	"errors"

	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Teardown list", func() {
	ginkgo.It("should unwind in reverse order", func() {
		var order []string
		td := newTeardownList(testLogger())

		td.push("a", func() error {
			order = append(order, "a")
			return nil
		})
		td.push("b", func() error {
			order = append(order, "b")
			return nil
		})
		td.push("c", func() error {
			order = append(order, "c")
			return nil
		})

		td.unwind()

		Expect(order).To(Equal([]string{"c", "b", "a"}))
	})

	ginkgo.It("should keep releasing after a failed release", func() {
		released := 0
		td := newTeardownList(testLogger())

		td.push("a", func() error {
			released++
			return nil
		})
		td.push("b", func() error {
			return errors.New("release failed")
		})
		td.push("c", func() error {
			released++
			return nil
		})

		td.unwind()

		Expect(released).To(Equal(2))
	})

	ginkgo.It("should unwind at most once", func() {
		released := 0
		td := newTeardownList(testLogger())

		td.push("a", func() error {
			released++
			return nil
		})

		td.unwind()
		td.unwind()

		Expect(released).To(Equal(1))
	})
})
