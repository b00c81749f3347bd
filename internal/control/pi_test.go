package control_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/odekit/internal/control"
	"github.com/san-kum/odekit/internal/dynamo"
)

var _ = Describe("PI", func() {
	var c *control.PI[float64]

	BeforeEach(func() {
		var err error
		c, err = control.NewPI(1e-6, 1e-6, 4)
		Expect(err).NotTo(HaveOccurred())
	})

	It("derives gains from the order", func() {
		Expect(c.Alpha).To(BeNumerically("~", 0.14, 1e-12))
		Expect(c.Beta).To(BeNumerically("~", 0.08, 1e-12))
	})

	It("behaves like an integral controller on the first step", func() {
		next, ok := c.AdjustStep(1, 0.1)
		Expect(ok).To(BeTrue())
		Expect(next).To(BeNumerically("~", 0.09, 1e-12))
	})

	It("remembers the previous estimate", func() {
		_, ok := c.AdjustStep(0.01, 0.1)
		Expect(ok).To(BeTrue())

		fresh, _ := control.NewPI(1e-6, 1e-6, 4)
		withHistory, _ := c.AdjustStep(0.5, 0.1)
		without, _ := fresh.AdjustStep(0.5, 0.1)
		Expect(withHistory).To(BeNumerically("<", without))
	})

	It("does not grow the step right after a rejection", func() {
		shrunk, ok := c.AdjustStep(100, 0.1)
		Expect(ok).To(BeFalse())
		Expect(shrunk).To(BeNumerically("<", 0.1))

		next, ok := c.AdjustStep(1e-6, shrunk)
		Expect(ok).To(BeTrue())
		Expect(next).To(BeNumerically("<=", shrunk))

		grown, ok := c.AdjustStep(1e-6, next)
		Expect(ok).To(BeTrue())
		Expect(grown).To(BeNumerically(">", next))
	})

	It("clears its memory on Reset", func() {
		c.AdjustStep(1e-3, 0.1)
		c.Reset()
		next, _ := c.AdjustStep(1, 0.1)
		Expect(next).To(BeNumerically("~", 0.09, 1e-12))
	})

	It("exposes tunable gains", func() {
		Expect(c.SetParam("safety", 0.8)).To(Succeed())
		Expect(c.GetParams()).To(HaveKeyWithValue("safety", 0.8))
		Expect(c.SetParam("gain", 1)).To(HaveOccurred())
	})

	It("rejects invalid tolerances", func() {
		_, err := control.NewPI(-1.0, 1e-6, 4)
		Expect(err).To(MatchError(dynamo.ErrConfiguration))
	})
})
