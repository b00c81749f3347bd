package control_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/odekit/internal/control"
	"github.com/san-kum/odekit/internal/dynamo"
)

var _ = Describe("Standard", func() {
	var c *control.Standard[float64]

	BeforeEach(func() {
		var err error
		c, err = control.NewStandard(1e-6, 1e-6, 4)
		Expect(err).NotTo(HaveOccurred())
	})

	It("accepts an estimate of exactly one", func() {
		next, ok := c.AdjustStep(1, 0.1)
		Expect(ok).To(BeTrue())
		Expect(next).To(BeNumerically("~", 0.09, 1e-12))
	})

	It("grows the step by the order-dependent factor", func() {
		next, ok := c.AdjustStep(math.Pow(0.5, 5), 0.1)
		Expect(ok).To(BeTrue())
		Expect(next).To(BeNumerically("~", 0.1*0.9*2, 1e-12))
	})

	It("caps growth at the maximum scale", func() {
		next, ok := c.AdjustStep(0, 0.1)
		Expect(ok).To(BeTrue())
		Expect(next).To(BeNumerically("~", 0.5, 1e-12))

		next, _ = c.AdjustStep(1e-20, 0.1)
		Expect(next).To(BeNumerically("~", 0.5, 1e-12))
	})

	It("shrinks a rejected step and never below the minimum scale", func() {
		next, ok := c.AdjustStep(32, 0.1)
		Expect(ok).To(BeFalse())
		Expect(next).To(BeNumerically("~", 0.1*0.9/2, 1e-12))

		next, ok = c.AdjustStep(1e12, 0.1)
		Expect(ok).To(BeFalse())
		Expect(next).To(BeNumerically("~", 0.02, 1e-12))
	})

	It("rejects NaN estimates with the minimum factor", func() {
		next, ok := c.AdjustStep(math.NaN(), 0.1)
		Expect(ok).To(BeFalse())
		Expect(next).To(BeNumerically("~", 0.02, 1e-12))
	})

	It("validates its configuration", func() {
		_, err := control.NewStandard(0.0, 0.0, 4)
		Expect(err).To(MatchError(dynamo.ErrConfiguration))
		_, err = control.NewStandard(1e-6, -1.0, 4)
		Expect(err).To(MatchError(dynamo.ErrConfiguration))
		_, err = control.NewStandard(1e-6, 1e-6, 0)
		Expect(err).To(MatchError(dynamo.ErrConfiguration))
		_, err = c.WithScaling(0.9, 0.2, 0.5)
		Expect(err).To(MatchError(dynamo.ErrConfiguration))
	})
})

var _ = Describe("Tolerance", func() {
	tol := control.Tolerance[float64]{Atol: 1e-3, Rtol: 1e-2}

	It("mixes absolute and relative scales per component", func() {
		errEst := dynamo.State[float64]{1e-3, 1.1e-2}
		x := dynamo.State[float64]{0, 1}
		next := dynamo.State[float64]{0, -1}
		Expect(tol.ErrorNorm(errEst, x, next)).To(BeNumerically("~", 1.0, 1e-12))
	})

	It("uses the larger of the two magnitudes", func() {
		errEst := dynamo.State[float64]{0.101}
		Expect(tol.ErrorNorm(errEst, dynamo.State[float64]{10}, dynamo.State[float64]{1})).
			To(BeNumerically("~", 1.0, 1e-12))
	})

	It("propagates NaN", func() {
		errEst := dynamo.State[float64]{math.NaN(), 0}
		v := tol.ErrorNorm(errEst, dynamo.State[float64]{1, 1}, dynamo.State[float64]{1, 1})
		Expect(math.IsNaN(v)).To(BeTrue())
	})
})
