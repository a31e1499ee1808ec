package musspec

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fmcheck/mus-engine/mus"
)

var _ = Describe("CheckUntilYieldingMUSes", func() {
	Context("a property that holds forever over a single-latch model", func() {
		It("proves it, reporting TRUE", func() {
			solver, prop := oneBitLatchFixture()
			engine, err := mus.New(solver, prop)
			Expect(err).NotTo(HaveOccurred())

			result, err := engine.CheckUntil(context.Background(), 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(mus.True))
		})

		It("yields exactly one non-empty MUS bitmask", func() {
			solver, prop := oneBitLatchFixture()
			engine, err := mus.New(solver, prop)
			Expect(err).NotTo(HaveOccurred())

			muses, err := engine.CheckUntilYieldingMUSes(context.Background(), 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(muses).To(HaveLen(1))
			Expect(muses[0].BoolMUS).NotTo(BeEmpty())

			var onBits int
			for _, on := range muses[0].BoolMUS {
				if on {
					onBits++
				}
			}
			Expect(onBits).To(Equal(3), "INIT, TRANS and SPEC are all necessary members")
		})
	})

	Context("a model with two structurally independent invariant violations", func() {
		It("finds exactly two disjoint MUSes", func() {
			solver, prop := twoIndependentInvariantsFixture()
			engine, err := mus.New(solver, prop)
			Expect(err).NotTo(HaveOccurred())

			muses, err := engine.CheckUntilYieldingMUSes(context.Background(), 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(muses).To(HaveLen(2))

			for _, m := range muses {
				var onBits int
				for _, on := range m.BoolMUS {
					if on {
						onBits++
					}
				}
				Expect(onBits).To(Equal(2), "each independent invariant violation needs exactly its own INIT and INVAR control var")
			}

			// The two MUSes must not share any control variable: they are
			// independent causes of unsatisfiability.
			Expect(muses[0].BoolMUS).NotTo(Equal(muses[1].BoolMUS))
			for i, on := range muses[0].BoolMUS {
				if on {
					Expect(muses[1].BoolMUS[i]).To(BeFalse())
				}
			}
		})
	})

	Context("an unreachable-states-style fixture checked to a larger bound", func() {
		It("still proves the property with the same MUS shape, independent of k", func() {
			solver, prop := oneBitLatchFixture()
			engine, err := mus.New(solver, prop)
			Expect(err).NotTo(HaveOccurred())

			muses, err := engine.CheckUntilYieldingMUSes(context.Background(), 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(muses).To(HaveLen(1))
		})
	})
})
