package mem

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RegionMapper", func() {
	It("should map initiator addresses to their regions", func() {
		m := NewRegionMapper(12, 3)

		Expect(m.RegionSize()).To(Equal(uint64(4)))
		Expect(m.Forward(0, 3)).To(Equal(uint64(3)))
		Expect(m.Forward(1, 3)).To(Equal(uint64(7)))
		Expect(m.Forward(2, 3)).To(Equal(uint64(11)))
	})

	It("should invert the forward mapping", func() {
		for n := 1; n <= 5; n++ {
			m := NewRegionMapper(60, n)

			for i := 0; i < n; i++ {
				for a := uint64(0); a < m.RegionSize(); a++ {
					g := m.Forward(i, a)
					Expect(m.Reverse(i, g)).To(Equal(a))
					Expect(m.Find(g)).To(Equal(i))
				}
			}
		}
	})

	It("should panic on unknown regions", func() {
		m := NewRegionMapper(12, 3)

		Expect(func() { m.Base(3) }).To(Panic())
		Expect(func() { NewRegionMapper(12, 0) }).To(Panic())
	})
})
