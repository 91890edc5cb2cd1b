package interconnect

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/propriosim/mem"
	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/tlm"
	"github.com/sarchlab/propriosim/tracing"
)

var _ = Describe("FanIn", func() {
	var (
		mockCtrl *gomock.Controller
		target   *MockTarget
		router   *FanIn
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		target = NewMockTarget(mockCtrl)
		router = NewFanIn("IC1", 3, 12, target)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should map initiator addresses into their regions", func() {
		Expect(router.ForwardMap(0, 3)).To(Equal(uint64(3)))
		Expect(router.ForwardMap(1, 3)).To(Equal(uint64(7)))
		Expect(router.ForwardMap(2, 3)).To(Equal(uint64(11)))
	})

	It("should invert the mapping", func() {
		for i := 0; i < 3; i++ {
			for a := uint64(0); a < router.RegionSize(); a++ {
				Expect(router.ReverseMap(i, router.ForwardMap(i, a))).
					To(Equal(a))
			}
		}
	})

	It("should forward with the mapped address and restore it", func() {
		txn := tlm.NewWriteTransaction(3, []byte{1})

		target.EXPECT().
			BTransport(txn, sim.Ns).
			DoAndReturn(func(t *tlm.Transaction, d sim.VTime) sim.VTime {
				Expect(t.Address).To(Equal(uint64(7)))
				t.Response = tlm.ResponseOK

				return d + sim.Ns
			})

		delay := router.Port(1).BTransport(txn, sim.Ns)

		Expect(delay).To(Equal(2 * sim.Ns))
		Expect(txn.Address).To(Equal(uint64(3)))
		Expect(txn.Response).To(Equal(tlm.ResponseOK))
	})

	It("should reject accesses beyond the initiator region", func() {
		txn := tlm.NewWriteTransaction(2, []byte{9, 9, 9})

		delay := router.Port(0).BTransport(txn, sim.Ns)

		Expect(delay).To(Equal(sim.Ns))
		Expect(txn.Response).To(Equal(tlm.ResponseAddressError))
		Expect(txn.Address).To(Equal(uint64(2)))
	})

	It("should forward accesses that end at the region boundary", func() {
		txn := tlm.NewWriteTransaction(2, []byte{9, 9})

		target.EXPECT().
			BTransport(txn, sim.Ns).
			DoAndReturn(func(t *tlm.Transaction, d sim.VTime) sim.VTime {
				Expect(t.Address).To(Equal(uint64(10)))
				t.Response = tlm.ResponseOK

				return d
			})

		router.Port(2).BTransport(txn, sim.Ns)

		Expect(txn.Response).To(Equal(tlm.ResponseOK))
	})

	It("should forward invalidations to the named initiator", func() {
		first := NewMockBackwardTarget(mockCtrl)
		second := NewMockBackwardTarget(mockCtrl)
		router.BindBackward(0, first)
		router.BindBackward(2, second)

		second.EXPECT().InvalidateDirectMemPtr(uint64(0), uint64(4))

		router.InvalidateDirectMemPtr(2, 8, 12)
		router.InvalidateDirectMemPtr(1, 4, 8)
	})

	It("should panic on unknown initiators", func() {
		Expect(func() { router.Port(3) }).To(Panic())
		Expect(func() { router.Port(-1) }).To(Panic())
	})
})

var _ = Describe("FanIn in front of a memory", func() {
	It("should keep an initiator out of the next region", func() {
		block := mem.MakeBuilder().
			WithLatency(sim.Ns).
			WithCapacity(12).
			WithWidth(4).
			Build("SAE")
		router := NewFanIn("IC1", 3, 12, tlm.TargetFunc(
			func(txn *tlm.Transaction, delay sim.VTime) sim.VTime {
				delay, _ = block.Operation(txn.InitiatorID, txn, delay)
				return delay
			}))

		collector := tracing.NewCollector(sim.NewSerialEngine())
		tracing.CollectTrace(router, collector)

		txn := tlm.NewWriteTransaction(4, []byte{9, 9, 9, 9})
		router.Port(0).BTransport(txn, 0)

		Expect(txn.Response).To(Equal(tlm.ResponseAddressError))
		Expect(collector.Errors()).To(HaveLen(1))
		Expect(collector.Errors()[0].Message).
			To(ContainSubstring("region of initiator 1"))

		content := make([]byte, 12)
		Expect(block.SelfRead(0, content)).To(Succeed())
		Expect(content).To(Equal(make([]byte, 12)))
	})
})
