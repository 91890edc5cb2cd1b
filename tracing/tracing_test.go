package tracing

import (
	"bytes"
	"errors"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/tlm"
)

var _ = Describe("CollectTrace", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		domain     *testDomain
		collector  *Collector
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)
		domain = newTestDomain("LModel")
		collector = NewCollector(timeTeller)

		CollectTrace(domain, collector)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should panic when the same tracer is attached twice", func() {
		Expect(func() { CollectTrace(domain, collector) }).To(Panic())
	})

	It("should stamp and store transaction records", func() {
		timeTeller.EXPECT().CurrentTime().Return(3 * sim.Ms)

		TraceTransaction(domain, TransactionRecord{
			ComponentID: 600,
			Process:     "C1",
			Phase:       PhaseReturn,
			TargetID:    500,
			Delay:       2 * sim.Us,
			Success:     false,
			Response:    tlm.ResponseAddressError,
		})

		recs := collector.Transactions()
		Expect(recs).To(HaveLen(1))
		Expect(recs[0].Time).To(Equal(3 * sim.Ms))
		Expect(recs[0].Component).To(Equal("LModel"))
		Expect(recs[0].Response).To(Equal(tlm.ResponseAddressError))
		Expect(collector.TransactionsOf("LModel", "C1")).To(HaveLen(1))
		Expect(collector.TransactionsOf("LModel", "C2")).To(BeEmpty())
	})

	It("should dispatch every record kind", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTime(0)).Times(3)

		TraceSync(domain, SyncRecord{Process: "C1", Phase: PhaseNeed})
		TraceMemAccess(domain, MemAccessRecord{Command: tlm.CommandRead})
		TraceError(domain, "C1", ErrorKindSelfAccess, errors.New("bad"))

		Expect(collector.Syncs()).To(HaveLen(1))
		Expect(collector.MemAccesses()).To(HaveLen(1))
		Expect(collector.MemAccesses()[0].Memory).To(Equal("LModel"))
		Expect(collector.Errors()).To(HaveLen(1))
		Expect(collector.Errors()[0].Message).To(Equal("bad"))

		collector.Reset()
		Expect(collector.Syncs()).To(BeEmpty())
	})
})

var _ = Describe("LogTracer", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		buf        *bytes.Buffer
		tracer     *LogTracer
		domain     *testDomain
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)
		timeTeller.EXPECT().CurrentTime().Return(sim.Ms).AnyTimes()
		buf = new(bytes.Buffer)
		tracer = NewLogTracer(log.New(buf, "", 0), timeTeller)
		domain = newTestDomain("SEE")

		CollectTrace(domain, tracer)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should print the response of failed transactions", func() {
		TraceTransaction(domain, TransactionRecord{
			ComponentID: 800,
			Process:     "D",
			Phase:       PhaseReturn,
			Response:    tlm.ResponseCommandError,
		})

		Expect(buf.String()).To(ContainSubstring("SEE(800).D"))
		Expect(buf.String()).To(ContainSubstring("COMMAND_ERROR_RESPONSE"))
	})

	It("should not print a response for calls", func() {
		TraceTransaction(domain, TransactionRecord{
			ComponentID: 800,
			Process:     "D",
			Phase:       PhaseCall,
		})

		Expect(buf.String()).To(ContainSubstring("transaction CALL"))
		Expect(buf.String()).NotTo(ContainSubstring("failed"))
	})

	It("should print errors", func() {
		TraceError(domain, "D", ErrorKindRouting, errors.New("no target 7"))

		Expect(buf.String()).To(ContainSubstring("error ROUTING: no target 7"))
	})
})
