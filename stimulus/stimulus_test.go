package stimulus

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/tracing"
)

var _ = Describe("FIFO", func() {
	It("should keep the values in order up to its capacity", func() {
		f := NewFIFO("In", 2)

		Expect(f.Write(1)).To(BeTrue())
		Expect(f.Write(2)).To(BeTrue())
		Expect(f.Write(3)).To(BeFalse())
		Expect(f.NumFree()).To(BeZero())
		Expect(f.NumAvailable()).To(Equal(2))

		v, ok := f.Read()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(byte(1)))
		Expect(f.NumFree()).To(Equal(1))
	})

	It("should report an empty queue", func() {
		f := NewFIFO("In", 1)

		_, ok := f.Read()
		Expect(ok).To(BeFalse())
	})

	It("should panic on a zero capacity", func() {
		Expect(func() { NewFIFO("In", 0) }).To(Panic())
	})
})

var _ = Describe("Load", func() {
	It("should read decimal values and skip comments", func() {
		in := "# sensor 0\n1 2\t3\n\n255 # max\n"

		values, err := Load(strings.NewReader(in), FormatDecimal)

		Expect(err).NotTo(HaveOccurred())
		Expect(values).To(Equal([]byte{1, 2, 3, 255}))
	})

	It("should reject values that do not fit a byte", func() {
		_, err := Load(strings.NewReader("1\n256\n"), FormatDecimal)

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("line 2"))
	})

	It("should read characters", func() {
		values, err := Load(strings.NewReader("ab c\n1"), FormatChars)

		Expect(err).NotTo(HaveOccurred())
		Expect(values).To(Equal([]byte("abc1")))
	})

	It("should load a file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "stimulus.txt")
		Expect(os.WriteFile(path, []byte("4 5"), 0o644)).To(Succeed())

		values, err := LoadFile(path, FormatDecimal)

		Expect(err).NotTo(HaveOccurred())
		Expect(values).To(Equal([]byte{4, 5}))
	})

	It("should fail on a missing file", func() {
		_, err := LoadFile(filepath.Join(GinkgoT().TempDir(), "none"),
			FormatDecimal)

		Expect(err).To(HaveOccurred())
	})

	It("should parse the format names", func() {
		Expect(ParseFormat("chars")).To(Equal(FormatChars))
		Expect(ParseFormat("")).To(Equal(FormatDecimal))

		_, err := ParseFormat("binary")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Feeder", func() {
	var (
		engine    *sim.SerialEngine
		collector *tracing.Collector
		sensor0   *FIFO
		sensor1   *FIFO
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		collector = tracing.NewCollector(engine)
		sensor0 = NewFIFO("Sensor0", 8)
		sensor1 = NewFIFO("Sensor1", 8)
	})

	It("should feed one value per quantum and stop when exhausted", func() {
		f := MakeBuilder().
			WithEngine(engine).
			WithQuantum(10*sim.Ms).
			WithValues([]byte{1, 2, 3}).
			WithChannels(sensor0, sensor1).
			Build("Stimulus")
		tracing.CollectTrace(f, collector)

		f.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(engine.Stopped()).To(BeTrue())
		Expect(engine.CurrentTime()).To(Equal(30 * sim.Ms))
		Expect(f.Exhausted()).To(BeTrue())
		Expect(f.Err()).To(MatchError(ErrExhausted))
		Expect(f.NumFed()).To(Equal(3))
		Expect(sensor0.NumAvailable()).To(Equal(3))
		Expect(sensor1.NumAvailable()).To(Equal(3))

		errs := collector.Errors()
		Expect(errs).To(HaveLen(1))
		Expect(errs[0].Kind).To(Equal(tracing.ErrorKindStimulus))
		Expect(errs[0].Component).To(Equal("Stimulus"))
	})

	It("should drop the values a full channel cannot take", func() {
		full := NewFIFO("Sensor0", 1)
		f := MakeBuilder().
			WithEngine(engine).
			WithValues([]byte{1, 2}).
			WithChannels(full).
			Build("Stimulus")

		f.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(f.NumFull()).To(Equal(uint64(1)))
		v, _ := full.Read()
		Expect(v).To(Equal(byte(1)))
	})

	It("should not report exhaustion while values remain", func() {
		f := MakeBuilder().
			WithEngine(engine).
			WithValues([]byte{1, 2}).
			WithChannels(sensor0).
			Build("Stimulus")

		f.Start()
		Expect(engine.RunUntil(5 * sim.Ms)).To(Succeed())

		Expect(f.Err()).NotTo(HaveOccurred())
		Expect(f.NumFed()).To(Equal(1))
	})
})
