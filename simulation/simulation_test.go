package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/propriosim/datarecording"
	"github.com/sarchlab/propriosim/node"
	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/stimulus"
	"github.com/sarchlab/propriosim/tracing"
)

func sensingParams() node.Params {
	q := 10 * sim.Ms

	return node.Params{
		Quantum:         q,
		TriggerInterval: 2,
		BusWidth:        4,

		NumSensors:    1,
		NumActuators:  1,
		NumExtActions: 0,

		SensorDataLength:      4,
		SensorDatasets:        1,
		GVOCMonitorDataLength: 4,
		GVOCMonitorDatasets:   1,
		GVOCSEEDataLength:     4,
		GVOCSEEDatasets:       1,
		LModelReportLength:    4,
		LModelResultLength:    4,
		SEEReportLength:       4,
		ActionDataLength:      4,
		ActionDatasets:        1,

		SAESize:          4,
		MonitorMemSize:   4,
		LModelReportSize: 4,
		SEELModelMemSize: 4,
		SEEGVOCMemSize:   4,
		SEEReportMemSize: 4,
		ActuatorMemSize:  4,

		SAEReadLatency:        q / 2,
		SAEWriteLatency:       q,
		MonitorLatency:        q,
		LModelReadLatency:     q / 2,
		SEELModelWriteLatency: q / 2,
		SEEGVOCWriteLatency:   q,
		SEEReportReadLatency:  q / 2,
		ActuatorWriteLatency:  q / 2,
	}
}

// populate adds a node whose only sensor is fed three stimulus values.
func populate(s *Simulation) (*node.Node, *stimulus.Feeder) {
	fifo := stimulus.NewFIFO("Node.SensorFIFO[0]", 8)

	n := node.MakeBuilder().
		WithEngine(s.GetEngine()).
		WithRegistry(s.GetRegistry()).
		WithParams(sensingParams()).
		WithSensorSources(fifo).
		Build("Node")

	feeder := stimulus.MakeBuilder().
		WithEngine(s.GetEngine()).
		WithQuantum(10 * sim.Ms).
		WithValues([]byte{1, 2, 3}).
		WithChannels(fifo).
		Build("Stimulus")

	s.RegisterNode(n)
	s.RegisterFeeder(feeder)

	return n, feeder
}

var _ = Describe("Builder", func() {
	It("should not allow a monitor port without monitoring", func() {
		Expect(func() {
			MakeBuilder().WithoutRecording().WithMonitorPort(8080).Build()
		}).To(Panic())
	})

	It("should not allow an output file without recording", func() {
		Expect(func() {
			MakeBuilder().WithoutRecording().WithOutputFileName("x").Build()
		}).To(Panic())
	})

	It("should create the default services", func() {
		s := MakeBuilder().WithoutRecording().Build()

		Expect(s.ID()).NotTo(BeEmpty())
		Expect(s.GetEngine()).NotTo(BeNil())
		Expect(s.GetRegistry()).NotTo(BeNil())
		Expect(s.GetDataRecorder()).To(BeNil())
		Expect(s.GetMonitor()).To(BeNil())
	})

	It("should log the events when asked", func() {
		buf := &bytes.Buffer{}
		s := MakeBuilder().
			WithoutRecording().
			WithEventLogger(log.New(buf, "", 0)).
			Build()
		populate(s)
		s.Start()

		Expect(s.RunUntil(10 * sim.Ms)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("-> Stimulus"))
	})
})

var _ = Describe("Simulation", func() {
	var (
		mockCtrl   *gomock.Controller
		simulation *Simulation
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		simulation = MakeBuilder().WithoutRecording().Build()
	})

	AfterEach(func() {
		simulation.Terminate()
		mockCtrl.Finish()
	})

	It("should register the parts of a node", func() {
		n, feeder := populate(simulation)

		Expect(simulation.Nodes()).To(ConsistOf(n))
		Expect(simulation.GetComponentByName("Node.SAE.Mem")).
			To(BeIdenticalTo(n.SAE.Memory()))
		Expect(simulation.GetComponentByName("Stimulus")).
			To(BeIdenticalTo(feeder))
		Expect(simulation.GetComponentByName("Nowhere")).To(BeNil())
		Expect(simulation.Components()).To(HaveLen(len(n.Components()) + 1))
	})

	It("should panic when a name is registered twice", func() {
		feeder := stimulus.MakeBuilder().
			WithEngine(simulation.GetEngine()).
			Build("Stimulus")
		simulation.RegisterComponent(feeder)

		Expect(func() { simulation.RegisterComponent(feeder) }).To(Panic())
	})

	It("should stop when the stimulus is exhausted", func() {
		populate(simulation)
		simulation.Start()

		Expect(simulation.Run()).To(Succeed())
		Expect(simulation.GetEngine().CurrentTime()).To(Equal(30 * sim.Ms))
		Expect(simulation.StopReason()).To(MatchError(stimulus.ErrExhausted))
	})

	It("should run until a given time without a stop reason", func() {
		populate(simulation)
		simulation.Start()

		Expect(simulation.RunUntil(15 * sim.Ms)).To(Succeed())
		Expect(simulation.GetEngine().CurrentTime()).To(Equal(15 * sim.Ms))
		Expect(simulation.StopReason()).To(BeNil())
	})

	It("should report processes left waiting as a deadlock", func() {
		handler := NewMockHandler(mockCtrl)
		set := simulation.GetRegistry().
			Create("Lonely", simulation.GetEngine())
		set.LModelToSEE.Wait(handler)

		err := simulation.Run()

		Expect(err).To(MatchError(ErrDeadlock))
		Expect(err.Error()).To(ContainSubstring("Lonely.LModelToSEE (1 waiting)"))
	})

	It("should not report a drained engine without waiters", func() {
		Expect(simulation.Run()).To(Succeed())
	})

	It("should deliver records to a tracer added later", func() {
		populate(simulation)

		collector := tracing.NewCollector(simulation.GetEngine())
		simulation.AddTracer(collector)

		simulation.Start()
		Expect(simulation.Run()).To(Succeed())

		Expect(collector.Transactions()).NotTo(BeEmpty())
		Expect(collector.Errors()).NotTo(BeEmpty())
		Expect(collector.Errors()[len(collector.Errors())-1].Kind).
			To(Equal(tracing.ErrorKindStimulus))
	})
})

var _ = Describe("Recording", func() {
	It("should store the transactions in the database", func() {
		path := filepath.Join(GinkgoT().TempDir(), "run")
		simulation := MakeBuilder().WithOutputFileName(path).Build()

		populate(simulation)
		simulation.Start()
		Expect(simulation.Run()).To(Succeed())
		simulation.Terminate()

		reader, err := datarecording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		tracing.MapTables(reader)

		_, total, err := reader.Query(context.Background(),
			tracing.TransactionTable, datarecording.QueryParams{Limit: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(BeNumerically(">", 0))
	})
})

var _ = Describe("Monitoring", func() {
	It("should track the stimulus progress", func() {
		simulation := MakeBuilder().WithoutRecording().WithMonitoring().Build()
		defer simulation.Terminate()

		populate(simulation)
		simulation.Start()
		Expect(simulation.Run()).To(Succeed())

		req := httptest.NewRequest(http.MethodGet, "/api/progress", nil)
		rec := httptest.NewRecorder()
		simulation.GetMonitor().Router().ServeHTTP(rec, req)

		var bars []struct {
			Name     string `json:"name"`
			Total    uint64 `json:"total"`
			Finished uint64 `json:"finished"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("Stimulus"))
		Expect(bars[0].Total).To(Equal(uint64(3)))
		Expect(bars[0].Finished).To(Equal(uint64(3)))
	})
})
