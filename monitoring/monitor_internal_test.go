package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/propriosim/node"
	"github.com/sarchlab/propriosim/sim"
)

type sampleStruct struct {
	count    int
	label    string
	next     *sampleStruct
	children []sampleStruct
}

func testParams() node.Params {
	q := 10 * sim.Ms

	return node.Params{
		Quantum: q, TriggerInterval: 2, BusWidth: 4,
		NumSensors: 1, NumActuators: 1,
		SensorDataLength: 4, SensorDatasets: 1,
		GVOCMonitorDataLength: 4, GVOCMonitorDatasets: 1,
		GVOCSEEDataLength: 4, GVOCSEEDatasets: 1,
		LModelReportLength: 4, LModelResultLength: 4, SEEReportLength: 4,
		ActionDataLength: 4, ActionDatasets: 1,
		SAESize: 4, MonitorMemSize: 4, LModelReportSize: 4,
		SEELModelMemSize: 4, SEEGVOCMemSize: 4, SEEReportMemSize: 4,
		ActuatorMemSize: 4, ExtActionMemSize: 4,
		SAEReadLatency: q, SAEWriteLatency: q, MonitorLatency: q,
		LModelReadLatency: q, SEELModelWriteLatency: q,
		SEEGVOCWriteLatency: q, SEEReportReadLatency: q,
		ActuatorWriteLatency: q, ExtActionWriteLatency: q,
	}
}

func get(h http.Handler, url string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	return rec
}

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		engine *sim.SerialEngine
		n      *node.Node
		h      http.Handler
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		n = node.MakeBuilder().
			WithEngine(engine).
			WithParams(testParams()).
			Build("Node")

		m = NewMonitor()
		m.RegisterEngine(engine)

		for _, c := range n.Components() {
			m.RegisterComponent(c)
		}

		h = m.Router()
	})

	It("should register the signals and processes of the components", func() {
		Expect(m.components).To(HaveLen(len(n.Components())))
		Expect(m.signals).To(HaveLen(4))
		Expect(m.processes).To(HaveLen(len(n.Processes())))
	})

	It("should list the components", func() {
		rec := get(h, "/api/list_components")

		var names []string
		Expect(json.Unmarshal(rec.Body.Bytes(), &names)).To(Succeed())
		Expect(names).To(ContainElements("Node.LModel", "Node.SAE.Mem"))
	})

	It("should tell the time in ms", func() {
		n.Start()
		Expect(engine.RunUntil(5 * sim.Ms)).To(Succeed())

		rec := get(h, "/api/now")

		var rsp map[string]float64
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp["now"]).To(BeNumerically("~", 5.0, 1e-9))
	})

	It("should list the waiting signals first", func() {
		n.Start()
		Expect(engine.RunUntil(sim.Ms)).To(Succeed())

		rec := get(h, "/api/hangdetector/signals?sort=waiters&limit=2")

		var rsp []signalRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp).To(HaveLen(2))
		Expect(rsp[0].Waiters).To(Equal(1))
	})

	It("should reject unknown sort methods", func() {
		rec := get(h, "/api/hangdetector/signals?sort=level")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should report the processes", func() {
		n.Start()
		Expect(engine.RunUntil(5 * sim.Ms)).To(Succeed())

		rec := get(h, "/api/processes")

		var rsp []processRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp).To(ContainElement(processRsp{
			Component: "Node.LModel",
			Process:   "C1",
			Cycles:    1,
		}))
	})

	It("should print a field of a component", func() {
		rec := get(h, "/api/value/Node.LModel/status")

		var rsp valueRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Value).To(Equal("11"))
	})

	It("should answer 404 for unknown components", func() {
		rec := get(h, "/api/component/Node.Nothing")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("Stimulus", 10)
		bar.IncrementInProgress(2)
		bar.MoveInProgressToFinished(1)

		rec := get(h, "/api/progress")
		Expect(rec.Body.String()).To(ContainSubstring(`"finished":1`))

		m.CompleteProgressBar(bar)
		Expect(m.progressBars).To(BeEmpty())
	})

	It("should walk int fields", func() {
		s := &sampleStruct{
			count: 1,
		}

		elem, err := m.walkFields(s, "count")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.Int))
		Expect(elem.Int()).To(Equal(int64(1)))
	})

	It("should walk string fields", func() {
		s := &sampleStruct{
			label: "abc",
		}

		elem, err := m.walkFields(s, "label")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.String))
		Expect(elem.String()).To(Equal("abc"))
	})

	It("should walk recursively", func() {
		s := &sampleStruct{
			next: &sampleStruct{
				count: 1,
			},
		}

		elem, err := m.walkFields(s, "next.count")

		Expect(err).To(BeNil())
		Expect(elem.Int()).To(Equal(int64(1)))
	})

	It("should walk slice recursively", func() {
		s := &sampleStruct{
			children: []sampleStruct{{
				children: []sampleStruct{
					{count: 1},
				},
			}, {}},
		}

		elem, err := m.walkFields(s, "children.0.children.0.count")

		Expect(err).To(BeNil())
		Expect(elem.Int()).To(Equal(int64(1)))
	})

	It("should fail on missing fields and bad indices", func() {
		s := &sampleStruct{children: []sampleStruct{{}}}

		_, err := m.walkFields(s, "missing")
		Expect(err).To(HaveOccurred())

		_, err = m.walkFields(s, "children.3")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("ProgressBar", func() {
	It("should follow a counter while the engine runs", func() {
		engine := sim.NewSerialEngine()
		bar := NewMonitor().CreateProgressBar("Work", 4)

		var done uint64
		TrackProgress(engine, bar, func() uint64 { return done })

		handler := sim.HandlerFunc(func(sim.Event) error {
			done++
			return nil
		})
		for i := 0; i < 2; i++ {
			engine.Schedule(sim.NewEventBase(sim.VTime(i)*sim.Ms, handler))
		}

		Expect(engine.Run()).To(Succeed())
		Expect(bar.Finished).To(Equal(uint64(2)))
		Expect(bar.Fraction()).To(BeNumerically("~", 0.5))
	})

	It("should not go beyond the total", func() {
		bar := &ProgressBar{Total: 2}
		bar.SetFinished(5)
		Expect(bar.Fraction()).To(Equal(1.0))
	})
})
