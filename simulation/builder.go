package simulation

import (
	"log"

	"github.com/rs/xid"

	"github.com/sarchlab/propriosim/datarecording"
	"github.com/sarchlab/propriosim/monitoring"
	"github.com/sarchlab/propriosim/notify"
	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	engine   sim.Engine
	registry *notify.Registry

	monitorOn   bool
	monitorPort int

	recordOn       bool
	outputFileName string
	traceStart     sim.VTime
	traceEnd       sim.VTime

	logger      *log.Logger
	eventLogger *log.Logger
}

// MakeBuilder creates a new builder. Recording is on and monitoring is off
// by default.
func MakeBuilder() Builder {
	return Builder{
		recordOn: true,
	}
}

// WithEngine sets the engine to use. A serial engine is created otherwise.
func (b Builder) WithEngine(e sim.Engine) Builder {
	b.engine = e
	return b
}

// WithRegistry sets the event registry the nodes share.
func (b Builder) WithRegistry(r *notify.Registry) Builder {
	b.registry = r
	return b
}

// WithMonitoring turns on the monitoring server.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithoutRecording sets the simulation to not store traces in a database.
func (b Builder) WithoutRecording() Builder {
	b.recordOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
// The recorder appends the ".sqlite3" extension.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithTraceTimeRange limits the recorded records to the given time range. A
// zero end means no upper bound.
func (b Builder) WithTraceTimeRange(start, end sim.VTime) Builder {
	b.traceStart = start
	b.traceEnd = end

	return b
}

// WithLogTracer prints every record with the given logger.
func (b Builder) WithLogTracer(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// WithEventLogger prints every event the engine handles.
func (b Builder) WithEventLogger(logger *log.Logger) Builder {
	b.eventLogger = logger
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.recordOn && b.outputFileName != "" {
		panic("output file cannot be set when recording is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:            xid.New().String(),
		engine:        b.engine,
		registry:      b.registry,
		compNameIndex: make(map[string]int),
	}

	if s.engine == nil {
		s.engine = sim.NewSerialEngine()
	}

	if s.registry == nil {
		s.registry = notify.NewRegistry()
	}

	if b.eventLogger != nil {
		s.engine.AcceptHook(sim.NewEventLogger(b.eventLogger))
	}

	if b.recordOn {
		b.buildRecorder(s)
	}

	if b.logger != nil {
		s.tracers = append(s.tracers, tracing.NewLogTracer(b.logger, s.engine))
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}

		s.monitor.RegisterEngine(s.engine)
		s.monitor.StartServer()
	}

	return s
}

func (b Builder) buildRecorder(s *Simulation) {
	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "propriosim_" + s.id
	}

	s.dataRecorder = datarecording.New(outputPath)

	dbTracer := tracing.NewDBTracer(s.engine, s.dataRecorder)
	dbTracer.SetTimeRange(b.traceStart, b.traceEnd)

	s.dbTracer = dbTracer
	s.tracers = append(s.tracers, dbTracer)
}
