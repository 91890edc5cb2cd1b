package config

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/sarchlab/propriosim/node"
	"github.com/sarchlab/propriosim/sim"
)

// Keys of the latency overrides.
const (
	LatencySAERead        = "sae_read"
	LatencySAEWrite       = "sae_write"
	LatencyMonitor        = "monitor"
	LatencyLModelRead     = "lmodel_read"
	LatencySEELModelWrite = "see_lmodel_write"
	LatencySEEGVOCWrite   = "see_gvoc_write"
	LatencySEEReportRead  = "see_report_read"
	LatencyActuatorWrite  = "actuator_write"
	LatencyExtActionWrite = "ext_action_write"
)

// Keys of the memory size overrides.
const (
	SizeSAE          = "sae"
	SizeMonitor      = "monitor"
	SizeLModelReport = "lmodel_report"
	SizeSEELModel    = "see_lmodel"
	SizeSEEGVOC      = "see_gvoc"
	SizeSEEReport    = "see_report"
	SizeActuator     = "actuator"
	SizeExtAction    = "ext_action"
)

// LatencyKeys lists the valid latency override keys.
var LatencyKeys = []string{
	LatencySAERead, LatencySAEWrite, LatencyMonitor, LatencyLModelRead,
	LatencySEELModelWrite, LatencySEEGVOCWrite, LatencySEEReportRead,
	LatencyActuatorWrite, LatencyExtActionWrite,
}

// SizeKeys lists the valid memory size override keys.
var SizeKeys = []string{
	SizeSAE, SizeMonitor, SizeLModelReport, SizeSEELModel, SizeSEEGVOC,
	SizeSEEReport, SizeActuator, SizeExtAction,
}

// BurstLength returns the number of bus beats needed to move a block.
func BurstLength(dataLength, busWidth uint64) uint64 {
	return (dataLength + busWidth - 1) / busWidth
}

// perAccess splits the quantum evenly over a number of accesses.
func perAccess(q sim.VTime, accesses uint64) sim.VTime {
	return q / sim.VTime(accesses)
}

// Derive computes the construction parameters of a node. Latencies are set
// so that every producer fits its accesses of a cycle into one quantum. Sizes
// hold one cycle worth of blocks. Explicit overrides replace derived values.
func (c *Config) Derive(n Node) (node.Params, error) {
	q, err := c.QuantumTime()
	if err != nil {
		return node.Params{}, err
	}

	if c.BusWidth == 0 {
		return node.Params{}, errors.New("bus width must be positive")
	}

	p := node.Params{
		Quantum:         q,
		TriggerInterval: c.TriggerInterval,
		BusWidth:        c.BusWidth,

		NumSensors:    *n.Sensors,
		NumOtherNodes: *n.OtherNodes,
		NumActuators:  *n.Actuators,
		NumExtActions: *n.ExtActions,

		SensorDataLength:      n.DataLengths.Sensor,
		SensorDatasets:        n.Datasets.Sensor,
		GVOCMonitorDataLength: n.DataLengths.GVOCMonitor,
		GVOCMonitorDatasets:   n.Datasets.GVOCMonitor,
		GVOCSEEDataLength:     n.DataLengths.GVOCSEE,
		GVOCSEEDatasets:       n.Datasets.GVOCSEE,
		LModelReportLength:    n.DataLengths.LModelReport,
		LModelResultLength:    n.DataLengths.LModelResult,
		SEEReportLength:       n.DataLengths.SEEReport,
		ActionDataLength:      n.DataLengths.Action,
		ActionDatasets:        n.Datasets.Action,
	}

	if err := p.Validate(); err != nil {
		return node.Params{}, err
	}

	deriveLatencies(&p)
	deriveSizes(&p)

	if err := applyLatencyOverrides(&p, n.Latencies); err != nil {
		return node.Params{}, err
	}

	if err := applySizeOverrides(&p, n.Sizes); err != nil {
		return node.Params{}, err
	}

	return p, nil
}

func deriveLatencies(p *node.Params) {
	w := p.BusWidth
	initiators := uint64(p.NumIC1Initiators())
	sensorDS := uint64(p.SensorDatasets)

	p.SAEWriteLatency = perAccess(p.Quantum,
		sensorDS*BurstLength(p.SensorDataLength, w))
	p.SAEReadLatency = p.SAEWriteLatency / sim.VTime(initiators)

	p.MonitorLatency = perAccess(p.Quantum,
		uint64(p.GVOCMonitorDatasets)*BurstLength(p.GVOCMonitorDataLength, w))
	p.SEEGVOCWriteLatency = perAccess(p.Quantum,
		uint64(p.GVOCSEEDatasets)*BurstLength(p.GVOCSEEDataLength, w))

	perSensedBlock := func(dataLength uint64) sim.VTime {
		return perAccess(p.Quantum,
			sensorDS*initiators*BurstLength(dataLength, w))
	}

	p.LModelReadLatency = perSensedBlock(p.LModelReportLength)
	p.SEELModelWriteLatency = perSensedBlock(p.LModelResultLength)
	p.SEEReportReadLatency = perSensedBlock(p.SEEReportLength)
	p.ActuatorWriteLatency = perSensedBlock(p.ActionDataLength)
	p.ExtActionWriteLatency = perSensedBlock(p.ActionDataLength)
}

func deriveSizes(p *node.Params) {
	p.SAESize = uint64(p.SensorDatasets*p.NumIC1Initiators()) *
		p.SensorDataLength
	p.MonitorMemSize = p.GVOCMonitorDataLength * uint64(p.GVOCMonitorDatasets)
	p.LModelReportSize = p.LModelReportLength
	p.SEELModelMemSize = p.LModelResultLength
	p.SEEGVOCMemSize = p.GVOCSEEDataLength * uint64(p.GVOCSEEDatasets)
	p.SEEReportMemSize = p.SEEReportLength
	p.ActuatorMemSize = p.ActionDataLength * uint64(p.ActionDatasets)
	p.ExtActionMemSize = p.ActuatorMemSize
}

func latencyField(p *node.Params, key string) *sim.VTime {
	switch key {
	case LatencySAERead:
		return &p.SAEReadLatency
	case LatencySAEWrite:
		return &p.SAEWriteLatency
	case LatencyMonitor:
		return &p.MonitorLatency
	case LatencyLModelRead:
		return &p.LModelReadLatency
	case LatencySEELModelWrite:
		return &p.SEELModelWriteLatency
	case LatencySEEGVOCWrite:
		return &p.SEEGVOCWriteLatency
	case LatencySEEReportRead:
		return &p.SEEReportReadLatency
	case LatencyActuatorWrite:
		return &p.ActuatorWriteLatency
	case LatencyExtActionWrite:
		return &p.ExtActionWriteLatency
	default:
		return nil
	}
}

func sizeField(p *node.Params, key string) *uint64 {
	switch key {
	case SizeSAE:
		return &p.SAESize
	case SizeMonitor:
		return &p.MonitorMemSize
	case SizeLModelReport:
		return &p.LModelReportSize
	case SizeSEELModel:
		return &p.SEELModelMemSize
	case SizeSEEGVOC:
		return &p.SEEGVOCMemSize
	case SizeSEEReport:
		return &p.SEEReportMemSize
	case SizeActuator:
		return &p.ActuatorMemSize
	case SizeExtAction:
		return &p.ExtActionMemSize
	default:
		return nil
	}
}

func applyLatencyOverrides(p *node.Params, overrides map[string]string) error {
	for _, key := range sortedKeys(overrides) {
		field := latencyField(p, key)
		if field == nil {
			return errors.Errorf("unknown latency %q", key)
		}

		t, err := sim.ParseVTime(overrides[key])
		if err != nil {
			return errors.Wrapf(err, "latency %s", key)
		}

		*field = t
	}

	return nil
}

func applySizeOverrides(p *node.Params, overrides map[string]uint64) error {
	for _, key := range sortedKeys(overrides) {
		field := sizeField(p, key)
		if field == nil {
			return errors.Errorf("unknown memory size %q", key)
		}

		*field = overrides[key]
	}

	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// A KeyParam is a named, formatted construction parameter.
type KeyParam struct {
	Name  string
	Value string
}

// KeyParams lists the derived parameters of a node in a fixed order.
func KeyParams(p node.Params) []KeyParam {
	params := []KeyParam{
		{"global quantum", p.Quantum.String()},
		{"trigger interval", fmt.Sprint(p.TriggerInterval)},
		{"bus width", fmt.Sprint(p.BusWidth)},
		{"sensors", fmt.Sprint(p.NumSensors)},
		{"other nodes", fmt.Sprint(p.NumOtherNodes)},
		{"actuators", fmt.Sprint(p.NumActuators)},
		{"external actions", fmt.Sprint(p.NumExtActions)},
	}

	latency := p
	for _, key := range LatencyKeys {
		params = append(params, KeyParam{
			Name:  "latency " + key,
			Value: latencyField(&latency, key).String(),
		})
	}

	size := p
	for _, key := range SizeKeys {
		params = append(params, KeyParam{
			Name:  "memory " + key,
			Value: fmt.Sprint(*sizeField(&size, key)),
		})
	}

	return params
}
