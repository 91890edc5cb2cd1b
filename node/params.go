package node

import (
	"fmt"

	"github.com/sarchlab/propriosim/sim"
)

// Params are the construction parameters of a node. They are taken as given;
// the node never derives one parameter from another.
type Params struct {
	Quantum         sim.VTime
	TriggerInterval uint64
	BusWidth        uint64

	NumSensors    int
	NumOtherNodes int
	NumActuators  int
	NumExtActions int

	SensorDataLength      uint64
	SensorDatasets        int
	GVOCMonitorDataLength uint64
	GVOCMonitorDatasets   int
	GVOCSEEDataLength     uint64
	GVOCSEEDatasets       int
	LModelReportLength    uint64
	LModelResultLength    uint64
	SEEReportLength       uint64
	ActionDataLength      uint64
	ActionDatasets        int

	SAESize          uint64
	MonitorMemSize   uint64
	LModelReportSize uint64
	SEELModelMemSize uint64
	SEEGVOCMemSize   uint64
	SEEReportMemSize uint64
	ActuatorMemSize  uint64
	ExtActionMemSize uint64

	SAEReadLatency        sim.VTime
	SAEWriteLatency       sim.VTime
	MonitorLatency        sim.VTime
	LModelReadLatency     sim.VTime
	SEELModelWriteLatency sim.VTime
	SEEGVOCWriteLatency   sim.VTime
	SEEReportReadLatency  sim.VTime
	ActuatorWriteLatency  sim.VTime
	ExtActionWriteLatency sim.VTime
}

// NumIC1Initiators returns the number of components writing into the SAE.
func (p Params) NumIC1Initiators() int {
	return p.NumSensors + p.NumOtherNodes
}

// NumIC4Targets returns the number of components the SEE dispatches to.
func (p Params) NumIC4Targets() int {
	return p.NumActuators + p.NumExtActions
}

// Validate checks that the parameters describe a node that can be built.
func (p Params) Validate() error {
	if p.Quantum == 0 {
		return fmt.Errorf("quantum must be positive, got %s", p.Quantum)
	}

	if p.BusWidth == 0 {
		return fmt.Errorf("bus width must be positive")
	}

	if p.NumSensors < 0 || p.NumOtherNodes < 0 ||
		p.NumActuators < 0 || p.NumExtActions < 0 {
		return fmt.Errorf("component counts must not be negative")
	}

	if p.NumIC1Initiators() == 0 {
		return fmt.Errorf("a node needs at least one sensor or other node")
	}

	if p.NumIC4Targets() == 0 {
		return fmt.Errorf("a node needs at least one actuator or external action")
	}

	datasets := map[string]int{
		"sensor":       p.SensorDatasets,
		"GVOC monitor": p.GVOCMonitorDatasets,
		"GVOC SEE":     p.GVOCSEEDatasets,
		"action":       p.ActionDatasets,
	}
	for name, n := range datasets {
		if n <= 0 {
			return fmt.Errorf("%s datasets must be positive, got %d", name, n)
		}
	}

	return nil
}
