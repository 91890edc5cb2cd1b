// Package config loads the topology of a simulation, derives the key
// parameters of its nodes, and assembles the nodes into a simulation.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/propriosim/sim"
)

// Environment variables that override the topology file.
const (
	EnvQuantum         = "PROPRIOSIM_QUANTUM"
	EnvTriggerInterval = "PROPRIOSIM_TRIGGER_INTERVAL"
	EnvStimulus        = "PROPRIOSIM_STIMULUS"
)

// Config describes the nodes of a simulation and how they are connected.
type Config struct {
	Quantum         string `yaml:"quantum"`
	Until           string `yaml:"until"`
	TriggerInterval uint64 `yaml:"trigger_interval"`
	BusWidth        uint64 `yaml:"bus_width"`
	FIFOCapacity    int    `yaml:"fifo_capacity"`

	Stimulus Stimulus `yaml:"stimulus"`
	Nodes    []Node   `yaml:"nodes"`
	Links    []Link   `yaml:"links"`

	dir string
}

// Stimulus tells where the sensor values come from. A file takes precedence
// over inline values.
type Stimulus struct {
	File   string `yaml:"file"`
	Format string `yaml:"format"`
	Values []int  `yaml:"values"`
}

// Node describes one node. Zero values take the defaults.
type Node struct {
	Name       string `yaml:"name"`
	Sensors    *int   `yaml:"sensors"`
	OtherNodes *int   `yaml:"other_nodes"`
	Actuators  *int   `yaml:"actuators"`
	ExtActions *int   `yaml:"ext_actions"`

	DataLengths DataLengths `yaml:"data_lengths"`
	Datasets    Datasets    `yaml:"datasets"`

	// Latencies and Sizes replace derived values. The keys are listed in
	// LatencyKeys and SizeKeys.
	Latencies map[string]string `yaml:"latencies"`
	Sizes     map[string]uint64 `yaml:"sizes"`
}

// DataLengths are the block lengths, in bytes, moved by the processes.
type DataLengths struct {
	Sensor       uint64 `yaml:"sensor"`
	GVOCMonitor  uint64 `yaml:"gvoc_monitor"`
	GVOCSEE      uint64 `yaml:"gvoc_see"`
	LModelReport uint64 `yaml:"lmodel_report"`
	LModelResult uint64 `yaml:"lmodel_result"`
	SEEReport    uint64 `yaml:"see_report"`
	Action       uint64 `yaml:"action"`
}

// Datasets are the number of blocks each producer writes per cycle.
type Datasets struct {
	Sensor      int `yaml:"sensor"`
	GVOCMonitor int `yaml:"gvoc_monitor"`
	GVOCSEE     int `yaml:"gvoc_see"`
	Action      int `yaml:"action"`
}

// A Link connects the outgoing queue of an external action to the incoming
// queue of an other-node input of another node.
type Link struct {
	From      string `yaml:"from"`
	ExtAction int    `yaml:"ext_action"`
	To        string `yaml:"to"`
	OtherNode int    `yaml:"other_node"`
}

// Default values.
const (
	DefaultQuantum         = "10ms"
	DefaultTriggerInterval = 4
	DefaultBusWidth        = 4
	DefaultFIFOCapacity    = 8
	DefaultDataLength      = 4
	DefaultDatasets        = 1
	DefaultSensors         = 2
	DefaultOtherNodes      = 1
	DefaultActuators       = 1
	DefaultExtActions      = 1
)

// Default returns a configuration with a single default node.
func Default() *Config {
	c := &Config{
		Nodes: []Node{{Name: "Node"}},
	}
	c.applyDefaults()

	return c
}

// Load reads a topology file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}

	c.dir = filepath.Dir(path)

	return c, nil
}

// Parse reads a topology from a reader and fills in the defaults.
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	c := &Config{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(c); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode config")
	}

	if len(c.Nodes) == 0 {
		c.Nodes = []Node{{Name: "Node"}}
	}

	c.applyDefaults()

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Quantum == "" {
		c.Quantum = DefaultQuantum
	}

	if c.TriggerInterval == 0 {
		c.TriggerInterval = DefaultTriggerInterval
	}

	if c.BusWidth == 0 {
		c.BusWidth = DefaultBusWidth
	}

	if c.FIFOCapacity == 0 {
		c.FIFOCapacity = DefaultFIFOCapacity
	}

	for i := range c.Nodes {
		c.Nodes[i].applyDefaults(i, len(c.Nodes))
	}
}

func (n *Node) applyDefaults(index, numNodes int) {
	if n.Name == "" {
		n.Name = "Node"
		if numNodes > 1 {
			n.Name = sim.BuildNameWithIndex("", "Node", index)
		}
	}

	n.Sensors = intOr(n.Sensors, DefaultSensors)
	n.OtherNodes = intOr(n.OtherNodes, DefaultOtherNodes)
	n.Actuators = intOr(n.Actuators, DefaultActuators)
	n.ExtActions = intOr(n.ExtActions, DefaultExtActions)

	for _, l := range []*uint64{
		&n.DataLengths.Sensor,
		&n.DataLengths.GVOCMonitor,
		&n.DataLengths.GVOCSEE,
		&n.DataLengths.LModelReport,
		&n.DataLengths.LModelResult,
		&n.DataLengths.SEEReport,
		&n.DataLengths.Action,
	} {
		if *l == 0 {
			*l = DefaultDataLength
		}
	}

	for _, d := range []*int{
		&n.Datasets.Sensor,
		&n.Datasets.GVOCMonitor,
		&n.Datasets.GVOCSEE,
		&n.Datasets.Action,
	} {
		if *d == 0 {
			*d = DefaultDatasets
		}
	}
}

func intOr(v *int, def int) *int {
	if v != nil {
		return v
	}

	return &def
}

// ApplyEnv overrides the configuration with the environment. Values set in
// the process environment win over values read from the env files. Missing
// env files are skipped.
func (c *Config) ApplyEnv(envFiles ...string) error {
	env := make(map[string]string)

	for _, file := range envFiles {
		values, err := godotenv.Read(file)
		if os.IsNotExist(errors.Cause(err)) {
			continue
		}

		if err != nil {
			return errors.Wrapf(err, "read env file %s", file)
		}

		for k, v := range values {
			env[k] = v
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}

		v, ok := env[key]

		return v, ok
	}

	if v, ok := lookup(EnvQuantum); ok {
		c.Quantum = v
	}

	if v, ok := lookup(EnvTriggerInterval); ok {
		interval, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvTriggerInterval)
		}

		c.TriggerInterval = interval
	}

	if v, ok := lookup(EnvStimulus); ok {
		c.Stimulus.File = v
		c.dir = ""
	}

	return nil
}

// QuantumTime returns the parsed global quantum.
func (c *Config) QuantumTime() (sim.VTime, error) {
	q, err := sim.ParseVTime(c.Quantum)
	if err != nil {
		return 0, errors.Wrap(err, "quantum")
	}

	if q == 0 {
		return 0, errors.New("quantum must be positive")
	}

	return q, nil
}

// UntilTime returns the parsed simulation time limit. Zero means no limit.
func (c *Config) UntilTime() (sim.VTime, error) {
	if c.Until == "" {
		return 0, nil
	}

	t, err := sim.ParseVTime(c.Until)
	if err != nil {
		return 0, errors.Wrap(err, "until")
	}

	return t, nil
}

// StimulusPath returns the stimulus file path, resolved against the directory
// of the topology file.
func (c *Config) StimulusPath() string {
	if c.Stimulus.File == "" || filepath.IsAbs(c.Stimulus.File) {
		return c.Stimulus.File
	}

	return filepath.Join(c.dir, c.Stimulus.File)
}

// Node returns the node with the given name.
func (c *Config) Node(name string) (Node, bool) {
	for _, n := range c.Nodes {
		if n.Name == name {
			return n, true
		}
	}

	return Node{}, false
}
