package node

import (
	"fmt"
	"log"
)

// An Evaluator judges the sensed data read by the LModel.
type Evaluator interface {
	// EvaluateSensedData returns the new report status given the data read
	// from the SAE memory and the status of the read.
	EvaluateSensedData(data []byte, current ReportStatus) ReportStatus

	// Result fills the buffer that is sent to the SEE when an action is
	// needed.
	Result(buf []byte)
}

// Decision is the action the SEE dispatches and the IC4 selector of the
// target that should execute it.
type Decision struct {
	Data   []byte
	Target int
}

// A Decider chooses an action from the LModel result and the GVOC data.
type Decider interface {
	DecideAction(lmResult, gvocData []byte) Decision
}

// An Executor carries out the action written into an actuator or an external
// action. The data is only valid during the call.
type Executor interface {
	ExecuteDecision(name string, data []byte)
}

// A Reporter displays what the Monitor reads. The data is only valid during
// the call.
type Reporter interface {
	Display(source string, data []byte)
}

// A GoalProvider fills the GVOC data block sent to a target.
type GoalProvider interface {
	PrepareGoals(target string, buf []byte)
}

// Hooks bundles the pluggable logic of a node.
type Hooks struct {
	Evaluator    Evaluator
	Decider      Decider
	Executor     Executor
	Reporter     Reporter
	GoalProvider GoalProvider
}

// DefaultHooks returns hooks that keep the statuses untouched, send zeros to
// the first IC4 target, and write '1' as the goal.
func DefaultHooks() Hooks {
	return Hooks{
		Evaluator:    nopEvaluator{},
		Decider:      nopDecider{},
		Executor:     nopExecutor{},
		Reporter:     nopReporter{},
		GoalProvider: defaultGoals{},
	}
}

func (h Hooks) withDefaults() Hooks {
	d := DefaultHooks()

	if h.Evaluator == nil {
		h.Evaluator = d.Evaluator
	}

	if h.Decider == nil {
		h.Decider = d.Decider
	}

	if h.Executor == nil {
		h.Executor = d.Executor
	}

	if h.Reporter == nil {
		h.Reporter = d.Reporter
	}

	if h.GoalProvider == nil {
		h.GoalProvider = d.GoalProvider
	}

	return h
}

type nopEvaluator struct{}

func (nopEvaluator) EvaluateSensedData(_ []byte, s ReportStatus) ReportStatus {
	return s
}

func (nopEvaluator) Result([]byte) {}

type nopDecider struct{}

func (nopDecider) DecideAction(_, _ []byte) Decision {
	return Decision{}
}

type nopExecutor struct{}

func (nopExecutor) ExecuteDecision(string, []byte) {}

type nopReporter struct{}

func (nopReporter) Display(string, []byte) {}

type defaultGoals struct{}

func (defaultGoals) PrepareGoals(_ string, buf []byte) {
	if len(buf) > 0 {
		buf[0] = '1'
	}
}

// LogReporter prints what the Monitor reads.
type LogReporter struct {
	Logger *log.Logger
}

// Display prints the data with its source.
func (r LogReporter) Display(source string, data []byte) {
	r.Logger.Printf("monitor: %s report %s", source, printable(data))
}

// LogExecutor prints the executed actions.
type LogExecutor struct {
	Logger *log.Logger
}

// ExecuteDecision prints the action.
func (e LogExecutor) ExecuteDecision(name string, data []byte) {
	e.Logger.Printf("%s: execute %s", name, printable(data))
}

func printable(data []byte) string {
	end := len(data)
	for end > 0 && data[end-1] == 0 {
		end--
	}

	return fmt.Sprintf("%q", data[:end])
}
