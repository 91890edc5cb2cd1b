package config

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/sarchlab/propriosim/node"
	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/simulation"
	"github.com/sarchlab/propriosim/stimulus"
)

// extDecider always targets the first external action, which comes right
// after the single actuator on the dispatch router.
type extDecider struct{}

func (extDecider) DecideAction(_, _ []byte) node.Decision {
	return node.Decision{Data: []byte{7}, Target: 1}
}

type executions struct {
	names []string
}

func (e *executions) ExecuteDecision(name string, _ []byte) {
	e.names = append(e.names, name)
}

var _ = Describe("Assemble", func() {
	var s *simulation.Simulation

	BeforeEach(func() {
		s = simulation.MakeBuilder().WithoutRecording().Build()
	})

	It("should build and link the nodes", func() {
		c := mustParse(twoNodes)

		a, err := c.Assemble(s, node.DefaultHooks())

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(a.Nodes).To(gomega.HaveLen(2))
		gomega.Expect(a.Nodes[0].Name()).To(gomega.Equal("Left"))
		gomega.Expect(a.Nodes[0].ID()).To(gomega.Equal(uint32(0)))
		gomega.Expect(a.Nodes[1].ID()).To(gomega.Equal(uint32(1)))
		gomega.Expect(s.GetRegistry().Nodes()).To(gomega.Equal([]string{"Left", "Right"}))

		gomega.Expect(a.Queue("Left.ExtAction[0].Queue")).
			To(gomega.BeIdenticalTo(a.Queue("Right.OtherNode[0].Queue")))
		gomega.Expect(a.Queue("Left.Sensor[1].Queue")).NotTo(gomega.BeNil())
		gomega.Expect(a.Queue("Right.Sensor[0].Queue")).NotTo(gomega.BeNil())
		gomega.Expect(a.Queue("Right.Sensor[1].Queue")).To(gomega.BeNil())
		gomega.Expect(a.Queue("Left.Sensor[0].Queue").Capacity()).To(gomega.Equal(4))

		gomega.Expect(a.Feeder).NotTo(gomega.BeNil())
		gomega.Expect(a.Feeder.NumValues()).To(gomega.Equal(3))
		gomega.Expect(s.GetComponentByName(StimulusName)).To(gomega.BeIdenticalTo(a.Feeder))
	})

	It("should run until the stimulus is exhausted", func() {
		c := mustParse(twoNodes)
		exec := &executions{}
		hooks := node.Hooks{Decider: extDecider{}, Executor: exec}

		a, err := c.Assemble(s, hooks)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(a.Run()).To(gomega.Succeed())

		gomega.Expect(s.GetEngine().CurrentTime()).To(gomega.Equal(30 * sim.Ms))
		gomega.Expect(s.StopReason()).To(gomega.MatchError(stimulus.ErrExhausted))
		gomega.Expect(a.Nodes[0].ExtActions[0].NumExecuted()).To(gomega.BeNumerically(">", 0))
		gomega.Expect(exec.names).To(gomega.ContainElement("Left.ExtAction[0]"))
	})

	It("should stop at the time limit", func() {
		c := mustParse("until: 25ms\nnodes: [{name: Solo}]")

		a, err := c.Assemble(s, node.DefaultHooks())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(a.Feeder).To(gomega.BeNil())
		gomega.Expect(a.Run()).To(gomega.Succeed())
		gomega.Expect(s.GetEngine().CurrentTime()).To(gomega.Equal(25 * sim.Ms))
	})

	It("should load the stimulus file", func() {
		dir := GinkgoT().TempDir()
		gomega.Expect(os.WriteFile(filepath.Join(dir, "in.txt"),
			[]byte("# sensor values\n1 2\n3 4\n"), 0o644)).To(gomega.Succeed())
		path := filepath.Join(dir, "topology.yaml")
		gomega.Expect(os.WriteFile(path,
			[]byte("stimulus:\n  file: in.txt\n"), 0o644)).To(gomega.Succeed())

		c, err := Load(path)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		a, err := c.Assemble(s, node.DefaultHooks())

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(a.Feeder.NumValues()).To(gomega.Equal(4))
	})

	It("should fail on a missing stimulus file", func() {
		c := mustParse("stimulus:\n  file: /nonexistent/in.txt\n")

		_, err := c.Assemble(s, node.DefaultHooks())

		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	It("should not build an invalid configuration", func() {
		c := mustParse("nodes: [{name: lower}]\nuntil: 1s")

		_, err := c.Assemble(s, node.DefaultHooks())

		gomega.Expect(err).To(gomega.HaveOccurred())
		gomega.Expect(s.Components()).To(gomega.BeEmpty())
	})
})
