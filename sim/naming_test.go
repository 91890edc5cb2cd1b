package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Naming", func() {
	It("should parse indexed names", func() {
		name := ParseName("Node[0].Sensor[1]")
		Expect(name.Tokens[0].ElemName).To(Equal("Node"))
		Expect(name.Tokens[0].Index).To(Equal([]int{0}))
		Expect(name.Tokens[1].ElemName).To(Equal("Sensor"))
		Expect(name.Tokens[1].Index).To(Equal([]int{1}))
	})

	It("should reject invalid names", func() {
		Expect(func() { NameMustBeValid("") }).To(Panic())
		Expect(func() { NameMustBeValid("Node_0") }).To(Panic())
		Expect(func() { NameMustBeValid("node") }).To(Panic())
		Expect(func() { NameMustBeValid("Node[0") }).To(Panic())
		Expect(func() { NameMustBeValid("Node..SAE") }).To(Panic())
	})

	It("should accept valid names", func() {
		Expect(func() { NameMustBeValid("Node[2].LModel") }).NotTo(Panic())
	})

	It("should build names", func() {
		Expect(BuildName("", "Node")).To(Equal("Node"))
		Expect(BuildName("Node", "SEE")).To(Equal("Node.SEE"))
		Expect(BuildNameWithIndex("Node", "Actuator", 0)).
			To(Equal("Node.Actuator[0]"))
	})

	It("should validate component names", func() {
		Expect(NewComponentBase("Node.SAE").Name()).To(Equal("Node.SAE"))
		Expect(func() { NewComponentBase("bad name") }).To(Panic())
	})
})
