package config

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/sarchlab/propriosim/sim"
	"github.com/sarchlab/propriosim/stimulus"
)

// Validate checks that the configuration describes a simulation that can be
// built and that ends.
func (c *Config) Validate() error {
	if _, err := c.QuantumTime(); err != nil {
		return err
	}

	until, err := c.UntilTime()
	if err != nil {
		return err
	}

	if c.FIFOCapacity <= 0 {
		return errors.Errorf("fifo capacity must be positive, got %d",
			c.FIFOCapacity)
	}

	if _, err := stimulus.ParseFormat(c.Stimulus.Format); err != nil {
		return err
	}

	for _, v := range c.Stimulus.Values {
		if v < 0 || v > 255 {
			return errors.Errorf("stimulus value %d out of range [0, 255]", v)
		}
	}

	if until == 0 && c.Stimulus.File == "" && len(c.Stimulus.Values) == 0 {
		return errors.New("the simulation never ends: " +
			"set a stimulus or a time limit")
	}

	if err := c.validateNodes(); err != nil {
		return err
	}

	return c.validateLinks()
}

func (c *Config) validateNodes() error {
	names := make(map[string]bool)

	for _, n := range c.Nodes {
		if err := nameMustBeValid(n.Name); err != nil {
			return err
		}

		if names[n.Name] {
			return errors.Errorf("node %s is defined twice", n.Name)
		}

		names[n.Name] = true

		if _, err := c.Derive(n); err != nil {
			return errors.Wrap(err, n.Name)
		}
	}

	return nil
}

func nameMustBeValid(name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(fmt.Sprint(r))
		}
	}()

	sim.NameMustBeValid(name)

	return nil
}

func (c *Config) validateLinks() error {
	usedExt := make(map[string]bool)
	usedOther := make(map[string]bool)

	for _, l := range c.Links {
		from, ok := c.Node(l.From)
		if !ok {
			return errors.Errorf("link from unknown node %q", l.From)
		}

		to, ok := c.Node(l.To)
		if !ok {
			return errors.Errorf("link to unknown node %q", l.To)
		}

		if l.From == l.To {
			return errors.Errorf("node %s cannot be linked to itself", l.From)
		}

		if l.ExtAction < 0 || l.ExtAction >= *from.ExtActions {
			return errors.Errorf("node %s has no external action %d",
				l.From, l.ExtAction)
		}

		if l.OtherNode < 0 || l.OtherNode >= *to.OtherNodes {
			return errors.Errorf("node %s has no other-node input %d",
				l.To, l.OtherNode)
		}

		ext := sim.BuildNameWithIndex(l.From, "ExtAction", l.ExtAction)
		if usedExt[ext] {
			return errors.Errorf("%s is linked twice", ext)
		}

		other := sim.BuildNameWithIndex(l.To, "OtherNode", l.OtherNode)
		if usedOther[other] {
			return errors.Errorf("%s is linked twice", other)
		}

		usedExt[ext] = true
		usedOther[other] = true
	}

	return nil
}
