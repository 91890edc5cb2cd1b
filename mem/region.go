package mem

import "fmt"

// RegionMapper splits an address space into equal, contiguous regions, one
// per initiator. Region i starts at i * (totalSize / numRegions).
type RegionMapper struct {
	totalSize  uint64
	numRegions int
}

// NewRegionMapper creates a RegionMapper.
func NewRegionMapper(totalSize uint64, numRegions int) RegionMapper {
	if numRegions <= 0 {
		panic("number of regions must be positive")
	}

	return RegionMapper{
		totalSize:  totalSize,
		numRegions: numRegions,
	}
}

// NumRegions returns the number of regions.
func (m RegionMapper) NumRegions() int {
	return m.numRegions
}

// RegionSize returns the size of every region.
func (m RegionMapper) RegionSize() uint64 {
	return m.totalSize / uint64(m.numRegions)
}

// Base returns the first address of region i.
func (m RegionMapper) Base(i int) uint64 {
	m.mustBeValidRegion(i)
	return uint64(i) * m.RegionSize()
}

// Forward converts an address local to region i to a global address.
func (m RegionMapper) Forward(i int, local uint64) uint64 {
	return m.Base(i) + local
}

// Reverse converts a global address back to an address local to region i.
func (m RegionMapper) Reverse(i int, global uint64) uint64 {
	return global - m.Base(i)
}

// Find returns the region that holds a global address.
func (m RegionMapper) Find(global uint64) int {
	size := m.RegionSize()
	if size == 0 {
		return 0
	}

	return min(int(global/size), m.numRegions-1)
}

func (m RegionMapper) mustBeValidRegion(i int) {
	if i < 0 || i >= m.numRegions {
		panic(fmt.Sprintf("region %d out of [0, %d)", i, m.numRegions))
	}
}
