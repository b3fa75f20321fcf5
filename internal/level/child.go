package level

// Child addresses a BSP child by index. The high bit selects a subsector.
type Child uint16

const subSectorBit Child = 0x8000

// NodeChild addresses node i.
func NodeChild(i int) Child { return Child(i) &^ subSectorBit }

// SubSectorChild addresses subsector i.
func SubSectorChild(i int) Child { return Child(i) | subSectorBit }

// IsSubSector reports whether c is a leaf.
func (c Child) IsSubSector() bool { return c&subSectorBit != 0 }

// Index returns the node or subsector index.
func (c Child) Index() int { return int(c &^ subSectorBit) }
