package megacd

// stampSizeNormal is the width/height of one "normal" stamp in pixels; "double
// density" maps use 32x32 stamps over a 4096x4096 map instead of 256x256
// (spec.md §4.5 "Graphics ASIC").
const stampSizeNormal = 16
const stampSizeDouble = 32

// Rotation is the 2-bit rotation field of a stamp map entry.
type Rotation uint8

const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// TraceEntry is one 4-word row descriptor from the trace table, signed
// 3.13 fixed-point (spec.md §4.5 "Graphics ASIC").
type TraceEntry struct {
	StartX, StartY int32 // 3.13 fixed point
	DeltaX, DeltaY int32
}

// GraphicsASIC renders one output row's worth of stamp-mapped pixels at
// a time, driven by writing the trace-table-address register.
type GraphicsASIC struct {
	WordRAM *WordRAM
	IRQ     *IRQState

	StampMapBase    uint32
	TraceTableBase  uint32
	ImageBufferBase uint32
	ImageBufferWidth  int // in 8-pixel tile columns
	ImageBufferHeight int

	DoubleDensityMap bool
	RepeatingMap     bool
	IRQEnabled       bool
}

const fixedPointShift = 13

// Render executes spec.md §4.5's synchronous render: for every output
// row named by the trace table, step across image_buffer_width pixels
// sampling the stamp map, and pack the result 4 bits per pixel into the
// image buffer.
func (a *GraphicsASIC) Render() {
	rows := a.ImageBufferHeight
	for row := 0; row < rows; row++ {
		entry := a.readTraceEntry(row)
		a.renderRow(row, entry)
	}
	a.ImageBufferHeight = 0
	if a.IRQEnabled {
		a.IRQ.LatchIRQ1()
	}
}

func (a *GraphicsASIC) readTraceEntry(row int) TraceEntry {
	base := a.TraceTableBase + uint32(row*8)
	w := func(off uint32) int32 {
		hi := a.WordRAM.ReadByteSub(base + off)
		lo := a.WordRAM.ReadByteSub(base + off + 1)
		v := int16(uint16(hi)<<8 | uint16(lo))
		return int32(v)
	}
	return TraceEntry{StartX: w(0), StartY: w(2), DeltaX: w(4), DeltaY: w(6)}
}

func (a *GraphicsASIC) renderRow(row int, entry TraceEntry) {
	x, y := entry.StartX, entry.StartY
	widthPixels := a.ImageBufferWidth * 8

	for col := 0; col < widthPixels; col++ {
		colour := a.sampleStamp(x>>fixedPointShift, y>>fixedPointShift)
		a.writePixel(row, col, colour)
		x += entry.DeltaX
		y += entry.DeltaY
	}
}

// sampleStamp resolves the stamp map tile at (px, py) in the rendered
// output's coordinate space, then the pixel within that stamp, honouring
// repeat-on-edge (spec.md §4.5 "repeating_stamp_map flag").
func (a *GraphicsASIC) sampleStamp(px, py int32) uint8 {
	mapDim := int32(256)
	stampSize := int32(stampSizeNormal)
	if a.DoubleDensityMap {
		mapDim = 4096
		stampSize = stampSizeDouble
	}

	if a.RepeatingMap {
		px = wrapCoord(px, mapDim)
		py = wrapCoord(py, mapDim)
	} else if px < 0 || py < 0 || px >= mapDim || py >= mapDim {
		return 0
	}

	stampCol := px / stampSize
	stampRow := py / stampSize
	stampsPerRow := mapDim / stampSize

	mapBase := a.StampMapBase + uint32(stampRow*stampsPerRow+stampCol)*2
	hi := a.WordRAM.ReadByteSub(mapBase)
	lo := a.WordRAM.ReadByteSub(mapBase + 1)
	entry := uint16(hi)<<8 | uint16(lo)

	stampIndex := entry & 0x7FF
	if stampIndex == 0 {
		return 0 // transparent
	}
	rotation := Rotation((entry >> 11) & 0x3)
	hFlip := entry&0x2000 != 0

	inX := px % stampSize
	inY := py % stampSize
	inX, inY = applyRotation(inX, inY, stampSize, rotation)
	if hFlip {
		inX = stampSize - 1 - inX
	}

	stampBytes := stampSize * stampSize / 2
	stampAddr := uint32(stampIndex)*uint32(stampBytes) + uint32(inY*stampSize+inX)/2

	b := a.WordRAM.ReadByteSub(stampAddr)
	if inX%2 == 0 {
		return b >> 4
	}
	return b & 0x0F
}

func wrapCoord(v, size int32) int32 {
	v %= size
	if v < 0 {
		v += size
	}
	return v
}

func applyRotation(x, y, size int32, r Rotation) (int32, int32) {
	switch r {
	case Rotate90:
		return y, size - 1 - x
	case Rotate180:
		return size - 1 - x, size - 1 - y
	case Rotate270:
		return size - 1 - y, x
	default:
		return x, y
	}
}

// writePixel packs one 4-bit pixel into the image buffer, organized as
// 8-pixel-wide tile columns (spec.md §4.5 "Graphics ASIC" output layout).
func (a *GraphicsASIC) writePixel(row, col int, colour uint8) {
	tileCol := col / 8
	colInTile := col % 8
	addr := a.ImageBufferBase + uint32(row*a.ImageBufferWidth+tileCol)*4 + uint32(colInTile/2)
	b := a.WordRAM.ReadByteSub(addr)
	if colInTile%2 == 0 {
		b = (colour << 4) | (b & 0x0F)
	} else {
		b = (b & 0xF0) | (colour & 0x0F)
	}
	a.WordRAM.WriteByteSub(addr, b)
}
