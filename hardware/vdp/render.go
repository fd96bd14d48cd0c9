package vdp

// tile sampling: each tile is 8x8 pixels, 4 bits/pixel, 32 bytes per tile,
// addressed from VRAM the same way sprite/plane pattern name tables are.
func (s *State) tilePixel(pattern uint16, hFlip, vFlip bool, col, row int) (colour uint8, opaque bool) {
	if hFlip {
		col = 7 - col
	}
	if vFlip {
		row = 7 - row
	}
	base := uint32(pattern&0x7FF) * 32
	off := s.vramAddress(base + uint32(row*4+col/2))
	if int(off) >= len(s.VRAM) {
		return 0, false
	}
	b := s.VRAM[off]
	var nibble uint8
	if col%2 == 0 {
		nibble = b >> 4
	} else {
		nibble = b & 0x0F
	}
	return nibble, nibble != 0
}

type planeSample struct {
	colour   uint8 // 0..15, palette-local
	line     uint8 // 0..3, palette line
	priority bool
	opaque   bool
}

// planePixelAt samples one of the two scrollable background planes at
// screen column x, scanline y, using the nametable at base and the given
// per-pixel scroll offsets (spec.md §4.2 "render_scanline" plane fetch).
func (s *State) planePixelAt(base uint32, x, y, hScroll, vScroll int) planeSample {
	width := 64 // cells; every plane is read as 64x32 cells, whatever its configured size
	col := (x + hScroll) / 8 % width
	if col < 0 {
		col += width
	}
	totalRow := y + vScroll
	row := (totalRow / 8) % 32
	if row < 0 {
		row += 32
	}

	entryAddr := base + uint32(row*width*2+col*2)
	off := s.vramAddress(entryAddr)
	if int(off)+1 >= len(s.VRAM) {
		return planeSample{}
	}
	entry := uint16(s.VRAM[off])<<8 | uint16(s.VRAM[off+1])

	pattern := entry & 0x7FF
	hFlip := entry&0x0800 != 0
	vFlip := entry&0x1000 != 0
	line := uint8((entry >> 13) & 0x3)
	priority := entry&0x8000 != 0

	pixCol := (x + hScroll) % 8
	if pixCol < 0 {
		pixCol += 8
	}
	pixRow := totalRow % 8
	if pixRow < 0 {
		pixRow += 8
	}

	colour, opaque := s.tilePixel(pattern, hFlip, vFlip, pixCol, pixRow)
	return planeSample{colour: colour, line: line, priority: priority, opaque: opaque}
}

// TickHCounter advances the horizontal-interrupt line counter by one
// scanline and reports whether HInt should fire: the counter reloads
// from HIntInterval and requests an interrupt each time it underflows,
// per spec.md §4.2's H-interrupt register (10).
func (s *State) TickHCounter() bool {
	if s.hIntCounter == 0 {
		s.hIntCounter = s.HIntInterval
		return s.HIntEnabled
	}
	s.hIntCounter--
	return false
}

// RenderScanline composites background, both scroll planes, the window,
// and the sprite plane for one line and hands the result to the
// Frontend, per spec.md §4.2 "render_scanline". Each output byte is a
// CRAM index (bits 0..5) with the blend class (normal, shadow, highlight
// or sprite-always-normal, see lookup.go) packed into bits 6..7 so the frontend can apply the intensity without
// the VDP needing to know anything about the frontend's pixel format.
func (s *State) RenderScanline(y int) {
	width := ScreenWidth
	if !s.H40 {
		width = 256
	}

	maxSprites := MaxSpritesPerLine
	if !s.H40 {
		maxSprites = 16
	}

	hScrollA, hScrollB := s.readHScroll(y)

	sprites := s.spritesOnLine(y)
	s.compositeSpriteRow(y, sprites, maxSprites, width)

	for x := 0; x < width; x++ {
		vScrollA, vScrollB := s.vScrollFor(x)
		planeB := s.planePixelAt(s.planeBBase, x, y, hScrollB, vScrollB)
		planeA := s.planePixelAt(s.planeABase, x, y, hScrollA, vScrollA)

		if s.inWindow(x, y) {
			planeA = s.planePixelAt(s.windowBase, x, y, 0, 0)
		}

		spriteOpaque := s.spriteHit[x]

		mode := packMode(spriteOpaque, s.spritePri[x], planeA.opaque, planeA.priority)
		fromA := s.blitLookup[mode][s.spritePal[x]][planeA.colour]
		blend := s.shadowHighlight[mode][s.spritePal[x]][planeA.colour]

		var finalColour, finalLine uint8
		switch {
		case fromA != 0 && fromA == s.spritePal[x] && spriteOpaque && !(planeA.opaque && planeA.priority && !s.spritePri[x]):
			finalColour, finalLine = s.spritePal[x], s.spriteLine[x]
		case fromA != 0:
			finalColour, finalLine = planeA.colour, planeA.line
		default:
			modeB := packMode(spriteOpaque, s.spritePri[x], planeB.opaque, planeB.priority)
			fromB := s.blitLookup[modeB][s.spritePal[x]][planeB.colour]
			blend = s.shadowHighlight[modeB][s.spritePal[x]][planeB.colour]
			switch {
			case fromB != 0 && spriteOpaque && (s.spritePri[x] || !planeB.opaque || !planeB.priority):
				finalColour, finalLine = s.spritePal[x], s.spriteLine[x]
			case fromB != 0:
				finalColour, finalLine = planeB.colour, planeB.line
			default:
				finalColour = s.BackgroundColourIndex & 0x0F
				finalLine = (s.BackgroundColourIndex >> 4) & 0x3
				blend = blendNormal
			}
		}

		if (blend == blendShadow || blend == blendHighlight) && s.spriteLine[x] != 3 {
			blend = blendSpriteAlwaysNormal // operators are line-3 colours only
		}

		cramIndex := (finalLine << 4) | (finalColour & 0x0F)
		s.lineBuf[x] = (blend << 6) | (cramIndex & 0x3F)
	}

	s.FE.ScanlineRendered(y, s.lineBuf[:width], 0, width, ScreenWidth, ScreenHeightNTSC)
}

func packMode(spriteOpaque, spritePriority, planeOpaque, planePriority bool) int {
	m := 0
	if spriteOpaque {
		m |= 0x1
	}
	if spritePriority {
		m |= 0x2
	}
	if planeOpaque {
		m |= 0x4
	}
	if planePriority {
		m |= 0x8
	}
	return m
}

// compositeSpriteRow resolves which sprite, if any, wins at each column
// of the line, honouring per-line and per-line-pixel budget cutoffs
// (spec.md §4.2 "render_scanline" sprite plane masking).
func (s *State) compositeSpriteRow(y int, entries []spriteCacheEntry, maxSprites, width int) {
	for x := 0; x < width; x++ {
		s.spritePal[x] = 0
		s.spritePri[x] = false
		s.spriteHit[x] = false
	}

	drawn := 0
	pixelBudget := width

	for _, e := range entries {
		if drawn >= maxSprites || pixelBudget <= 0 {
			break
		}
		attr := s.readSpriteAttr(e.tableIndex)
		drawn++

		entryAddr := s.spriteBase + uint32(e.tableIndex*spriteEntrySize+4)
		off := s.vramAddress(entryAddr)
		var patternWord uint16
		if int(off)+1 < len(s.VRAM) {
			patternWord = uint16(s.VRAM[off])<<8 | uint16(s.VRAM[off+1])
		}
		priority := patternWord&0x8000 != 0
		line := uint8((patternWord >> 13) & 0x3)
		hFlip := patternWord&0x0800 != 0
		vFlip := patternWord&0x1000 != 0
		baseTile := patternWord & 0x7FF

		row := e.yInSprite
		if vFlip {
			row = attr.height*8 - 1 - row
		}
		tileRow := row / 8
		rowInTile := row % 8

		for col := 0; col < attr.width*8; col++ {
			sx := attr.x - 128 + col
			if sx < 0 || sx >= width {
				continue
			}
			if s.spriteHit[sx] {
				continue // first sprite drawn at a column wins, later ones are masked
			}

			tileCol := col / 8
			colInTile := col % 8
			if hFlip {
				tileCol = attr.width - 1 - tileCol
			}

			tileIndex := baseTile + uint16(tileCol*attr.height+tileRow)
			colour, opaque := s.tilePixel(tileIndex, hFlip, vFlip, colInTile, rowInTile)
			if !opaque {
				continue
			}

			s.spritePal[sx] = colour
			s.spriteLine[sx] = line
			s.spritePri[sx] = priority
			s.spriteHit[sx] = true
			pixelBudget--
		}
	}
}

// readHScroll returns the per-plane horizontal scroll value for
// scanline y, honouring the horizontal scroll mode in Reg[11] (full
// screen, per-8-line, or per-line scrolling).
func (s *State) readHScroll(y int) (a, b int) {
	mode := s.Reg[11] & 0x3
	row := 0
	switch mode {
	case 0x2: // per-8-line
		row = (y / 8) * 8
	case 0x3: // per-line
		row = y
	}
	base := s.vramAddress(s.hScrollBase + uint32(row*4))
	if int(base)+3 >= len(s.VRAM) {
		return 0, 0
	}
	hsA := (uint16(s.VRAM[base])<<8 | uint16(s.VRAM[base+1])) & 0x3FF
	hsB := (uint16(s.VRAM[base+2])<<8 | uint16(s.VRAM[base+3])) & 0x3FF
	return -int(hsA), -int(hsB)
}

// vscrollTableOffset returns the VSRAM word offset vertical scroll is
// fetched from for a given tile pair, relative to the plane's own word
// (plane A at even offsets, plane B at odd). Reg[11] bit 2 (VSCR) selects
// between full-screen scrolling, where every tile pair reads the same
// pair of words, and 2-cell mode, where each 16-pixel-wide tile pair gets
// its own (spec.md §4.2 "render_scanline" vertical scroll fetch).
func (s *State) vscrollTableOffset(tilePair uint8) int {
	if s.Reg[11]&0x4 == 0 {
		return 0
	}
	return (int(tilePair) * 2) % len(s.VSRAM)
}

// vScrollFor returns plane A and B's vertical scroll for screen column x,
// reading the tile pair one column pair to the left of x's own. This
// replicates the real VDP's documented quirk of fetching a tile pair's
// scroll value one pair early, which leaves the leftmost tile pair of
// every 2-cell-scrolled line reading a stale (and, for tile pair zero,
// effectively garbage) VSRAM word.
func (s *State) vScrollFor(x int) (a, b int) {
	tilePair := uint8(x/16) - 1
	offset := s.vscrollTableOffset(tilePair)
	return int(s.VSRAM[offset%len(s.VSRAM)] & 0x3FF), int(s.VSRAM[(offset+1)%len(s.VSRAM)] & 0x3FF)
}

// inWindow reports whether screen column x, scanline y fall inside the
// window plane's region as configured by Reg[17]/Reg[18].
func (s *State) inWindow(x, y int) bool {
	wh := s.Reg[17]
	wv := s.Reg[18]

	right := wh&0x80 != 0
	wx := int(wh&0x1F) * 16
	down := wv&0x80 != 0
	wy := int(wv&0x1F) * 8

	inX := false
	if right {
		inX = x >= wx
	} else if wx > 0 {
		inX = x < wx
	}

	inY := false
	if down {
		inY = y >= wy
	} else if wy > 0 {
		inY = y < wy
	}

	return inX || inY
}
