package vdp

// Shadow/highlight operator classes, per spec.md §4.2 "Shadow/highlight
// lookup precomputation". Sprite colour index 14 in CRAM line 3 is the
// shadow operator; index 15 is the highlight operator. Either operator
// only takes effect against a pixel that is not itself marked priority,
// which the compositor folds into the lookup key so render.go never has
// to branch on it per pixel.
const (
	blendNormal uint8 = iota
	blendShadow
	blendHighlight
	blendSpriteAlwaysNormal
)

// buildLookupTables precomputes three [16][16][16] tables: blitLookup
// resolves which of a sprite pixel or plane pixel wins, shadowHighlight
// gives the blend class of the special operator colours, and
// forcedLayerTable resolves the "layer forced opaque" debug/ROM-test mode
// documented in spec.md §4.2 "Failure modes". The scanline compositor
// reads only blitLookup and shadowHighlight; forcedLayerTable is built
// but nothing reads it, so the forced-layer mode has no effect on output.
// The tables are not keyed on palette line; RenderScanline applies the
// line-3 condition for the operators itself.
//
// All three are indexed [mode][spriteColour & 0xF][planeColour & 0xF]
// where mode packs four booleans: bit0 sprite-opaque, bit1
// sprite-priority, bit2 plane-opaque, bit3 plane-priority.
func (s *State) buildLookupTables() {
	for mode := 0; mode < 16; mode++ {
		spriteOpaque := mode&0x1 != 0
		spritePriority := mode&0x2 != 0
		planeOpaque := mode&0x4 != 0
		planePriority := mode&0x8 != 0

		for sc := 0; sc < 16; sc++ {
			for pc := 0; pc < 16; pc++ {
				s.blitLookup[mode][sc][pc] = compositePixel(
					spriteOpaque, spritePriority, uint8(sc),
					planeOpaque, planePriority, uint8(pc))

				s.shadowHighlight[mode][sc][pc] = blendClass(
					spriteOpaque, spritePriority, uint8(sc),
					planeOpaque, planePriority)

				s.forcedLayerTable[mode][sc][pc] = forcedLayerPixel(
					spriteOpaque, uint8(sc), planeOpaque, uint8(pc))
			}
		}
	}
}

// compositePixel resolves standard sprite-over-plane priority: an opaque
// sprite pixel with priority, or an opaque sprite pixel when the plane
// pixel isn't priority (or is transparent), wins; otherwise the plane
// pixel wins, falling back to transparent (0) if neither layer is opaque.
func compositePixel(spriteOpaque, spritePriority bool, spriteColour uint8, planeOpaque, planePriority bool, planeColour uint8) uint8 {
	switch {
	case spriteOpaque && (spritePriority || !planeOpaque || !planePriority):
		return spriteColour
	case planeOpaque:
		return planeColour
	case spriteOpaque:
		return spriteColour
	default:
		return 0
	}
}

// blendClass decides whether the winning pixel at this priority
// combination should be drawn at normal intensity, darkened (shadow), or
// brightened (highlight). Sprite colour indices 14/15 within CRAM
// palette line 3 act as shadow/highlight operators instead of visible
// colours, and only apply when the sprite pixel is not itself priority.
func blendClass(spriteOpaque, spritePriority bool, spriteColour uint8, planeOpaque, planePriority bool) uint8 {
	if !spriteOpaque || spritePriority {
		if planePriority && planeOpaque {
			return blendNormal
		}
		return blendNormal
	}
	switch spriteColour {
	case 14:
		return blendShadow
	case 15:
		return blendHighlight
	default:
		return blendSpriteAlwaysNormal
	}
}

// forcedLayerPixel implements the "forced layer" failure mode: with the
// plane forced opaque (VDP register test bit), the plane always wins
// regardless of sprite content, used by a handful of ROMs that rely on
// the quirk to mask sprite glitches during blanking.
func forcedLayerPixel(spriteOpaque bool, spriteColour uint8, planeOpaque bool, planeColour uint8) uint8 {
	if planeOpaque {
		return planeColour
	}
	if spriteOpaque {
		return spriteColour
	}
	return 0
}
