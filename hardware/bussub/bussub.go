// Package bussub implements the Sub-68k's address-space dispatcher:
// PRG-RAM, WORD-RAM, the Mega-CD register set (CDC, CDDA transport,
// comm block, IRQ mask, graphics ASIC trigger), and the RF5C164 PCM
// chip, per spec.md §4.1 "Bus dispatch" and §4.5 "Mega-CD specifics".
package bussub

import (
	"github.com/segacore/mdcore/hardware/cd/cdc"
	"github.com/segacore/mdcore/hardware/cd/cdda"
	"github.com/segacore/mdcore/hardware/memory/bus"
	"github.com/segacore/mdcore/hardware/memory/memorymap"
	"github.com/segacore/mdcore/hardware/megacd"
	"github.com/segacore/mdcore/hardware/sound/pcm"
	"github.com/segacore/mdcore/logger"
)

var _ bus.CPUBus = (*Bus)(nil)

// Bus is the Sub-68k's view of the machine.
type Bus struct {
	PRGRAM  *megacd.PRGRAM
	WordRAM *megacd.WordRAM
	Comm    *megacd.CommBlock
	IRQ     *megacd.IRQState
	ASIC    *megacd.GraphicsASIC
	CDC     *cdc.CDC
	CDDA    *cdda.CDDA
	PCM     *pcm.PCM

	pcmEnabled  bool
	pcmChannels [8]pcmChannelShadow
}

// pcmChannelShadow mirrors the per-channel fields the RF5C164's control
// registers latch individually; pcm.PCM.WriteChannel wants all of them
// together, so the dispatcher keeps its own copy and reapplies it
// whenever one field changes.
type pcmChannelShadow struct {
	envelope, pan      uint8
	step               uint16
	loopAddr, waveBank uint8
	enabled            bool
}

func inRange(addr, start, end uint32) bool { return addr >= start && addr <= end }

func (b *Bus) ReadWord(address uint32, hi, lo bool) (uint16, error) {
	addr := address & 0xFFFFFF

	switch {
	case inRange(addr, memorymap.SubPRGRAMStart, memorymap.SubPRGRAMEnd):
		return uint16(b.PRGRAM.ReadByteSub(addr))<<8 | uint16(b.PRGRAM.ReadByteSub(addr+1)), nil

	case inRange(addr, memorymap.SubWordRAMStart, memorymap.SubWordRAMEnd):
		wo := addr - memorymap.SubWordRAMStart
		return uint16(b.WordRAM.ReadByteSub(wo))<<8 | uint16(b.WordRAM.ReadByteSub(wo+1)), nil

	case inRange(addr, memorymap.SubPCMStart, memorymap.SubPCMEnd):
		if b.PCM == nil {
			return 0xFFFF, nil
		}
		po := uint16(addr - memorymap.SubPCMStart)
		return uint16(b.PCM.ReadWave(po))<<8 | uint16(b.PCM.ReadWave(po+1)), nil

	case inRange(addr, memorymap.SubPCMRegStart, memorymap.SubPCMRegEnd):
		return uint16(b.readPCMControl(addr-memorymap.SubPCMRegStart)), nil

	case inRange(addr, memorymap.SubRegStart, memorymap.SubRegEnd):
		return b.readRegister(addr), nil
	}

	logger.Log("bussub", "read from unmapped address %#x", addr)
	return 0xFFFF, nil
}

func (b *Bus) WriteWord(address uint32, hi, lo bool, value uint16) error {
	addr := address & 0xFFFFFF

	switch {
	case inRange(addr, memorymap.SubPRGRAMStart, memorymap.SubPRGRAMEnd):
		if hi {
			b.PRGRAM.WriteByteSub(addr, uint8(value>>8))
		}
		if lo {
			b.PRGRAM.WriteByteSub(addr+1, uint8(value))
		}

	case inRange(addr, memorymap.SubWordRAMStart, memorymap.SubWordRAMEnd):
		wo := addr - memorymap.SubWordRAMStart
		if hi {
			b.WordRAM.WriteByteSub(wo, uint8(value>>8))
		}
		if lo {
			b.WordRAM.WriteByteSub(wo+1, uint8(value))
		}

	case inRange(addr, memorymap.SubPCMStart, memorymap.SubPCMEnd):
		if b.PCM != nil {
			po := uint16(addr - memorymap.SubPCMStart)
			if hi {
				b.PCM.WriteWave(po, uint8(value>>8))
			}
			if lo {
				b.PCM.WriteWave(po+1, uint8(value))
			}
		}

	case inRange(addr, memorymap.SubPCMRegStart, memorymap.SubPCMRegEnd):
		if lo {
			b.writePCMControl(addr-memorymap.SubPCMRegStart, uint8(value))
		}

	case inRange(addr, memorymap.SubRegStart, memorymap.SubRegEnd):
		b.writeRegister(addr, value)

	default:
		logger.Log("bussub", "write to unmapped address %#x", addr)
	}
	return nil
}

// PCM control register offsets, relative to SubPCMRegStart: one chip
// enable bit, one bank-select byte, then eight 8-byte-wide per-channel
// blocks (envelope, pan, step hi/lo, loop address, wave bank, enable).
const (
	pcmRegEnable     = 0x00
	pcmRegBankSelect = 0x01
	pcmRegChannel0   = 0x10
	pcmChannelStride = 0x08
)

func (b *Bus) readPCMControl(off uint32) uint8 {
	switch {
	case off == pcmRegEnable:
		if b.pcmEnabled {
			return 1
		}
		return 0
	case off >= pcmRegChannel0:
		ch, field := (off-pcmRegChannel0)/pcmChannelStride, (off-pcmRegChannel0)%pcmChannelStride
		if int(ch) >= len(b.pcmChannels) {
			return 0
		}
		c := &b.pcmChannels[ch]
		switch field {
		case 0:
			return c.envelope
		case 1:
			return c.pan
		case 2:
			return uint8(c.step >> 8)
		case 3:
			return uint8(c.step)
		case 4:
			return c.loopAddr
		case 5:
			return c.waveBank
		case 6:
			if c.enabled {
				return 1
			}
		}
	}
	return 0
}

func (b *Bus) writePCMControl(off uint32, v uint8) {
	switch {
	case off == pcmRegEnable:
		b.pcmEnabled = v&1 != 0
		if b.PCM != nil {
			b.PCM.SetEnabled(b.pcmEnabled)
		}
	case off == pcmRegBankSelect:
		if b.PCM != nil {
			b.PCM.SelectBank(v)
		}
	case off >= pcmRegChannel0:
		ch, field := (off-pcmRegChannel0)/pcmChannelStride, (off-pcmRegChannel0)%pcmChannelStride
		if int(ch) >= len(b.pcmChannels) {
			return
		}
		c := &b.pcmChannels[ch]
		switch field {
		case 0:
			c.envelope = v
		case 1:
			c.pan = v
		case 2:
			c.step = uint16(v)<<8 | c.step&0xFF
		case 3:
			c.step = c.step&0xFF00 | uint16(v)
		case 4:
			c.loopAddr = v
		case 5:
			c.waveBank = v
		case 6:
			c.enabled = v&1 != 0
		}
		if b.PCM != nil {
			b.PCM.WriteChannel(int(ch), c.envelope, c.pan, c.step, c.loopAddr, c.waveBank, c.enabled)
		}
	}
}

// Sub-68k register offsets, relative to SubRegStart (0xFF8000), per
// spec.md §4.5.
const (
	regReset        = 0x0000
	regMemoryMode   = 0x0002
	regCDCMode      = 0x0004
	regCDCHostData  = 0x0008
	regStopWatch    = 0x000C
	regCommFlag     = 0x000E
	regCommCmdBase  = 0x0010 // mirrors Main's command words, read-only to Sub
	regCommStatBase = 0x0020 // Sub writes status words here
	regCDCDMAAddr   = 0x000A
	regStampMapAddr = 0x0058
	regTraceRAMAddr = 0x0066
	regStampSize    = 0x0068
	regImgBufVSize  = 0x006A
	regImgBufStart  = 0x006C
	regImgBufOffset = 0x006E
	regImgBufHDot   = 0x0070
	regImgBufVDot   = 0x0072
	regTraceVector  = 0x0074
	regTimerWINT3   = 0x0030
	regIRQMask      = 0x0032
)

// cdcDestination maps the real hardware's raw 3-bit device-destination
// encoding (written to regCDCMode's high byte) onto this module's own
// cdc.Destination enum, whose values don't numerically coincide.
func cdcDestination(raw uint8) cdc.Destination {
	switch raw & 7 {
	case 2:
		return cdc.DestMain
	case 4:
		return cdc.DestPCM
	case 5:
		return cdc.DestPRGRAM
	case 7:
		return cdc.DestWordRAM
	default:
		return cdc.DestSub
	}
}

func (b *Bus) readRegister(addr uint32) uint16 {
	off := addr - memorymap.SubRegStart

	switch {
	case off == regCommFlag:
		return b.Comm.Flag
	case off >= regCommCmdBase && off < regCommCmdBase+16:
		return b.Comm.Command[(off-regCommCmdBase)/2]
	case off >= regCommStatBase && off < regCommStatBase+16:
		return b.Comm.Status[(off-regCommStatBase)/2]
	case off == regCDCHostData:
		return b.CDC.HostData()
	case off == regCDCMode:
		dsr, edt := b.CDC.Mode()
		var v uint16
		if dsr {
			v |= 1 << 14
		}
		if edt {
			v |= 1 << 15
		}
		return v
	case off == regImgBufVSize:
		if b.ASIC != nil {
			return uint16(b.ASIC.ImageBufferHeight)
		}
	case off == regIRQMask:
		return uint16(b.IRQ.EnableMask)
	}
	return 0
}

func (b *Bus) writeRegister(addr uint32, v uint16) {
	off := addr - memorymap.SubRegStart

	switch {
	case off == regCommFlag:
		b.Comm.Flag = (b.Comm.Flag & 0xFF00) | (v & 0xFF)
	case off >= regCommStatBase && off < regCommStatBase+16:
		b.Comm.Status[(off-regCommStatBase)/2] = v
	case off == regMemoryMode:
		ret := v&1 != 0
		mode1M := v&(1<<2) != 0
		b.WordRAM.SetMode1M(mode1M)
		if ret || mode1M {
			b.WordRAM.WriteRET(ret)
		}
	case off == regCDCMode:
		b.CDC.SetDeviceDestination(cdcDestination(uint8(v >> 8)))
		if v&(1<<7) != 0 {
			b.CDC.Ack()
		}
	case off == regCDCDMAAddr:
		b.CDC.SetDMAAddress(v)
	case off == regTimerWINT3:
		low := uint8(v)
		b.IRQ.SetIRQ3Reload(uint16(low), low != 0)
	case off == regIRQMask:
		b.IRQ.EnableMask = uint8(v)
		if v&(1<<1) == 0 {
			b.IRQ.TakeIRQ1()
		}
	case off == regStampMapAddr:
		if b.ASIC != nil {
			b.ASIC.StampMapBase = uint32(v)
		}
	case off == regTraceRAMAddr:
		if b.ASIC != nil {
			b.ASIC.TraceTableBase = uint32(v)
			b.ASIC.Render()
		}
	case off == regStampSize:
		if b.ASIC != nil {
			b.ASIC.DoubleDensityMap = v&0x2 != 0
			b.ASIC.RepeatingMap = v&0x1 != 0
		}
	case off == regImgBufVSize:
		if b.ASIC != nil {
			b.ASIC.ImageBufferHeight = int(v)
		}
	case off == regImgBufStart:
		if b.ASIC != nil {
			b.ASIC.ImageBufferBase = uint32(v)
		}
	}
}
