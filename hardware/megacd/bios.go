package megacd

import (
	"github.com/segacore/mdcore/hardware/cd/cdc"
	"github.com/segacore/mdcore/hardware/cd/cdda"
	"github.com/segacore/mdcore/hardware/sound/pcm"
	"github.com/segacore/mdcore/logger"
)

// Music service codes, spec.md §4.5 "BIOS-call trampoline".
const (
	svcMSCSTOP     = 0x02
	svcMSCPAUSEON  = 0x03
	svcMSCPAUSEOFF = 0x04
	svcMSCPLAY     = 0x11
	svcMSCPLAY1    = 0x12
	svcMSCPLAYR    = 0x13
)

// CD data service codes.
const (
	svcROMREAD  = 0x17
	svcROMSEEK  = 0x18
	svcROMREADN = 0x20
	svcROMREADE = 0x21
)

// Volume service codes.
const (
	svcFDRSET = 0x85
	svcFDRCHG = 0x86
)

// CDC service codes.
const (
	svcCDCSTART = 0x88
	svcCDCSTOP  = 0x89
	svcCDCSTAT  = 0x8A
	svcCDCREAD  = 0x8B
	svcCDCTRN   = 0x8C
	svcCDCACK   = 0x8D
)

// BRAM service codes occupy 0x00..0x08.
const svcBRAMMax = 0x08

// TrampolineEntries are the two fixed Sub-68k PC addresses the core
// intercepts (spec.md §4.5 "BIOS-call trampoline").
var TrampolineEntries = [2]uint32{0x5F16, 0x5F22}

// returnOpcode is the 68k "RTS" instruction the trampoline substitutes
// for whatever the BIOS ROM would otherwise have contained there.
const returnOpcode = 0x4E75

// Frontend is asked to perform the side effects a BIOS call requires
// that this core can't do purely by touching its own memory (disc seeks,
// file-backed BRAM operations).
type Frontend interface {
	SeekTrack(track int, mode cdda.PlayMode)
	SeekSector(sector uint32)
	BRAMOperation(op int, filename string) (result uint16, ok bool)
}

// Trampoline dispatches the services listed in spec.md §4.5.
type Trampoline struct {
	CDC     *cdc.CDC
	CDDA    *cdda.CDDA
	PRGRAM  *PRGRAM
	WordRAM *WordRAM
	PCM     *pcm.PCM
	FE      Frontend
	carry   bool // Sub-68k condition-code carry flag, set by CDC services
}

// IsEntry reports whether pc matches one of the two BIOS entry points.
func (t *Trampoline) IsEntry(pc uint32) bool {
	return pc == TrampolineEntries[0] || pc == TrampolineEntries[1]
}

// Intercept performs the service named by the low 16 bits of D0 and
// returns the RTS opcode the CPU should execute in its place, along
// with the carry flag services 0x88..0x8D communicate success/failure
// through.
func (t *Trampoline) Intercept(d0 uint32, a0 uint32, read func(addr uint32) uint16) (opcode uint16, carry bool) {
	service := uint16(d0)
	switch {
	case service <= svcBRAMMax:
		t.dispatchBRAM(service, a0, read)
	case service == svcMSCSTOP || service == svcMSCPAUSEON || service == svcMSCPAUSEOFF ||
		service == svcMSCPLAY || service == svcMSCPLAY1 || service == svcMSCPLAYR:
		t.dispatchMusic(service, a0, read)
	case service == svcROMREAD || service == svcROMSEEK || service == svcROMREADN || service == svcROMREADE:
		t.dispatchCDData(service, a0, read)
	case service == svcFDRSET || service == svcFDRCHG:
		t.dispatchVolume(service, a0, read)
	case service >= svcCDCSTART && service <= svcCDCACK:
		t.dispatchCDC(service)
	default:
		logger.Log("megacd", "unhandled BIOS service %#x", service)
	}
	return returnOpcode, t.carry
}

func (t *Trampoline) dispatchMusic(service uint16, a0 uint32, read func(uint32) uint16) {
	switch service {
	case svcMSCSTOP:
		t.CDDA.Stop()
	case svcMSCPAUSEON:
		t.CDDA.Pause()
	case svcMSCPAUSEOFF:
		t.CDDA.Resume()
	case svcMSCPLAY, svcMSCPLAY1, svcMSCPLAYR:
		track := int(read(a0))
		mode := cdda.PlayAll
		switch service {
		case svcMSCPLAY1:
			mode = cdda.PlayOnce
		case svcMSCPLAYR:
			mode = cdda.PlayRepeat
		}
		if t.FE != nil {
			t.FE.SeekTrack(track, mode)
		}
		t.CDDA.Play(mode)
	}
}

func (t *Trampoline) dispatchCDData(service uint16, a0 uint32, read func(uint32) uint16) {
	sector := uint32(read(a0))<<16 | uint32(read(a0+2))
	t.CDC.Stop()
	if t.FE != nil {
		t.FE.SeekSector(sector)
	}
	dest := cdc.DestSub
	count := 0
	if service == svcROMREADN {
		count = int(read(a0 + 4))
	}
	t.CDC.Start(dest, count)
}

func (t *Trampoline) dispatchVolume(service uint16, a0 uint32, read func(uint32) uint16) {
	switch service {
	case svcFDRSET:
		master := read(a0) != 0
		vol := int32(read(a0 + 2))
		t.CDDA.SetVolume(master, vol)
	case svcFDRCHG:
		target := int32(read(a0))
		step := int32(read(a0 + 2))
		t.CDDA.FadeTo(target, step)
	}
}

func (t *Trampoline) dispatchCDC(service uint16) {
	switch service {
	case svcCDCSTART:
		t.CDC.Start(cdc.DestSub, 0)
		t.carry = false
	case svcCDCSTOP:
		t.CDC.Stop()
		t.carry = false
	case svcCDCSTAT:
		dsr, _ := t.CDC.Mode()
		t.carry = !dsr
	case svcCDCREAD:
		_, _, err := t.CDC.Read()
		t.carry = err != nil
		if err == nil {
			t.copyCDCDMA()
		}
	case svcCDCTRN:
		t.CDC.HostData()
		t.carry = false
	case svcCDCACK:
		t.CDC.Ack()
		t.carry = false
	}
}

// copyCDCDMA implements CDCREAD's destination-specific transfer
// (spec.md §4.5 "CDC" CDCREAD): once a sector is bound, PCM-RAM,
// PRG-RAM, and WORD-RAM destinations get it copied in automatically,
// after discarding the sector's 2 header words, to `dma_address * 8`
// in Sub address-space bytes — not RAM-buffer bytes, a real quirk of
// the DMA riding the Sub-68k bus like any other bus master.
func (t *Trampoline) copyCDCDMA() {
	dest := t.CDC.DeviceDestination()
	if dest != cdc.DestPCM && dest != cdc.DestPRGRAM && dest != cdc.DestWordRAM {
		return
	}

	t.CDC.HostData() // discard header word 0
	t.CDC.HostData() // discard header word 1

	addr := uint32(t.CDC.DMAAddress()) * 8
	for i := uint32(0); i < cdc.DataWords; i++ {
		word := t.CDC.HostData()
		a := addr + i*2
		switch dest {
		case cdc.DestPCM:
			if t.PCM != nil {
				t.PCM.WriteWave(uint16(a), uint8(word>>8))
				t.PCM.WriteWave(uint16(a+1), uint8(word))
			}
		case cdc.DestPRGRAM:
			if t.PRGRAM != nil {
				t.PRGRAM.WriteByteSub(a, uint8(word>>8))
				t.PRGRAM.WriteByteSub(a+1, uint8(word))
			}
		case cdc.DestWordRAM:
			if t.WordRAM != nil {
				t.WordRAM.WriteByteSub(a, uint8(word>>8))
				t.WordRAM.WriteByteSub(a+1, uint8(word))
			}
		}
	}
}

// dispatchBRAM reads the 11-ASCII-character filename at [A0] (spec.md
// §4.5 "BIOS-call trampoline" BRAM services) and forwards it to the
// frontend. A0 addresses Sub-68k space by byte, so each word read
// covers two filename characters; a NUL byte ends the name early.
func (t *Trampoline) dispatchBRAM(service uint16, a0 uint32, read func(uint32) uint16) {
	if t.FE == nil {
		t.carry = true
		return
	}

	var name [11]byte
	for i := 0; i < len(name); i += 2 {
		w := read(a0 + uint32(i))
		name[i] = byte(w >> 8)
		if i+1 < len(name) {
			name[i+1] = byte(w)
		}
	}
	n := 0
	for n < len(name) && name[n] != 0 {
		n++
	}

	_, ok := t.FE.BRAMOperation(int(service), string(name[:n]))
	t.carry = !ok
}
