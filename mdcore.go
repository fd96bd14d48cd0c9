// Package mdcore ties the Main-68k, Sub-68k, Z80 and all their attached
// chips into a single steppable machine: the top-level aggregate of
// spec.md §2/§3, replacing the teacher's CLI/GUI entry point with a
// pure library call a host embeds (spec.md §1's scope note: "the host
// audio device and video surface... the top-level application loop" are
// this package's caller's job, not this package's).
package mdcore

import (
	"github.com/segacore/mdcore/hardware/busmain"
	"github.com/segacore/mdcore/hardware/bussub"
	"github.com/segacore/mdcore/hardware/busz80"
	"github.com/segacore/mdcore/hardware/cd/cdc"
	"github.com/segacore/mdcore/hardware/cd/cdda"
	"github.com/segacore/mdcore/hardware/cd/disc"
	"github.com/segacore/mdcore/hardware/clocks"
	"github.com/segacore/mdcore/hardware/controller"
	"github.com/segacore/mdcore/hardware/cpu"
	"github.com/segacore/mdcore/hardware/megacd"
	"github.com/segacore/mdcore/hardware/memory/cartridge"
	"github.com/segacore/mdcore/hardware/memory/memorymap"
	"github.com/segacore/mdcore/hardware/memory/workram"
	"github.com/segacore/mdcore/hardware/memory/z80ram"
	"github.com/segacore/mdcore/hardware/scheduler"
	"github.com/segacore/mdcore/hardware/sound/fm"
	"github.com/segacore/mdcore/hardware/sound/mixer"
	"github.com/segacore/mdcore/hardware/sound/pcm"
	"github.com/segacore/mdcore/hardware/sound/psg"
	"github.com/segacore/mdcore/hardware/vdp"
	"github.com/segacore/mdcore/hardware/z80"
	"github.com/segacore/mdcore/logger"
	"github.com/segacore/mdcore/prefs"
	"github.com/segacore/mdcore/random"
	"github.com/segacore/mdcore/savefile"
)

// scanlinesNTSC/scanlinesPAL feed cyclesPerScanline, which derives a
// Main-68k master-clock scanline length from the region's line rate,
// per spec.md §4.1's time model: everything else is synced to this
// boundary once per line.
const (
	scanlinesNTSC = 262
	scanlinesPAL  = 313
)

// Interpreter is the instruction-decoding collaborator spec.md §1 places
// outside this core's scope: Main-68k, Sub-68k and Z80 interpreters are
// all supplied by the embedder and driven only through Step/Halted.
type Interpreter = scheduler.Component

// Machine is the complete aggregate: every component plus the clocks and
// bus dispatchers wiring them together.
type Machine struct {
	Region   clocks.Region
	Settings *prefs.Settings

	MainClock scheduler.Clock
	SubClock  scheduler.Clock
	Z80Clock  scheduler.Clock

	SubDomain scheduler.Domain
	Z80Domain scheduler.Domain

	MainCPU Interpreter
	SubCPU  Interpreter
	Z80CPU  Interpreter

	MainState *cpu.State
	SubState  *cpu.State
	Z80State  *z80.State

	MainInterrupts *cpu.Interrupts
	SubInterrupts  *cpu.Interrupts

	BusMain *busmain.Bus
	BusSub  *bussub.Bus
	BusZ80  *busz80.Bus

	VDP     *vdp.State
	FM      *fm.FM
	PSG     *psg.PSG
	PCM     *pcm.PCM
	Mixer   *mixer.Mixer
	WorkRAM *workram.RAM
	Z80RAM  *z80ram.RAM

	Bankswitch *cartridge.Bankswitch
	ExtRAM     *cartridge.ExternalRam

	MegaCDPresent bool
	WordRAM       *megacd.WordRAM
	PRGRAM        *megacd.PRGRAM
	Comm          *megacd.CommBlock
	IRQ           *megacd.IRQState
	ASIC          *megacd.GraphicsASIC
	BIOS          *megacd.Trampoline
	CDC           *cdc.CDC
	CDDA          *cdda.CDDA
	Disc          *disc.Disc

	ControllerA *controller.Controller
	ControllerB *controller.Controller

	scanline int
}

// Config collects the collaborators a host must supply up front: the
// frontend (spec.md §6) and the loaded media. The instruction
// interpreters are deliberately absent here — per spec.md §1 they are
// external collaborators that need a *cpu.State/*z80.State and a bus to
// operate on, and this package is what creates those; wire MainCPU,
// SubCPU and Z80CPU onto the returned Machine once it's built (see
// Machine.MainState/SubState/Z80State and Machine.BusMain/BusSub/BusZ80).
type Config struct {
	Region clocks.Region

	VideoFrontend vdp.Frontend
	ControllerSrc controller.Source

	ROM  []byte
	Disc *disc.Disc // nil for a cartridge-only boot, per SPEC_FULL.md §4.5

	SaveRAMSize  int
	SaveRAMWired cartridge.DataSize

	// Settings is optional; when given, its bug-emulation toggles are
	// applied to the VDP and (if a Disc is present) WORD-RAM at
	// construction time, its mixer rate replaces clocks.MixerRate, and its
	// Region overrides the Region field above.
	Settings *prefs.Settings
}

// New constructs and powers on a complete Machine per spec.md §3
// "Lifecycles": every memory area is filled with deterministic noise,
// every register file starts zeroed, and optional Mega-CD hardware is
// only wired in when a Disc is present. The caller must still assign
// MainCPU/SubCPU/Z80CPU before calling Iterate.
func New(cfg Config) (*Machine, error) {
	region := cfg.Region
	if cfg.Settings != nil {
		region = cfg.Settings.Region()
	}
	m := &Machine{Region: region, Settings: cfg.Settings}

	master := &scheduler.MasterClock{}
	rnd := random.NewRandom(master)

	bankswitch, err := cartridge.Open(cfg.ROM)
	if err != nil {
		return nil, err
	}
	m.Bankswitch = bankswitch
	m.ExtRAM = cartridge.NewExternalRam(cfg.SaveRAMSize, cfg.SaveRAMWired, true)

	m.WorkRAM = &workram.RAM{}
	m.WorkRAM.PowerOn(rnd)
	m.Z80RAM = &z80ram.RAM{}
	m.Z80RAM.PowerOn(rnd)

	m.MainState = &cpu.State{}
	m.SubState = &cpu.State{}
	m.Z80State = &z80.State{}
	m.MainInterrupts = &cpu.Interrupts{}
	m.SubInterrupts = &cpu.Interrupts{}

	m.FM = fm.New()
	m.PSG = psg.New()
	m.PCM = pcm.New()
	mixerRate := uint32(clocks.MixerRate)
	if cfg.Settings != nil {
		mixerRate = cfg.Settings.MixerRate()
	}
	m.Mixer = mixer.New(m.FM, m.PSG, m.PCM, mixerRate)

	m.ControllerA = controller.NewController(0, cfg.ControllerSrc)
	m.ControllerB = controller.NewController(1, cfg.ControllerSrc)
	portA := &controller.IoPort{Controller: m.ControllerA}
	portB := &controller.IoPort{Controller: m.ControllerB}
	portC := &controller.IoPort{}

	m.VDP = vdp.New(cfg.VideoFrontend, nil)
	m.VDP.PowerOn(rnd)
	if cfg.Settings != nil {
		m.VDP.DisableFIFOShadowFillBug = !cfg.Settings.FIFOShadowFillBug()
	}

	m.BusMain = &busmain.Bus{
		WorkRAM:    m.WorkRAM,
		Bankswitch: m.Bankswitch,
		ExtRAM:     m.ExtRAM,
		VDP:        m.VDP,
		FM:         m.FM,
		PSG:        m.PSG,
		Z80RAM:     m.Z80RAM,
		PortA:      portA,
		PortB:      portB,
		PortC:      portC,
		Interrupts: m.MainInterrupts,
		Z80:        m.Z80State,
	}
	m.VDP.Main = vdpMainBus{bus: m.BusMain, machine: m}

	m.BusZ80 = &busz80.Bus{
		RAM:   m.Z80RAM,
		FM:    m.FM,
		PSG:   m.PSG,
		State: m.Z80State,
		Main:  m.BusMain,
	}

	m.MainClock = scheduler.Clock{}
	m.Z80Clock = scheduler.Clock{}
	m.Z80Domain = scheduler.NewDomain(region.MasterClock(), clocks.Z80Clock)

	m.MegaCDPresent = cfg.Disc != nil
	if m.MegaCDPresent {
		m.Disc = cfg.Disc
		m.WordRAM = &megacd.WordRAM{}
		m.WordRAM.PowerOn(rnd)
		if cfg.Settings != nil {
			m.WordRAM.DisableDMADelayBug = !cfg.Settings.WordRAMDMADelayBug()
		}
		m.PRGRAM = &megacd.PRGRAM{}
		m.PRGRAM.PowerOn(rnd)
		m.Comm = &megacd.CommBlock{}
		m.IRQ = &megacd.IRQState{}
		m.ASIC = &megacd.GraphicsASIC{WordRAM: m.WordRAM, IRQ: m.IRQ}
		m.CDC = cdc.New(m.Disc)
		m.CDDA = cdda.New(m.Disc)
		m.BIOS = &megacd.Trampoline{CDC: m.CDC, CDDA: m.CDDA, PRGRAM: m.PRGRAM, WordRAM: m.WordRAM, PCM: m.PCM}
		if cfg.Settings != nil {
			m.BIOS.FE = &savefile.Frontend{Disc: m.Disc, Dir: cfg.Settings.BRAMDirectory()}
		}

		m.BusSub = &bussub.Bus{
			PRGRAM:  m.PRGRAM,
			WordRAM: m.WordRAM,
			Comm:    m.Comm,
			IRQ:     m.IRQ,
			ASIC:    m.ASIC,
			CDC:     m.CDC,
			CDDA:    m.CDDA,
			PCM:     m.PCM,
		}

		m.BusMain.MegaCD = &busmain.MegaCDWindow{
			WordRAM:   m.WordRAM,
			PRGRAM:    m.PRGRAM,
			Comm:      m.Comm,
			IRQ:       m.IRQ,
			Sub:       subSyncable{m},
			MainCycle: func() uint32 { return m.MainClock.CurrentCycle },
			Present:   true,
		}

		m.SubDomain = scheduler.NewDomain(region.MasterClock(), region.MasterClock()) // Sub-68k runs at the same master rate as Main
		m.SubClock = scheduler.Clock{}
	}

	return m, nil
}

// vdpMainBus adapts busmain.Bus's byte-enabled ReadWord to the plain
// word read the VDP's memory-to-VRAM DMA wants, and special-cases
// WORD-RAM sources to reproduce the delayed-read hardware quirk
// (spec.md §9 Open Question; see megacd.WordRAM.ReadDelayed).
type vdpMainBus struct {
	bus     *busmain.Bus
	machine *Machine
}

func (v vdpMainBus) ReadWord(addr uint32) uint16 {
	a := addr & 0xFFFFFF
	if v.machine.MegaCDPresent && v.machine.WordRAM != nil &&
		a >= memorymap.WordRAMStart && a <= memorymap.WordRAMEnd {
		return v.machine.WordRAM.ReadDelayed(a - memorymap.WordRAMStart)
	}
	word, _ := v.bus.ReadWord(a, true, true)
	return word
}

// ResetDMADelay is picked up via an optional-interface check in
// hardware/vdp/dma.go at the start of each memory-to-VRAM DMA, so the
// delayed-read quirk only lags within a single transfer, not across
// back-to-back ones.
func (v vdpMainBus) ResetDMADelay() {
	if v.machine.MegaCDPresent && v.machine.WordRAM != nil {
		v.machine.WordRAM.ResetDMADelay()
	}
}

// subSyncable adapts Machine's Sub-68k sync step to the bus.Syncable
// contract busmain.MegaCDWindow expects (spec.md §4.1 invariant 1: the
// Sub domain must be caught up to Main's current cycle before Main
// observes any Mega-CD state).
type subSyncable struct{ m *Machine }

func (s subSyncable) SyncTo(cycle uint32) {
	if s.m.SubCPU == nil {
		return
	}
	target := s.m.SubDomain.Convert(cycle)
	s.m.SubClock.Sync(s.m.SubCPU, target)
}

// CurrentScanline reports the line Iterate is currently processing,
// for a frontend's debug overlay or a save-state's mid-frame resume.
func (m *Machine) CurrentScanline() int { return m.scanline }

func (m *Machine) scanlinesPerFrame() int {
	if m.Region == clocks.PAL {
		return scanlinesPAL
	}
	return scanlinesNTSC
}

// cyclesPerScanline is the Main-68k master-clock length of one scanline:
// master rate divided by (scanlines-per-frame * frame rate), rounded down
// to a whole cycle.
func (m *Machine) cyclesPerScanline() uint32 {
	rate := m.Region.MasterClock()
	lines := uint32(m.scanlinesPerFrame())
	frameRate := uint32(60)
	if m.Region == clocks.PAL {
		frameRate = 50
	}
	return rate / (lines * frameRate)
}

// Iterate runs exactly one video frame: for every scanline, it syncs the
// Main-68k to the scanline boundary, syncs the Z80 (and, if present, the
// Sub-68k) to the same point in time, renders the line, and raises the
// appropriate interrupts (spec.md §2 "Iterate").
func (m *Machine) Iterate() {
	cyclesPerLine := m.cyclesPerScanline()
	lines := m.scanlinesPerFrame()

	for line := 0; line < lines; line++ {
		m.scanline = line
		target := m.MainClock.CurrentCycle + cyclesPerLine
		if m.MainCPU != nil {
			m.MainClock.Sync(m.MainCPU, target)
		} else {
			m.MainClock.CurrentCycle = target
		}

		if m.Z80CPU != nil && m.BusMain.Z80Running() {
			m.Z80Clock.Sync(m.Z80CPU, m.Z80Domain.Convert(m.MainClock.CurrentCycle))
		}
		if m.MegaCDPresent && m.SubCPU != nil {
			m.SubClock.Sync(m.SubCPU, m.SubDomain.Convert(m.MainClock.CurrentCycle))
			if m.IRQ.TickIRQ3() {
				m.SubInterrupts.Raise(3)
			}
			if m.IRQ.TakeIRQ2() {
				m.SubInterrupts.Raise(2)
			}
		}

		if line < vdp.ScreenHeightNTSC {
			m.VDP.RenderScanline(line)
		}
		if line == vdp.ScreenHeightNTSC && m.VDP.VIntEnabled {
			m.MainInterrupts.Raise(6)
		}
		if m.VDP.TickHCounter() {
			m.MainInterrupts.Raise(4)
		}

		m.ControllerA.Tick()
		m.ControllerB.Tick()
	}
}

// RenderAudio pulls outputRate*seconds worth of mixed samples, combining
// FM/PSG/PCM with CD-DA when the Mega-CD is present, per spec.md §4.4
// "Mixer".
func (m *Machine) RenderAudio(n int) (left, right []int16) {
	left = make([]int16, n)
	right = make([]int16, n)

	var cddaL, cddaR []int16
	if m.MegaCDPresent {
		cddaL = make([]int16, n)
		cddaR = make([]int16, n)
		m.CDDA.UpdateFade()
		m.CDDA.Update(n, cddaL, cddaR)
	}

	m.Mixer.Render(n, left, right, cddaL, cddaR)
	return left, right
}

// Reset clears the Main-68k and Z80 register state and restarts the frame
// at scanline 0, keeping loaded media and every memory area, Work-RAM and
// PRG-RAM included (spec.md §3 "Lifecycles"). It does not touch the
// Sub-68k, the sound chips, the VDP, the interrupt lines or the cartridge
// bank table.
func (m *Machine) Reset() {
	*m.MainState = cpu.State{}
	*m.Z80State = z80.State{}
	m.scanline = 0
	logger.Log("mdcore", "machine reset")
}
