package megacd_test

import (
	"testing"

	"github.com/segacore/mdcore/hardware/cd/cdc"
	"github.com/segacore/mdcore/hardware/cd/cdda"
	"github.com/segacore/mdcore/hardware/megacd"
	"github.com/segacore/mdcore/test"
)

type fakePuller struct{ n int }

func (p *fakePuller) ReadSector(buf []byte) (int, error) {
	for i := range buf {
		buf[i] = byte(p.n)
	}
	p.n++
	return len(buf), nil
}

type fakeAudioSource struct{}

func (fakeAudioSource) ReadAudioFrame() (int16, int16, bool) { return 0, 0, true }

type stubFrontend struct {
	sawSeekTrack  bool
	seekedTrack   int
	seekedMode    cdda.PlayMode
	sawSeekSector bool
	seekedSector  uint32
	bramOK        bool
}

func (s *stubFrontend) SeekTrack(track int, mode cdda.PlayMode) {
	s.sawSeekTrack = true
	s.seekedTrack = track
	s.seekedMode = mode
}

func (s *stubFrontend) SeekSector(sector uint32) {
	s.sawSeekSector = true
	s.seekedSector = sector
}

func (s *stubFrontend) BRAMOperation(op int, filename string) (uint16, bool) {
	return 0, s.bramOK
}

func newTrampoline(fe *stubFrontend) *megacd.Trampoline {
	return &megacd.Trampoline{
		CDC:  cdc.New(&fakePuller{}),
		CDDA: cdda.New(fakeAudioSource{}),
		FE:   fe,
	}
}

func wordMemory(words map[uint32]uint16) func(uint32) uint16 {
	return func(addr uint32) uint16 { return words[addr] }
}

func TestIsEntryMatchesBothTrampolineAddresses(t *testing.T) {
	tr := newTrampoline(&stubFrontend{})
	test.ExpectEquality(t, tr.IsEntry(0x5F16), true)
	test.ExpectEquality(t, tr.IsEntry(0x5F22), true)
	test.ExpectEquality(t, tr.IsEntry(0x1234), false)
}

func TestMSCPLAY1SeeksTrackAndStartsPlayback(t *testing.T) {
	fe := &stubFrontend{}
	tr := newTrampoline(fe)

	opcode, _ := tr.Intercept(0x12, 0x2000, wordMemory(map[uint32]uint16{0x2000: 7}))

	test.ExpectEquality(t, opcode, uint16(0x4E75))
	test.ExpectEquality(t, fe.sawSeekTrack, true)
	test.ExpectEquality(t, fe.seekedTrack, 7)
	test.ExpectEquality(t, fe.seekedMode, cdda.PlayOnce)
}

func TestROMREADSeeksSectorAndStartsCDC(t *testing.T) {
	fe := &stubFrontend{}
	tr := newTrampoline(fe)

	mem := wordMemory(map[uint32]uint16{0x3000: 0x0001, 0x3002: 0x0002})
	tr.Intercept(0x17, 0x3000, mem)

	test.ExpectEquality(t, fe.sawSeekSector, true)
	test.ExpectEquality(t, fe.seekedSector, uint32(0x00010002))

	// the CDC is reading again: EDT (ring drained with reading stopped)
	// is clear
	_, edt := tr.CDC.Mode()
	test.ExpectEquality(t, edt, false)
}

func TestCDCSTATCarrySetWhenIdle(t *testing.T) {
	tr := newTrampoline(&stubFrontend{})
	_, carry := tr.Intercept(0x8A, 0, wordMemory(nil))
	test.ExpectEquality(t, carry, true)
}

func TestUnhandledServiceStillReturnsRTS(t *testing.T) {
	tr := newTrampoline(&stubFrontend{})
	opcode, _ := tr.Intercept(0xFF, 0, wordMemory(nil))
	test.ExpectEquality(t, opcode, uint16(0x4E75))
}

func TestBRAMOperationCarrySignalsFailure(t *testing.T) {
	fe := &stubFrontend{bramOK: false}
	tr := newTrampoline(fe)
	_, carry := tr.Intercept(0x01, 0, wordMemory(nil))
	test.ExpectEquality(t, carry, true)

	fe.bramOK = true
	_, carry = tr.Intercept(0x01, 0, wordMemory(nil))
	test.ExpectEquality(t, carry, false)
}
