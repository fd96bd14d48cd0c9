package cdc_test

import (
	"testing"

	"github.com/segacore/mdcore/hardware/cd/cdc"
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

func TestReadFailsWhenRingEmpty(t *testing.T) {
	c := cdc.New(&fakePuller{})
	_, _, err := c.Read()
	test.ExpectFailure(t, err)
}

func TestPumpFillsRingAndReadBinds(t *testing.T) {
	c := cdc.New(&fakePuller{})
	c.Start(cdc.DestSub, 0)

	err := c.Pump()
	test.Equate(t, err, nil)

	_, dest, err := c.Read()
	test.Equate(t, err, nil)
	test.Equate(t, dest, cdc.DestSub)

	dsr, _ := c.Mode()
	test.Equate(t, dsr, true)

	c.Ack()
	dsr, _ = c.Mode()
	test.Equate(t, dsr, false)
}

func TestHostDataRepeatsLastWord(t *testing.T) {
	c := cdc.New(&fakePuller{})
	c.Start(cdc.DestMain, 0)
	test.Equate(t, c.Pump(), nil)
	_, _, _ = c.Read()

	var last uint16
	for i := 0; i < 2352/2+5; i++ {
		last = c.HostData()
	}
	test.Equate(t, c.HostData(), last)
}
