package savefile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/segacore/mdcore/savefile"
	"github.com/segacore/mdcore/test"
)

func TestBRAMWriteReadStatDelete(t *testing.T) {
	dir := t.TempDir()
	f := &savefile.Frontend{Dir: dir}

	_, ok := f.BRAMOperation(0x00, "") // init
	test.ExpectEquality(t, ok, true)

	_, ok = f.BRAMOperation(0x04, "SAVE000001") // write
	test.ExpectEquality(t, ok, true)

	if _, err := os.Stat(filepath.Join(dir, "SAVE000001.brm")); err != nil {
		t.Fatalf("expected BRAM file to exist: %v", err)
	}

	size, ok := f.BRAMOperation(0x01, "SAVE000001") // stat
	test.ExpectEquality(t, ok, true)
	test.Equate(t, size, uint16(0))

	_, ok = f.BRAMOperation(0x05, "SAVE000001") // delete
	test.ExpectEquality(t, ok, true)

	_, ok = f.BRAMOperation(0x01, "SAVE000001") // stat on a deleted file fails
	test.ExpectEquality(t, ok, false)
}

func TestBRAMDeleteRefusesWriteProtected(t *testing.T) {
	dir := t.TempDir()
	f := &savefile.Frontend{Dir: dir}

	err := os.WriteFile(filepath.Join(dir, "LOCKED0001.wp.brm"), []byte("x"), 0o644)
	test.ExpectSuccess(t, err)

	_, ok := f.BRAMOperation(0x05, "LOCKED0001") // delete
	test.ExpectEquality(t, ok, false)
}

func TestBRAMSearchCountsFiles(t *testing.T) {
	dir := t.TempDir()
	f := &savefile.Frontend{Dir: dir}

	err := os.WriteFile(filepath.Join(dir, "A.brm"), []byte("x"), 0o644)
	test.ExpectSuccess(t, err)
	err = os.WriteFile(filepath.Join(dir, "B.brm"), []byte("y"), 0o644)
	test.ExpectSuccess(t, err)

	count, ok := f.BRAMOperation(0x02, "") // search
	test.ExpectEquality(t, ok, true)
	test.Equate(t, count, uint16(2))
}

func TestBRAMFormatClearsDirectory(t *testing.T) {
	dir := t.TempDir()
	f := &savefile.Frontend{Dir: dir}

	err := os.WriteFile(filepath.Join(dir, "A.brm"), []byte("x"), 0o644)
	test.ExpectSuccess(t, err)

	_, ok := f.BRAMOperation(0x06, "") // format
	test.ExpectEquality(t, ok, true)

	matches, _ := filepath.Glob(filepath.Join(dir, "*.brm"))
	test.Equate(t, len(matches), 0)
}
