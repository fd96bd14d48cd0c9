package prefs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/segacore/mdcore/prefs"
	"github.com/segacore/mdcore/test"
)

func tempPrefFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "mdcore_prefs_test")
}

func TestBoolRoundTrip(t *testing.T) {
	fn := tempPrefFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.ExpectSuccess(t, err)

	var v prefs.Bool
	err = dsk.Add("test", &v)
	test.ExpectSuccess(t, err)

	err = v.Set(true)
	test.ExpectSuccess(t, err)

	err = dsk.Save()
	test.ExpectSuccess(t, err)

	v.Set(false)
	err = dsk.Load()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v.Get(), true)
}

func TestStringMaxLen(t *testing.T) {
	var s prefs.String
	err := s.Set("123456789")
	test.ExpectSuccess(t, err)
	test.Equate(t, s.String(), "123456789")

	s.SetMaxLen(5)
	test.Equate(t, s.String(), "12345")

	s.SetMaxLen(0)
	test.Equate(t, s.String(), "12345")
}

func TestIntRejectsNonNumeric(t *testing.T) {
	var i prefs.Int
	err := i.Set("---")
	test.ExpectFailure(t, err)
}

func TestDiskAddDuplicateNameFails(t *testing.T) {
	dsk, err := prefs.NewDisk(tempPrefFile(t))
	test.ExpectSuccess(t, err)

	var v, w prefs.Bool
	err = dsk.Add("dupe", &v)
	test.ExpectSuccess(t, err)
	err = dsk.Add("dupe", &w)
	test.ExpectFailure(t, err)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	dsk, err := prefs.NewDisk(filepath.Join(t.TempDir(), "does-not-exist"))
	test.ExpectSuccess(t, err)
	err = dsk.Load()
	test.ExpectSuccess(t, err)
}

func TestSettingsDefaultsAndRoundTrip(t *testing.T) {
	fn := tempPrefFile(t)

	s, err := prefs.NewSettings(fn)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, s.MixerRate(), uint32(48000))
	test.ExpectEquality(t, s.FIFOShadowFillBug(), true)

	s.SetMixerRate(44100)
	s.SetBRAMDirectory(filepath.Dir(fn))
	err = s.Save()
	test.ExpectSuccess(t, err)

	reloaded, err := prefs.NewSettings(fn)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, reloaded.MixerRate(), uint32(44100))

	_ = os.Remove(fn)
}
