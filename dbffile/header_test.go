package dbffile

import (
	"testing"
	"time"
)

func TestHeader_Modified(t *testing.T) {
	h := &Header{Year: 114, Month: 4, Day: 14}
	want := time.Date(2014, 4, 14, 0, 0, 0, 0, time.UTC)
	if have := h.Modified(); !have.Equal(want) {
		t.Errorf("Expected %v, got %v", want, have)
	}
}

func TestHeader_ModifiedPre2000(t *testing.T) {
	// The year byte is year-1900 and preserved verbatim, even for
	// implausible values pinned by old tooling.
	h := &Header{Year: 19, Month: 7, Day: 26}
	if have := h.Modified().Year(); have != 1919 {
		t.Errorf("Expected year 1919, got %d", have)
	}
}

func TestHeader_ColumnsCount(t *testing.T) {
	h := &Header{HeaderLength: 34 + 32*5}
	if have := h.ColumnsCount(); have != 5 {
		t.Errorf("Expected 5 columns, got %d", have)
	}
	h = &Header{HeaderLength: 10}
	if have := h.ColumnsCount(); have != 0 {
		t.Errorf("Expected 0 columns for a short header, got %d", have)
	}
}

func TestExpectedRecordLength(t *testing.T) {
	columns := []*Column{
		{Length: 10},
		{Length: 4},
		{Length: 1},
	}
	if have := expectedRecordLength(columns); have != 16 {
		t.Errorf("Expected record length 16, got %d", have)
	}
}

func TestMemoCandidates(t *testing.T) {
	cases := []struct {
		path    string
		version FileVersion
		want    []string
	}{
		{"data/PYACFL.DBF", DBaseIIIMemo, []string{"data/PYACFL.dbt", "data/PYACFL.DBT"}},
		{"data/test.dbf", DBaseIVMemo, []string{"data/test.dbt", "data/test.DBT"}},
		{"data/vfp9.dbf", VisualFoxPro, []string{"data/vfp9.fpt", "data/vfp9.FPT"}},
		{"data/proj.pjx", VisualFoxPro, []string{"data/proj.pjt", "data/proj.pjT"}},
		{"data/plain.dbf", DBaseIII, nil},
	}
	for _, c := range cases {
		have := memoCandidates(c.path, c.version)
		if len(have) != len(c.want) {
			t.Errorf("%s: expected %v, got %v", c.path, c.want, have)
			continue
		}
		for i := range have {
			if have[i] != c.want[i] {
				t.Errorf("%s: expected %v, got %v", c.path, c.want, have)
				break
			}
		}
	}
}

func TestResolveMemoPath(t *testing.T) {
	fs := newMemIO()
	fs.put("data/TEST.DBT", []byte{0})
	if have := resolveMemoPath("data/TEST.DBF", DBaseIIIMemo, fs); have != "data/TEST.DBT" {
		t.Errorf("Expected data/TEST.DBT, got %q", have)
	}
	if have := resolveMemoPath("data/OTHER.DBF", DBaseIIIMemo, fs); have != "" {
		t.Errorf("Expected no memo path, got %q", have)
	}
}
