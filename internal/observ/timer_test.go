package observ

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestTimerPhases(t *testing.T) {
	tm := NewTimer()
	a := tm.Begin("decode")
	tm.End(a, "4 statements")
	if err := tm.Track("compile", func() error { return errors.New("boom") }); err == nil {
		t.Fatalf("Track swallowed the error")
	}
	tm.End(99, "ignored")
	tm.End(a, "ended twice")
	open := tm.Begin("link")

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("got %d phases", len(rep.Phases))
	}
	if rep.Phases[0].Note != "4 statements" || rep.Phases[1].Note != "failed: boom" {
		t.Fatalf("notes = %+v", rep.Phases)
	}
	sum := tm.Summary()
	if !strings.Contains(sum, "decode") || !strings.Contains(sum, "// 4 statements") || !strings.Contains(sum, "total") {
		t.Fatalf("summary:\n%s", sum)
	}
	tm.End(open, "")
	if got := len(tm.Report().Phases); got != 3 {
		t.Fatalf("ended link phase missing: %d phases", got)
	}
}

func TestTimerJSON(t *testing.T) {
	tm := NewTimer()
	tm.End(tm.Begin("link"), "")
	var buf bytes.Buffer
	if err := tm.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var rep Report
	if err := json.Unmarshal(buf.Bytes(), &rep); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(rep.Phases) != 1 || rep.Phases[0].Name != "link" {
		t.Fatalf("report = %+v", rep)
	}
}

func TestEmptyTimer(t *testing.T) {
	if rep := NewTimer().Report(); rep.TotalMS != 0 || rep.Phases != nil {
		t.Fatalf("report = %+v", rep)
	}
}
