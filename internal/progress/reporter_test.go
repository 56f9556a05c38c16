package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestCIReporterLines(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{Task: "Checking content", Out: &buf}

	r.Start(2)
	r.Update(1, "i18n/es.json")
	r.Update(2, "projects/es.json")
	r.Finish()

	want := "Checking content: 2 items\n[1/2] i18n/es.json\n[2/2] projects/es.json\nChecking content: done\n"
	if buf.String() != want {
		t.Errorf("output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestNewReporterHonoursCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter("x").(*CIReporter); !ok {
		t.Error("expected a CIReporter when CI is set")
	}

	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	r := NewReporter("Checking content")
	tr, ok := r.(*TerminalReporter)
	if !ok || !strings.HasPrefix(tr.Task, "Checking") {
		t.Errorf("NewReporter() = %#v, want a TerminalReporter", r)
	}
}
