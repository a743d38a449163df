package buildinfo

import (
	"strings"
	"testing"
)

func TestGetKeepsLdflagsValues(t *testing.T) {
	oldV, oldC, oldD := Version, Commit, Date
	defer func() { Version, Commit, Date = oldV, oldC, oldD }()

	Version, Commit, Date = "v1.2.3", "abc123", "2026-01-02"
	got := Get()
	if got != (Info{Version: "v1.2.3", Commit: "abc123", Date: "2026-01-02"}) {
		t.Errorf("Get() = %+v", got)
	}
	if s := String(); !strings.Contains(s, "version: v1.2.3") || !strings.Contains(s, "commit: abc123") {
		t.Errorf("String() = %q", s)
	}
	if tpl := Template(); !strings.HasPrefix(tpl, "{{.Name}} version v1.2.3") {
		t.Errorf("Template() = %q", tpl)
	}
}

func TestGetDefaults(t *testing.T) {
	got := Get()
	if got.Version == "" || got.Commit == "" || got.Date == "" {
		t.Errorf("Get() has empty fields: %+v", got)
	}
}
