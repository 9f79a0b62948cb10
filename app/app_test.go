package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/go-cmp/cmp"

	"github.com/ayoisaiah/autotrack/internal/config"
	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/registrar"
	"github.com/ayoisaiah/autotrack/stats"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func runApp(t *testing.T, args ...string) string {
	t.Helper()

	var buf bytes.Buffer

	a := Get()
	a.Writer = &buf

	argv := append([]string{"autotrack", "--no-color", "--disable-notification"}, args...)
	if err := a.Run(argv); err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}

	return buf.String()
}

func TestRegistrationFlow(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	xdg.Reload()

	oldStdin := config.Stdin
	config.Stdin = strings.NewReader("")

	t.Cleanup(func() { config.Stdin = oldStdin })

	dir := t.TempDir()
	at := func(hour int) string {
		return time.Date(2024, time.July, 3, hour, 0, 0, 0, time.Local).Format(time.RFC3339)
	}

	rules := writeFile(t, dir, "rules.yml", `
- id: editor
  basename: code
  project_id: p1
  task_id: t1
`)

	tasks := writeFile(t, dir, "tasks.yml", `
- id: t1
  name: Build engine
  project_id: p1
  estimated_hours: 2
  priority: 2
- id: t2
  name: Done already
  project_id: p1
  completed: true
`)

	samples := writeFile(t, dir, "samples.yml", `
- id: s1
  basename: code
  start: `+at(9)+`
  end: `+at(10)+`
  details:
    - title: main.go
      start: `+at(9)+`
      end: `+at(10)+`
`)

	runApp(t, "rule", "import", "--file", rules)
	runApp(t, "task", "import", "--file", tasks)
	runApp(t, "activity", "import", "--file", samples)

	var generated []models.ScheduleEntry
	if err := json.Unmarshal([]byte(runApp(t, "actual", "generate", "--date", "2024-07-03", "--json")), &generated); err != nil {
		t.Fatal(err)
	}

	if len(generated) != 1 || generated[0].ProjectID != "p1" || !generated[0].IsProvisional {
		t.Fatalf("expected one provisional actual for p1, got %+v", generated)
	}

	var plan registrar.PlanResult
	if err := json.Unmarshal([]byte(runApp(t, "plan", "allocate", "--date", "2024-07-03", "--json")), &plan); err != nil {
		t.Fatal(err)
	}

	if !plan.Success || len(plan.Entries) != 1 || plan.Entries[0].TaskID != "t1" {
		t.Fatalf("expected one plan entry for t1, got %+v", plan)
	}

	if start, end, _ := plan.Entries[0].Interval(); start.Hour() != 9 || end.Hour() != 11 {
		t.Fatalf("expected 09:00-11:00, got %v-%v", start, end)
	}

	runApp(t, "actual", "confirm", "--date", "2024-07-03")
	runApp(t, "plan", "confirm", "--date", "2024-07-03")

	var summary stats.Summary
	if err := json.Unmarshal([]byte(runApp(t, "summary", "--date", "2024-07-03", "--json")), &summary); err != nil {
		t.Fatal(err)
	}

	expected := stats.Row{ProjectID: "Total", Planned: 2 * time.Hour, Actual: time.Hour, Delta: -time.Hour}
	if diff := cmp.Diff(expected, summary.Total); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	// the estimate is now fully scheduled, so a new allocation overruns
	if err := json.Unmarshal([]byte(runApp(t, "plan", "allocate", "--date", "2024-07-04", "--json")), &plan); err != nil {
		t.Fatal(err)
	}

	if plan.Success || len(plan.Overruns) != 1 || plan.Overruns[0].TaskID != "t1" {
		t.Fatalf("expected t1 to overrun, got %+v", plan)
	}
}

func TestParseAnswers(t *testing.T) {
	overruns := []models.OverrunTask{{TaskID: "a"}, {TaskID: "b"}, {TaskID: "c"}}

	got, err := parseAnswers(overruns, []string{"1.5", " ", "0"})
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(map[string]float64{"a": 1.5, "c": 0}, got); diff != "" {
		t.Errorf("answers mismatch (-want +got):\n%s", diff)
	}

	if _, err := parseAnswers(overruns[:1], []string{"-2"}); err == nil {
		t.Error("expected negative hours to be rejected")
	}

	if err := validateHours("two"); err == nil {
		t.Error("expected non-numeric hours to be rejected")
	}
}

func TestRunCmd(t *testing.T) {
	ctx := context.Background()

	if err := runCmd(ctx, ""); err != nil {
		t.Fatalf("empty command should be a no-op, got %v", err)
	}

	if err := runCmd(ctx, `echo "unterminated`); err == nil {
		t.Error("expected a parse error for unbalanced quotes")
	}

	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX shell utility")
	}

	if err := runCmd(ctx, "true"); err != nil {
		t.Errorf("expected true to succeed, got %v", err)
	}
}
