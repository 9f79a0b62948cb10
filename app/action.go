package app

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/ayoisaiah/autotrack/internal/config"
	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/internal/pathutil"
	"github.com/ayoisaiah/autotrack/internal/server"
	"github.com/ayoisaiah/autotrack/internal/static"
	"github.com/ayoisaiah/autotrack/internal/timeutil"
	"github.com/ayoisaiah/autotrack/internal/ui"
	"github.com/ayoisaiah/autotrack/registrar"
	"github.com/ayoisaiah/autotrack/report"
	"github.com/ayoisaiah/autotrack/stats"
)

// firstNonEmptyString returns its first non-empty argument, or "" if all
// arguments are empty.
func firstNonEmptyString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}

func day(e *env) string {
	return e.cfg.CLI.Date.Format(timeutil.DateLayout)
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))

	return err
}

// generateActualsAction infers provisional actuals for the selected day.
func generateActualsAction(ctx *cli.Context, e *env) error {
	entries, err := e.svc.GenerateProvisionalActuals(ctx.Context, e.cfg.CLI.Date)
	if err != nil {
		return err
	}

	if e.cfg.CLI.JSON {
		return printJSON(ctx.App.Writer, entries)
	}

	if len(entries) == 0 {
		report.Info("no new activity to register for %s", day(e))
		return nil
	}

	ui.PrintEntries(ctx.App.Writer, entries)

	msg := fmt.Sprintf("%d provisional actuals registered for %s", len(entries), day(e))
	report.Success("%s", msg)
	e.registered(ctx.Context, "Actuals ready for review", msg)

	return nil
}

func confirmActualsAction(ctx *cli.Context, e *env) error {
	n, err := e.svc.ConfirmActuals(ctx.Context, e.cfg.CLI.Date)
	if err != nil {
		return err
	}

	report.Success("%d actuals confirmed for %s", n, day(e))

	return nil
}

func discardActualsAction(ctx *cli.Context, e *env) error {
	n, err := e.svc.DiscardProvisionalActuals(ctx.Context, e.cfg.CLI.Date)
	if err != nil {
		return err
	}

	report.Success("%d provisional actuals discarded for %s", n, day(e))

	return nil
}

func taskIndex(e *env, ctx *cli.Context) (map[string]models.Task, error) {
	tasks, err := e.db.ListTasks(ctx.Context)
	if err != nil {
		return nil, err
	}

	index := make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		index[t.ID] = t
	}

	return index, nil
}

// allocatePlanAction fills the free time of the selected day with
// provisional plans. With --interactive, overruns are resolved by asking for
// extra hours and allocating again.
func allocatePlanAction(ctx *cli.Context, e *env) error {
	extra := e.cfg.CLI.ExtraHours

	res, err := e.svc.AllocateProvisionalPlan(ctx.Context, e.cfg.CLI.Date, extra, e.cfg.CLI.ProjectID)
	if err != nil {
		return err
	}

	if !res.Success && ctx.Bool("interactive") && !e.cfg.CLI.JSON {
		tasks, err := taskIndex(e, ctx)
		if err != nil {
			return err
		}

		ui.PrintTable(ui.OverrunRows(res.Overruns, tasks), ctx.App.Writer)

		answers, err := promptExtraHours(res.Overruns, tasks)
		if err != nil {
			return err
		}

		if len(answers) > 0 {
			merged := maps.Clone(extra)
			if merged == nil {
				merged = make(map[string]float64, len(answers))
			}

			maps.Copy(merged, answers)

			res, err = e.svc.AllocateProvisionalPlan(ctx.Context, e.cfg.CLI.Date, merged, e.cfg.CLI.ProjectID)
			if err != nil {
				return err
			}
		}
	}

	if e.cfg.CLI.JSON {
		return printJSON(ctx.App.Writer, res)
	}

	return reportPlan(ctx, e, res)
}

func reportPlan(ctx *cli.Context, e *env, res *registrar.PlanResult) error {
	if !res.Success {
		tasks, err := taskIndex(e, ctx)
		if err != nil {
			return err
		}

		ui.PrintTable(ui.OverrunRows(res.Overruns, tasks), ctx.App.Writer)
		report.Warning(
			"nothing was allocated: the tasks above have reached their estimate. Re-run with --extra TASK=HOURS or --interactive",
		)

		return nil
	}

	if len(res.Entries) == 0 {
		report.Info("no free time or no tasks to allocate on %s", day(e))
		return nil
	}

	ui.PrintEntries(ctx.App.Writer, res.Entries)

	msg := fmt.Sprintf("%d provisional plan entries allocated for %s", len(res.Entries), day(e))
	report.Success("%s", msg)
	e.registered(ctx.Context, "Plan ready for review", msg)

	return nil
}

func confirmPlanAction(ctx *cli.Context, e *env) error {
	n, err := e.svc.ConfirmPlan(ctx.Context, e.cfg.CLI.Date)
	if err != nil {
		return err
	}

	report.Success("%d plan entries confirmed for %s", n, day(e))

	return nil
}

func discardPlanAction(ctx *cli.Context, e *env) error {
	n, err := e.svc.DiscardProvisionalPlan(ctx.Context, e.cfg.CLI.Date)
	if err != nil {
		return err
	}

	report.Success("%d provisional plan entries discarded for %s", n, day(e))

	return nil
}

// slotsAction prints the free time of the selected day.
func slotsAction(ctx *cli.Context, e *env) error {
	slots, err := e.svc.FreeSlots(ctx.Context, e.cfg.CLI.Date)
	if err != nil {
		return err
	}

	if e.cfg.CLI.JSON {
		return printJSON(ctx.App.Writer, slots)
	}

	if len(slots) == 0 {
		report.Info("no free time on %s", day(e))
		return nil
	}

	ui.PrintTable(ui.SlotRows(slots), ctx.App.Writer)

	return nil
}

func dayEntries(ctx *cli.Context, e *env, kinds ...models.EntryKind) ([]*models.ScheduleEntry, error) {
	start, end := timeutil.DayBounds(e.cfg.CLI.Date)

	return e.db.ListEntries(ctx.Context, models.EntryFilter{
		UserID: e.cfg.User.ID,
		Start:  start,
		End:    end,
		Kinds:  kinds,
	})
}

// entriesAction lists the entries of the selected day.
func entriesAction(ctx *cli.Context, e *env) error {
	entries, err := dayEntries(ctx, e)
	if err != nil {
		return err
	}

	if e.cfg.CLI.JSON {
		return printJSON(ctx.App.Writer, entries)
	}

	ui.PrintEntries(ctx.App.Writer, entries)

	return nil
}

// summaryAction compares planned and actual time per project.
func summaryAction(ctx *cli.Context, e *env) error {
	plans, err := dayEntries(ctx, e, models.KindPlan, models.KindShared)
	if err != nil {
		return err
	}

	actuals, err := dayEntries(ctx, e, models.KindActual)
	if err != nil {
		return err
	}

	s := stats.Reconcile(plans, actuals)

	if e.cfg.CLI.JSON {
		return printJSON(ctx.App.Writer, s)
	}

	ui.PrintTable(s.TableData(), ctx.App.Writer)

	if chart := s.BarChart(); chart != "" {
		fmt.Fprintln(ctx.App.Writer, chart)
	}

	return nil
}

func decodeYAML[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	var out []T

	if err := yaml.NewDecoder(f).Decode(&out); err != nil && err != io.EOF {
		return nil, errDecodeFile.Fmt(path).Wrap(err)
	}

	return out, nil
}

// importRulesAction replaces the stored rules with those in a YAML file.
func importRulesAction(ctx *cli.Context, e *env) error {
	rules, err := decodeYAML[models.MatchRule](ctx.String("file"))
	if err != nil {
		return err
	}

	if err := e.db.PutRules(ctx.Context, rules); err != nil {
		return err
	}

	report.Success("%d rules imported", len(rules))

	return nil
}

func listRulesAction(ctx *cli.Context, e *env) error {
	rules, err := e.db.ListRules(ctx.Context)
	if err != nil {
		return err
	}

	if e.cfg.CLI.JSON {
		return printJSON(ctx.App.Writer, rules)
	}

	data := [][]string{{"ID", "Basename", "Regex", "Project", "Category", "Task", "Labels"}}
	for _, r := range rules {
		data = append(data, []string{
			r.ID, r.Basename, r.Regex, r.ProjectID, r.CategoryID, r.TaskID,
			strings.Join(r.LabelIDs, ","),
		})
	}

	ui.PrintTable(data, ctx.App.Writer)

	return nil
}

// importTasksAction replaces the stored tasks with those in a YAML file.
func importTasksAction(ctx *cli.Context, e *env) error {
	tasks, err := decodeYAML[models.Task](ctx.String("file"))
	if err != nil {
		return err
	}

	if err := e.db.PutTasks(ctx.Context, tasks); err != nil {
		return err
	}

	report.Success("%d tasks imported", len(tasks))

	return nil
}

func listTasksAction(ctx *cli.Context, e *env) error {
	tasks, err := e.db.ListTasks(ctx.Context)
	if err != nil {
		return err
	}

	if e.cfg.CLI.JSON {
		return printJSON(ctx.App.Writer, tasks)
	}

	data := [][]string{{"ID", "Name", "Project", "Estimate", "Priority", "Done"}}
	for _, t := range tasks {
		estimate := "-"
		if t.EstimatedHours != nil {
			estimate = timeutil.FormatDuration(timeutil.HoursToDuration(*t.EstimatedHours))
		}

		done := ""
		if t.Completed {
			done = ui.Green("✔")
		}

		data = append(data, []string{
			t.ID, t.Name, t.ProjectID, estimate, fmt.Sprint(t.Priority), done,
		})
	}

	ui.PrintTable(data, ctx.App.Writer)

	return nil
}

// importSamplesAction records activity samples from a YAML file into the
// configured activity source.
func importSamplesAction(ctx *cli.Context, e *env) error {
	samples, err := decodeYAML[models.ActivitySample](ctx.String("file"))
	if err != nil {
		return err
	}

	if err := e.recorder(ctx.Context, samples); err != nil {
		return err
	}

	report.Success("%d activity samples imported into %s", len(samples), e.cfg.Activity.Source)

	return nil
}

func printPreference(w io.Writer, pref *models.UserPreference) {
	breaks := make([]string, 0, len(pref.Breaks))
	for _, b := range pref.Breaks {
		breaks = append(breaks, b.Start.String()+"-"+b.End.String())
	}

	ui.PrintTable([][]string{
		{"User", "Work start", "Work hours", "Breaks"},
		{pref.UserID, pref.WorkStart.String(), fmt.Sprint(pref.WorkHours), strings.Join(breaks, ", ")},
	}, w)
}

func showPreferenceAction(ctx *cli.Context, e *env) error {
	pref, err := e.db.Preference(ctx.Context, e.cfg.User.ID)
	if err != nil {
		return err
	}

	if e.cfg.CLI.JSON {
		return printJSON(ctx.App.Writer, pref)
	}

	printPreference(ctx.App.Writer, pref)

	return nil
}

// initPreferenceAction overwrites the stored preference with the work
// settings from the config file.
func initPreferenceAction(ctx *cli.Context, e *env) error {
	pref, err := e.cfg.Preference()
	if err != nil {
		return err
	}

	if err := e.db.PutPreference(ctx.Context, &pref); err != nil {
		return err
	}

	printPreference(ctx.App.Writer, &pref)
	report.Success("work preference for %s updated from %s", pref.UserID, e.cfg.ConfigPath)

	return nil
}

// examplesAction copies the example rule and task files to the data
// directory.
func examplesAction(ctx *cli.Context) error {
	written, err := static.CopyExamples(pathutil.DataDir())
	if err != nil {
		return err
	}

	if len(written) == 0 {
		report.Info("example files already exist in %s", pathutil.DataDir())
		return nil
	}

	for _, p := range written {
		fmt.Fprintln(ctx.App.Writer, p)
	}

	return nil
}

// serveAction runs the local API until interrupted.
func serveAction(ctx *cli.Context, e *env) error {
	addr := firstNonEmptyString(ctx.String("addr"), e.cfg.Server.Addr)

	sigCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := server.New(server.Config{
		Registrar: e.svc,
		Logger:    e.logger,
		Location:  time.Local,
	})

	report.Info("serving the autotrack API on http://%s", addr)

	return server.ListenAndServe(sigCtx, addr, h, e.logger)
}

// editConfigAction handles the edit-config command which opens the config
// file in the user's default text editor.
func editConfigAction(_ *cli.Context) error {
	defaultEditor := "nano"

	if runtime.GOOS == "windows" {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	editor := firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)

	cmd := exec.Command(editor, pathutil.ConfigFilePath())

	cmd.Stderr = config.Stderr
	cmd.Stdin = config.Stdin
	cmd.Stdout = config.Stdout

	return cmd.Run()
}

func beforeAction(ctx *cli.Context) error {
	// Override the default help template
	cli.AppHelpTemplate = helpText()

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	// Disable colour output if NO_COLOR is set
	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	// Disable colour output if AUTOTRACK_NO_COLOR is set
	if _, exists := os.LookupEnv(envAutotrackNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	return pathutil.Initialize()
}
