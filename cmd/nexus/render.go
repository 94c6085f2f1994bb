package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ShayCichocki/agentnexus/internal/orchestrator"
	"github.com/ShayCichocki/agentnexus/pkg/models"
)

const (
	okColor   = color.FgGreen
	failColor = color.FgRed
	warnColor = color.FgYellow
	skipColor = color.FgHiBlack
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("238")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			PaddingLeft(4).
			Foreground(lipgloss.Color("250"))
)

// printStatus prints a colored status symbol followed by message.
func printStatus(w io.Writer, symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Fprintf(w, "%s %s\n", c.Sprint(symbol), message)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func printHeader(w io.Writer, task string, mode orchestrator.Mode, seq models.Sequence) {
	fmt.Fprintln(w, headerStyle.Render("nexus run"))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Task:    "), valueStyle.Render(task))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Mode:    "), string(mode))
	fmt.Fprintf(w, "%s %s\n\n", labelStyle.Render("Sequence:"), strings.Join(seq, " → "))
}

// stageObserver reports stage starts on w while the pipeline runs.
func stageObserver(w io.Writer) orchestrator.Observer {
	return func(ev orchestrator.StageEvent) {
		if ev.Status == models.StageStatusRunning {
			printStatus(w, "•", fmt.Sprintf("%s running", ev.Name), skipColor)
		}
	}
}

// renderContext prints one line per stage in sequence order. Stages that
// never ran are shown as skipped.
func renderContext(w io.Writer, pc *models.PipelineContext, seq models.Sequence) {
	seen := make(map[string]bool, len(seq))
	for _, name := range append(pc.Names(), seq...) {
		if seen[name] {
			continue
		}
		seen[name] = true

		r, ok := pc.Get(name)
		switch {
		case !ok:
			printStatus(w, "-", name+" skipped", skipColor)
			continue
		case r.Failed():
			printStatus(w, "✗", name, failColor)
		default:
			printStatus(w, "✓", name, okColor)
		}
		if body := formatResult(r); body != "" {
			fmt.Fprintln(w, resultStyle.Render(body))
		}
	}
}

// eventLine is the JSON form of a stage event.
type eventLine struct {
	Stage     string              `json:"stage"`
	Index     int                 `json:"index"`
	Status    models.StageStatus  `json:"status"`
	Result    *models.AgentResult `json:"result,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// streamEvents writes one JSON line per event until events is closed.
func streamEvents(w io.Writer, events <-chan orchestrator.StageEvent) {
	enc := json.NewEncoder(w)
	for ev := range events {
		_ = enc.Encode(eventLine{
			Stage:     ev.Name,
			Index:     ev.Index,
			Status:    ev.Status,
			Result:    ev.Result,
			Timestamp: ev.Timestamp,
		})
	}
}

func formatResult(r models.AgentResult) string {
	if msg := r.Message(); msg != "" {
		return msg
	}
	if r.Result == nil {
		return ""
	}
	b, err := json.MarshalIndent(r.Result, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", r.Result)
	}
	return string(b)
}

func renderArtifacts(w io.Writer, list []models.Artifact) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No artifacts saved.")
		return
	}
	for _, a := range list {
		task := a.Task
		if len(task) > 60 {
			task = task[:57] + "..."
		}
		fmt.Fprintf(w, "%s  %s  %6dB  %s\n",
			valueStyle.Render(a.ID),
			labelStyle.Render(a.CreatedAt.Local().Format(time.DateTime)),
			a.Size,
			task)
	}
}

type stageStat struct {
	count   float64
	seconds float64
}

// renderMetrics summarizes the stage metrics gathered from reg.
func renderMetrics(w io.Writer, reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	stats := make(map[string]*stageStat)
	for _, mf := range families {
		if mf.GetName() != "nexus_pipeline_stage_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			var agentName, status string
			for _, lp := range m.GetLabel() {
				switch lp.GetName() {
				case "agent":
					agentName = lp.GetValue()
				case "status":
					status = lp.GetValue()
				}
			}
			key := agentName + " " + status
			s, ok := stats[key]
			if !ok {
				s = &stageStat{}
				stats[key] = s
			}
			h := m.GetHistogram()
			s.count += float64(h.GetSampleCount())
			s.seconds += h.GetSampleSum()
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Stage metrics"))
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s := stats[k]
		fmt.Fprintf(w, "%-30s %3.0f run(s)  %8.3fs\n", k, s.count, s.seconds)
	}
	return nil
}
