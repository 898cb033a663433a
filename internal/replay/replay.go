package replay

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vinayprograms/mission/internal/mission"
	"github.com/vinayprograms/mission/internal/record"
)

// Replayer reads and formats mission records for review.
type Replayer struct {
	output         io.Writer
	verbosity      int // 0=normal, 1=verbose (-v)
	maxContentSize int // Maximum size for content fields (0 = unlimited)
}

// Option configures a Replayer.
type Option func(*Replayer)

// WithMaxContentSize limits content field size to avoid OOM on large records.
func WithMaxContentSize(size int) Option {
	return func(r *Replayer) {
		r.maxContentSize = size
	}
}

// New creates a new Replayer.
func New(output io.Writer, verbosity int, opts ...Option) *Replayer {
	r := &Replayer{
		output:         output,
		verbosity:      verbosity,
		maxContentSize: 50 * 1024, // Default: 50KB per content field
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReplayFile loads and replays a record from a file.
func (r *Replayer) ReplayFile(path string) error {
	rec, err := r.loadRecord(path)
	if err != nil {
		return err
	}
	return r.Replay(rec)
}

// ReplayFileInteractive loads and replays with an interactive pager.
func (r *Replayer) ReplayFileInteractive(path string) error {
	rec, err := r.loadRecord(path)
	if err != nil {
		return err
	}

	var buf strings.Builder
	oldOutput := r.output
	r.output = &buf
	err = r.Replay(rec)
	r.output = oldOutput
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Mission: %s", rec.ID)
	p := NewPager(title)
	return p.Run(buf.String())
}

// ReplayFileLive replays with live file watching, re-rendering as the
// mission appends events.
func (r *Replayer) ReplayFileLive(path string) error {
	renderFunc := func() (string, error) {
		rec, err := r.loadRecord(path)
		if err != nil {
			return "", err
		}

		var buf strings.Builder
		oldOutput := r.output
		r.output = &buf
		err = r.Replay(rec)
		r.output = oldOutput
		if err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	rec, err := r.loadRecord(path)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Mission: %s (LIVE)", rec.ID)
	p := NewPager(title)
	return p.RunLive(path, renderFunc)
}

// loadRecord loads a record, truncating oversized content fields.
func (r *Replayer) loadRecord(path string) (*record.Record, error) {
	rec, err := record.Load(path)
	if err != nil {
		return nil, err
	}

	if r.maxContentSize > 0 {
		for i := range rec.Events {
			if len(rec.Events[i].Content) > r.maxContentSize {
				originalSize := len(rec.Events[i].Content)
				rec.Events[i].Content = rec.Events[i].Content[:r.maxContentSize] +
					fmt.Sprintf("\n... [truncated, %d bytes total]", originalSize)
			}
		}
	}
	return rec, nil
}

// Replay outputs a formatted timeline of mission events.
func (r *Replayer) Replay(rec *record.Record) error {
	r.printHeader(rec)
	r.printTimeline(rec)
	r.printSummary(rec)
	return nil
}

func (r *Replayer) printHeader(rec *record.Record) {
	fmt.Fprintln(r.output)
	fmt.Fprintf(r.output, "%s %s\n", titleStyle.Render("MISSION"), valueStyle.Render(rec.ID))
	fmt.Fprintln(r.output, divider)
	fmt.Fprintf(r.output, "%s %s\n", labelStyle.Render("Goal:    "), valueStyle.Render(rec.Goal))
	fmt.Fprintf(r.output, "%s %s\n", labelStyle.Render("Identity:"), valueStyle.Render(rec.Identity))
	if rec.Context != "" {
		fmt.Fprintf(r.output, "%s %s\n", labelStyle.Render("Context: "), valueStyle.Render(rec.Context))
	}
	fmt.Fprintf(r.output, "%s %s\n", labelStyle.Render("Status:  "), r.statusStyle(rec.Status).Render(rec.Status))
	fmt.Fprintf(r.output, "%s %s\n", labelStyle.Render("Created: "), valueStyle.Render(rec.CreatedAt.Format(time.RFC3339)))
	fmt.Fprintln(r.output)
}

func (r *Replayer) printTimeline(rec *record.Record) {
	fmt.Fprintf(r.output, "%s %s\n", titleStyle.Render("TIMELINE"), dimStyle.Render(fmt.Sprintf("(%d events)", len(rec.Events))))
	fmt.Fprintln(r.output, divider)

	for i := range rec.Events {
		r.formatEvent(&rec.Events[i])
	}
}

func (r *Replayer) printSummary(rec *record.Record) {
	fmt.Fprintln(r.output)
	fmt.Fprintln(r.output, divider)

	switch rec.Status {
	case record.StatusComplete:
		fmt.Fprintln(r.output, successStyle.Render("COMPLETED"))
	case record.StatusFailed:
		fmt.Fprintln(r.output, errorStyle.Render("FAILED"))
	case record.StatusExhausted:
		fmt.Fprintln(r.output, warnStyle.Render("EXHAUSTED"))
	default:
		fmt.Fprintln(r.output, warnStyle.Render("RUNNING"))
	}

	if rec.Result != "" {
		fmt.Fprintln(r.output)
		fmt.Fprintln(r.output, titleStyle.Render("REPORT"))
		fmt.Fprintln(r.output, valueStyle.Render(rec.Result))
	}

	stats := ComputeStats(rec)
	PrintStats(r.output, stats)
}

// formatEvent formats a single event for display.
func (r *Replayer) formatEvent(ev *record.Event) {
	ts := timeStyle.Render(ev.Timestamp.Format("15:04:05"))
	seqNum := seqStyle.Render(fmt.Sprintf("%d", ev.SeqID))

	switch mission.EventKind(ev.Type) {
	case mission.EventMissionStart:
		fmt.Fprintf(r.output, "%s │ %s │ %s\n", seqNum, ts, valueStyle.Render("MISSION START"))
	case mission.EventIterationStart:
		fmt.Fprintln(r.output)
		fmt.Fprintf(r.output, "%s │ %s │ %s\n", seqNum, ts,
			titleStyle.Render(fmt.Sprintf("ITERATION %d", ev.Iteration)))
	case mission.EventPlannerBreakdown:
		fmt.Fprintf(r.output, "%s │ %s │ %s%s\n", seqNum, ts,
			plannerStyle.Render("PLAN"), r.contentHint(ev.Content))
		if r.verbosity >= 1 && ev.Content != "" {
			r.printContent(ev.Content)
		}
	case mission.EventWorkerReply:
		fmt.Fprintf(r.output, "%s │ %s │ %s%s\n", seqNum, ts,
			workerStyle.Render("WORKER"), r.contentHint(ev.Content))
		if r.verbosity >= 1 && ev.Content != "" {
			r.printContent(ev.Content)
		}
	case mission.EventAnalysisResult:
		verdict, _ := ev.Fields["verdict"].(string)
		fmt.Fprintf(r.output, "%s │ %s │ %s %s\n", seqNum, ts,
			analysisStyle.Render("ANALYSIS"), r.verdictStyle(verdict).Render(verdict))
	case mission.EventCollaboratorError:
		fmt.Fprintf(r.output, "%s │ %s │ %s\n", seqNum, ts,
			errorStyle.Render("COLLABORATOR ERROR"))
		if ev.Error != "" {
			r.printError(ev.Error)
		}
	case mission.EventMissionEscalation:
		failures := ev.Fields["failures"]
		threshold := ev.Fields["threshold"]
		fmt.Fprintf(r.output, "%s │ %s │ %s %s\n", seqNum, ts,
			errorStyle.Render("ESCALATION"),
			dimStyle.Render(fmt.Sprintf("(%v consecutive failures, threshold %v)", failures, threshold)))
	case mission.EventMissionComplete:
		status, _ := ev.Fields["status"].(string)
		fmt.Fprintf(r.output, "%s │ %s │ %s %s\n", seqNum, ts,
			valueStyle.Render("MISSION END"), r.stateStyle(status).Render(status))
	default:
		fmt.Fprintf(r.output, "%s │ %s │ %s\n", seqNum, ts, dimStyle.Render(ev.Type))
	}
}

// contentHint renders an inline one-line preview of event content.
func (r *Replayer) contentHint(content string) string {
	if content == "" {
		return ""
	}
	return dimStyle.Render(fmt.Sprintf(" [%s]", truncateContent(content, 80)))
}

// printContent prints verbose content with timeline indentation.
func (r *Replayer) printContent(content string) {
	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(r.output, "      │          │   %s\n", line)
	}
}

// printError prints an error with timeline indentation.
func (r *Replayer) printError(err string) {
	fmt.Fprintf(r.output, "      │          │   %s\n", errorStyle.Render(err))
}

// statusStyle returns the appropriate style for a record status.
func (r *Replayer) statusStyle(status string) lipgloss.Style {
	switch status {
	case record.StatusComplete:
		return successStyle
	case record.StatusFailed:
		return errorStyle
	case record.StatusExhausted:
		return warnStyle
	default:
		return warnStyle
	}
}

// verdictStyle returns the style for analysis verdicts.
func (r *Replayer) verdictStyle(verdict string) lipgloss.Style {
	switch verdict {
	case "completed":
		return successStyle
	case "failed":
		return errorStyle
	default:
		return warnStyle
	}
}

// stateStyle returns the style for terminal mission states.
func (r *Replayer) stateStyle(state string) lipgloss.Style {
	switch state {
	case "completed":
		return successStyle
	case "failed":
		return errorStyle
	case "exhausted":
		return warnStyle
	default:
		return valueStyle
	}
}

// truncateContent truncates a string for inline display.
func truncateContent(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
