package replay

import (
	"fmt"
	"io"
	"time"

	"github.com/vinayprograms/mission/internal/mission"
	"github.com/vinayprograms/mission/internal/record"
)

// Stats holds aggregate statistics for a mission record.
type Stats struct {
	// Wall-clock span between the first and last event.
	TotalDurationMs int64

	// Loop shape.
	Iterations    int
	WorkerReplies int

	// Failure handling.
	CollaboratorErrors int
	Escalations        int

	// Verdict distribution across analysis events.
	Verdicts map[string]int
}

// ComputeStats calculates aggregate statistics from record events.
func ComputeStats(rec *record.Record) *Stats {
	stats := &Stats{
		Verdicts: make(map[string]int),
	}

	var firstEvent, lastEvent time.Time

	for _, ev := range rec.Events {
		if firstEvent.IsZero() || ev.Timestamp.Before(firstEvent) {
			firstEvent = ev.Timestamp
		}
		if lastEvent.IsZero() || ev.Timestamp.After(lastEvent) {
			lastEvent = ev.Timestamp
		}

		switch mission.EventKind(ev.Type) {
		case mission.EventIterationStart:
			stats.Iterations++
		case mission.EventWorkerReply:
			stats.WorkerReplies++
		case mission.EventAnalysisResult:
			if verdict, ok := ev.Fields["verdict"].(string); ok {
				stats.Verdicts[verdict]++
			}
		case mission.EventCollaboratorError:
			stats.CollaboratorErrors++
		case mission.EventMissionEscalation:
			stats.Escalations++
		}
	}

	if !firstEvent.IsZero() && !lastEvent.IsZero() {
		stats.TotalDurationMs = lastEvent.Sub(firstEvent).Milliseconds()
	}

	return stats
}

// PrintStats outputs the statistics to the writer.
func PrintStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("STATISTICS"))

	fmt.Fprintf(w, "  %s %s\n",
		labelStyle.Render("Duration:  "),
		valueStyle.Render(formatDuration(stats.TotalDurationMs)))
	fmt.Fprintf(w, "  %s %s\n",
		labelStyle.Render("Iterations:"),
		valueStyle.Render(fmt.Sprintf("%d", stats.Iterations)))
	fmt.Fprintf(w, "  %s %s\n",
		labelStyle.Render("Replies:   "),
		valueStyle.Render(fmt.Sprintf("%d", stats.WorkerReplies)))

	if stats.CollaboratorErrors > 0 {
		fmt.Fprintf(w, "  %s %s\n",
			labelStyle.Render("Errors:    "),
			errorStyle.Render(fmt.Sprintf("%d", stats.CollaboratorErrors)))
	}
	if stats.Escalations > 0 {
		fmt.Fprintf(w, "  %s %s\n",
			labelStyle.Render("Escalations:"),
			errorStyle.Render(fmt.Sprintf("%d", stats.Escalations)))
	}
}

// formatDuration formats milliseconds as a human-readable duration.
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.2fs", float64(ms)/1000)
	}
	mins := ms / 60000
	secs := (ms % 60000) / 1000
	return fmt.Sprintf("%dm%ds", mins, secs)
}
