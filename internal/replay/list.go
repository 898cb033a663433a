package replay

import (
	"fmt"
	"io"

	"github.com/vinayprograms/mission/internal/record"
)

// PrintList renders a one-line summary per record.
func PrintList(w io.Writer, records []*record.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No mission records found."))
		return
	}

	for _, rec := range records {
		var status string
		switch rec.Status {
		case record.StatusComplete:
			status = successStyle.Render("complete ")
		case record.StatusFailed:
			status = errorStyle.Render("failed   ")
		case record.StatusExhausted:
			status = warnStyle.Render("exhausted")
		default:
			status = warnStyle.Render("running  ")
		}

		fmt.Fprintf(w, "%s │ %s │ %s │ %s\n",
			valueStyle.Render(shortID(rec.ID)),
			status,
			dimStyle.Render(rec.CreatedAt.Format("2006-01-02 15:04:05")),
			valueStyle.Render(truncateContent(rec.Goal, 60)))
	}
}

// shortID trims a record ID for single-line listings.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
