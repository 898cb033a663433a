package replay

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vinayprograms/mission/internal/record"
)

// MultiReplayer renders several mission records in one pass, oldest first.
type MultiReplayer struct {
	output io.Writer
	r      *Replayer
}

// NewMulti creates a new MultiReplayer.
func NewMulti(output io.Writer, verbosity int, opts ...Option) *MultiReplayer {
	return &MultiReplayer{
		output: output,
		r:      New(output, verbosity, opts...),
	}
}

// recordInfo pairs a loaded record with its source path.
type recordInfo struct {
	rec    *record.Record
	source string
}

// ReplayFiles outputs multiple records to the writer.
func (m *MultiReplayer) ReplayFiles(paths []string) error {
	records, err := m.loadRecords(paths)
	if err != nil {
		return err
	}
	return m.replayAll(records)
}

// ReplayFilesInteractive shows multiple records in the interactive pager.
func (m *MultiReplayer) ReplayFilesInteractive(paths []string) error {
	records, err := m.loadRecords(paths)
	if err != nil {
		return err
	}

	var buf strings.Builder
	oldOutput := m.output
	m.output = &buf
	m.r.output = &buf
	err = m.replayAll(records)
	m.output = oldOutput
	m.r.output = oldOutput
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%d mission(s)", len(records))
	if len(records) == 1 {
		title = fmt.Sprintf("Mission: %s", records[0].rec.ID)
	}

	p := NewPager(title)
	return p.Run(buf.String())
}

// loadRecords loads every record and sorts them by creation time.
func (m *MultiReplayer) loadRecords(paths []string) ([]recordInfo, error) {
	var records []recordInfo
	for _, path := range paths {
		rec, err := m.r.loadRecord(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		records = append(records, recordInfo{rec: rec, source: path})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].rec.CreatedAt.Before(records[j].rec.CreatedAt)
	})
	return records, nil
}

// replayAll renders all records with a banner between them.
func (m *MultiReplayer) replayAll(records []recordInfo) error {
	for i, info := range records {
		if len(records) > 1 {
			m.printRecordBanner(info.rec, i+1, len(records))
		}
		if err := m.r.Replay(info.rec); err != nil {
			return fmt.Errorf("failed to replay %s: %w", info.source, err)
		}
		if i < len(records)-1 {
			fmt.Fprintln(m.output)
		}
	}
	return nil
}

// Banner styles for multi-record output.
var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("6"))

	bannerDividerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6"))
)

// printRecordBanner prints a distinctive header for each record.
func (m *MultiReplayer) printRecordBanner(rec *record.Record, num, total int) {
	banner := fmt.Sprintf(" [%d/%d] %s │ %s │ %s ",
		num, total,
		shortID(rec.ID),
		rec.Status,
		rec.CreatedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintln(m.output)
	fmt.Fprintln(m.output, bannerDividerStyle.Render(strings.Repeat("━", 70)))
	fmt.Fprintln(m.output, bannerStyle.Render(banner))
	fmt.Fprintln(m.output, bannerDividerStyle.Render(strings.Repeat("━", 70)))
}
