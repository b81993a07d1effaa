package console

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/99minutos/opsboard/internal/core/domain"
)

const timeLayout = "2006-01-02 15:04:05"

// Renderer writes screen snapshots as plain text tables.
type Renderer struct {
	printer *message.Printer
	title   cases.Caser
}

func NewRenderer(tag language.Tag) *Renderer {
	return &Renderer{
		printer: message.NewPrinter(tag),
		title:   cases.Title(tag),
	}
}

func (r *Renderer) number(v float64) string {
	return r.printer.Sprintf("%.2f", v)
}

func (r *Renderer) banner(w io.Writer, b Banner) {
	switch b.Kind {
	case BannerSuccess:
		fmt.Fprintf(w, "[ok] %s\n\n", b.Text)
	case BannerError:
		fmt.Fprintf(w, "[error] %s\n\n", b.Text)
	}
}

func (r *Renderer) Dashboard(w io.Writer, v DashboardView) error {
	switch v.Phase {
	case PhaseLoading:
		_, err := fmt.Fprintln(w, "Loading dashboard...")
		return err
	case PhaseError:
		_, err := fmt.Fprintf(w, "Error: %s\n(retry to reload)\n", v.Err)
		return err
	}

	fmt.Fprintf(w, "Server: %s (%s, %s)\n", v.Health.Message, v.Health.Environment, v.Health.Version)
	r.printer.Fprintf(w, "Total users: %d\n", v.TotalUsers)
	r.printer.Fprintf(w, "Metric types: %d\n\n", len(v.Summary))

	if len(v.Summary) == 0 {
		_, err := fmt.Fprintln(w, "No analytics data yet.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tCOUNT\tAVG\tMAX\tMIN\tLATEST")
	for _, s := range v.Summary {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.title.String(string(s.MetricType)),
			r.printer.Sprintf("%d", s.Count),
			r.number(s.AvgValue),
			r.number(s.MaxValue),
			r.number(s.MinValue),
			formatTime(s.LatestTimestamp),
		)
	}
	return tw.Flush()
}

func (r *Renderer) Users(w io.Writer, v UsersView) error {
	r.banner(w, v.Banner)
	if v.Phase == PhaseLoading && len(v.Users) == 0 {
		_, err := fmt.Fprintln(w, "Loading users...")
		return err
	}
	if len(v.Users) == 0 {
		_, err := fmt.Fprintln(w, "No users found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tSTATUS\tCREATED")
	for _, u := range v.Users {
		mark := ""
		if u.ID == v.PendingDelete {
			mark = " (delete?)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s%s\n",
			u.ID, u.Name, u.Email,
			r.title.String(string(u.Role)),
			r.title.String(string(u.Status)),
			formatTime(u.CreatedAt), mark,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	r.printer.Fprintf(w, "\n%d users\n", len(v.Users))
	return nil
}

func (r *Renderer) Analytics(w io.Writer, v AnalyticsView) error {
	r.banner(w, v.Banner)
	if v.Phase == PhaseLoading && len(v.Metrics) == 0 {
		_, err := fmt.Fprintln(w, "Loading analytics...")
		return err
	}
	if len(v.Metrics) == 0 {
		_, err := fmt.Fprintln(w, "No analytics entries found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tVALUE\tTYPE\tDESCRIPTION\tTIMESTAMP")
	for _, m := range v.Metrics {
		desc := m.Description
		if desc == "" {
			desc = "-"
		}
		mark := ""
		if m.ID == v.PendingDelete {
			mark = " (delete?)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s%s\n",
			m.ID, m.MetricName,
			r.number(m.MetricValue),
			r.title.String(string(m.MetricType)),
			desc,
			formatTime(m.Timestamp), mark,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	r.printer.Fprintf(w, "\n%d entries\n", len(v.Metrics))
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(timeLayout)
}

// MetricTypeNames returns the accepted metric types for prompts.
func MetricTypeNames() []string {
	out := make([]string, 0, len(domain.MetricTypes))
	for _, t := range domain.MetricTypes {
		out = append(out, string(t))
	}
	return out
}
