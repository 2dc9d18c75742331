// Package render writes a collide.Report as text, JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tamirms/collide"
	"github.com/tamirms/collide/internal/distinct"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

var (
	passColor  = lipgloss.Color("#10B981") // Green
	failColor  = lipgloss.Color("#EF4444") // Red
	mutedColor = lipgloss.Color("#6B7280") // Gray
)

// Write renders r to w in the named format: "text", "json" or "yaml".
func Write(w io.Writer, r *collide.Report, format string) error {
	switch strings.ToLower(format) {
	case "", "text":
		return Text(w, r)
	case "json":
		return JSON(w, r)
	case "yaml":
		return YAML(w, r)
	}
	return fmt.Errorf("unknown report format %q", format)
}

// JSON writes r as indented JSON.
func JSON(w io.Writer, r *collide.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// YAML writes r as a YAML document.
func YAML(w io.Writer, r *collide.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// Text writes a human-readable summary of r. Colors are used only when w is
// a terminal.
func Text(w io.Writer, r *collide.Report) error {
	re := lipgloss.NewRenderer(w)
	pass := re.NewStyle().Foreground(passColor).Bold(true)
	fail := re.NewStyle().Foreground(failColor).Bold(true)
	muted := re.NewStyle().Foreground(mutedColor)

	p := message.NewPrinter(language.English)
	var b strings.Builder

	header := p.Sprintf("%d identifiers from %d workers", r.Population, r.Workers)
	if r.RunID != "" {
		header = p.Sprintf("run %s: %s in %s", r.RunID, header, r.Elapsed.Round(time.Millisecond))
	}
	b.WriteString(header + "\n")
	b.WriteString(muted.Render(p.Sprintf("shares: %s", joinInts(p, r.Shares))) + "\n")
	if len(r.Sample) > 0 {
		b.WriteString(muted.Render("sample ids: "+strings.Join(r.Sample, ", ")) + "\n")
	}
	b.WriteString(muted.Render(p.Sprintf("histogram: %s", joinInts(p, r.Histogram))) + "\n\n")

	if len(r.Pools) > 0 {
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "WORKER\tSHARE\tBATCHES\tSHORTFALLS\tDUPLICATES\tUNDECODABLE\tDIGEST")
		for _, ps := range r.Pools {
			_, _ = fmt.Fprintln(tw, p.Sprintf("%d\t%d\t%d\t%d\t%d\t%d\t%s",
				ps.Worker, ps.Share, ps.Batches, ps.Shortfalls, ps.Duplicates, ps.Undecodable, ps.Digest))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		b.WriteString("\n")
	}

	for _, c := range r.Checks {
		mark := pass.Render("PASS")
		if !c.Passed {
			mark = fail.Render("FAIL")
		}
		fmt.Fprintf(&b, "%s %-12s %s\n", mark, c.Name, describe(p, c))
	}

	if len(r.Collisions) > 0 {
		b.WriteString("\n" + fail.Render(p.Sprintf("collided ids (%d):", len(r.Collisions))) + "\n")
		for _, id := range r.Collisions {
			b.WriteString("  " + id + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// describe summarizes the values a check compared.
func describe(p *message.Printer, c collide.Check) string {
	switch c.Name {
	case collide.CheckUniqueness:
		parts := make([]string, 0, len(distinct.Methods))
		for _, m := range distinct.Methods {
			if n, ok := c.Counts[m]; ok {
				parts = append(parts, p.Sprintf("%s=%d", m, n))
			}
		}
		s := p.Sprintf("%v distinct, want %v (%s)", c.Actual, c.Expected, strings.Join(parts, " "))
		if c.Detail != "" {
			s += ": " + c.Detail
		}
		return s
	case collide.CheckDistribution:
		if c.Expected == nil {
			return c.Detail
		}
		s := p.Sprintf("expected %v per bucket, allowed (%d, %d)", c.Expected, c.Min, c.Max)
		if len(c.OffendingBuckets) > 0 {
			s += p.Sprintf(", offending buckets %v", c.OffendingBuckets)
		}
		return s
	case collide.CheckCharset:
		if c.InvalidCount == 0 {
			return "all identifiers match [a-z0-9]+"
		}
		return p.Sprintf("%d invalid, e.g. %s", c.InvalidCount, strings.Join(quoteAll(c.Invalid), " "))
	}
	return p.Sprintf("%v, want %v", c.Actual, c.Expected)
}

func joinInts(p *message.Printer, vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = p.Sprintf("%d", v)
	}
	return strings.Join(parts, " ")
}

func quoteAll(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = fmt.Sprintf("%q", id)
	}
	return out
}
