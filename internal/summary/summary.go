// Package summary renders human-readable overviews of composed plans and of
// the fragment library for the inspect and fragments commands.
package summary

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/specialistvlad/burstplan/internal/fragment"
	"github.com/specialistvlad/burstplan/internal/plan"
)

// Printer writes styled summaries. Styling degrades to plain text when the
// writer is not a terminal.
type Printer struct {
	w      io.Writer
	title  lipgloss.Style
	stage  lipgloss.Style
	key    lipgloss.Style
	muted  lipgloss.Style
	indent string
}

// NewPrinter creates a Printer bound to w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:      w,
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
		stage:  r.NewStyle().Bold(true),
		key:    r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		muted:  r.NewStyle().Foreground(lipgloss.Color("#888888")),
		indent: "  ",
	}
}

// Plans writes one block per plan: its identifier, its stages and the jobs
// of each stage with their task counts.
func (p *Printer) Plans(plans []*plan.Plan) error {
	var b strings.Builder
	for i, pl := range plans {
		if i > 0 {
			b.WriteString("\n")
		}
		p.plan(&b, pl)
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *Printer) plan(b *strings.Builder, pl *plan.Plan) {
	header := fmt.Sprintf("%s  %s", pl.Identifier(), pl.Name)
	details := fmt.Sprintf("%d stages, %d jobs", len(pl.Stages), pl.JobCount())
	if pl.Policy != "" {
		details = "policy " + pl.Policy + ", " + details
	}
	fmt.Fprintf(b, "%s %s\n", p.title.Render(header), p.muted.Render("("+details+")"))

	width := keyWidth(pl)
	for _, s := range pl.Stages {
		name := "Stage " + s.Name
		if s.Manual {
			name += " (manual)"
		}
		fmt.Fprintf(b, "%s%s\n", p.indent, p.stage.Render(name))
		for _, j := range s.Jobs {
			counts := fmt.Sprintf("%d tasks, %d final, %d artifacts", len(j.Tasks), len(j.FinalTasks), len(j.Artifacts))
			fmt.Fprintf(b, "%s%s%s %s  %s\n", p.indent, p.indent,
				p.key.Width(width).Render(j.Key), j.Name, p.muted.Render(counts))
		}
	}
}

func keyWidth(pl *plan.Plan) int {
	width := 0
	for _, s := range pl.Stages {
		for _, j := range s.Jobs {
			width = max(width, lipgloss.Width(j.Key))
		}
	}
	return width
}

// Fragments lists each fragment with its required placeholders and, for
// expression fragments, the file it was declared in.
func (p *Printer) Fragments(frags []*fragment.Fragment) error {
	width := 0
	for _, f := range frags {
		width = max(width, lipgloss.Width(f.Name()))
	}

	var b strings.Builder
	for _, f := range frags {
		required := "-"
		if names := f.Required(); len(names) > 0 {
			required = strings.Join(names, ", ")
		}
		line := p.key.Width(width).Render(f.Name()) + "  " + required
		if src := f.Source(); src != "" {
			line += "  " + p.muted.Render(src)
		}
		b.WriteString(line + "\n")
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}
