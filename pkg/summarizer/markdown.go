package summarizer

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders a Summary as a Markdown programme.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator translates headings and column titles.
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = fn
	}
}

// WithVersion adds the generator version to the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a formatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{translate: func(s string) string { return s }}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	title := s.Day.Name
	if title == "" {
		title = s.Day.ID
	}
	fmt.Fprintf(&b, "# %s: %s\n\n", t("Programme"), title)
	if s.Day.Date != "" {
		fmt.Fprintf(&b, "%s: %s\n\n", t("Date"), s.Day.Date)
	}

	if len(s.Stages) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", t("Stages"))
		for _, st := range s.Stages {
			fmt.Fprintf(&b, "- %s (%d)\n", escape(st.Name), st.Events)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## %s\n\n", t("Events"))
	if len(s.Entries) == 0 {
		fmt.Fprintf(&b, "_%s_\n", t("No events"))
	} else {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", t("Time"), t("Stage"), t("Event"))
		b.WriteString("|---|---|---|\n")
		for _, e := range s.Entries {
			name := escape(e.Name)
			if e.URL != "" {
				name = fmt.Sprintf("[%s](%s)", name, e.URL)
			}
			fmt.Fprintf(&b, "| %s–%s | %s | %s |\n", e.Start, e.End, escape(e.Stage), name)
		}
	}

	b.WriteString("\n---\n\n")
	footer := fmt.Sprintf("%s %s", t("Generated at"), s.GeneratedAt.Format("2006-01-02 15:04"))
	if s.Dataset != "" {
		footer += fmt.Sprintf(" %s %s", t("from"), s.Dataset)
	}
	if f.version != "" {
		footer += fmt.Sprintf(" (blocksched %s)", f.version)
	}
	b.WriteString(footer + "\n")
	return b.String()
}

// escape keeps table cells intact.
func escape(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
