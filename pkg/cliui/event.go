package cliui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/papercomputeco/ssecodec/pkg/sse"
)

var (
	SeqStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	TypeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	MetaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	DataStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	gutterMark = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("│")
)

// RenderEvent formats ev for a terminal: a header with its sequence number,
// type, id and retry, then each data line behind a gutter.
func RenderEvent(seq uint64, ev sse.Event) string {
	var b strings.Builder

	header := []string{
		SeqStyle.Render(fmt.Sprintf("#%d", seq)),
		TypeStyle.Render(ev.Type),
	}
	if ev.ID != nil {
		header = append(header, MetaStyle.Render("id="+strconv.Quote(*ev.ID)))
	}
	if ev.Retry != nil {
		header = append(header, MetaStyle.Render("retry="+strconv.FormatUint(*ev.Retry, 10)+"ms"))
	}
	b.WriteString(strings.Join(header, " "))
	b.WriteByte('\n')

	for line := range strings.SplitSeq(ev.Data, "\n") {
		fmt.Fprintf(&b, "  %s %s\n", gutterMark, DataStyle.Render(line))
	}

	return b.String()
}

// PrintEvent writes RenderEvent's output to w.
func PrintEvent(w io.Writer, seq uint64, ev sse.Event) error {
	_, err := io.WriteString(w, RenderEvent(seq, ev))
	return err
}
