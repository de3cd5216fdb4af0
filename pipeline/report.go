package pipeline

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

// ANSI color codes
const (
	colorYellow = "\033[38;5;178m"
	colorDim    = "\033[38;5;136m"
	colorReset  = "\033[0m"
)

type field struct{ key, value string }

// PrintSummary writes a run summary to w, boxed when the terminal is wide
// enough. Colors are used only when w is a terminal.
func PrintSummary(w io.Writer, res Result) {
	width, colored := 80, false
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		colored = true
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil {
			width = tw
		}
	}
	for _, line := range renderSummary(res, width, colored) {
		fmt.Fprintln(w, line)
	}
}

func summaryFields(res Result) []field {
	return []field{
		{"run", res.RunID},
		{"train", res.TrainPath + " (" + strconv.Itoa(res.TrainRows) + " rows)"},
		{"test", res.TestPath + " (" + strconv.Itoa(res.TestRows) + " rows)"},
		{"preprocessor", res.PreprocessorPath},
		{"model", res.ModelPath},
		{"best", res.Model},
		{"r2", strconv.FormatFloat(res.Score, 'f', 4, 64)},
		{"took", res.Duration.Round(time.Millisecond).String()},
	}
}

func renderSummary(res Result, width int, colored bool) []string {
	paint := func(color, s string) string {
		if !colored {
			return s
		}
		return color + s + colorReset
	}
	fields := summaryFields(res)

	if width < 40 {
		return []string{paint(colorYellow, "r2") + " " + fields[6].value + " " + fields[5].value}
	}

	boxWidth := width
	if boxWidth > 72 {
		boxWidth = 72
	}
	innerWidth := boxWidth - 2
	line := func(plain, painted string) string {
		padding := innerWidth - runeWidth(plain)
		if padding < 0 {
			padding = 0
		}
		return paint(colorDim, "│") + painted + strings.Repeat(" ", padding) + paint(colorDim, "│")
	}

	out := []string{paint(colorDim, "╭"+strings.Repeat("─", innerWidth)+"╮")}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		key := fmt.Sprintf("  %-13s", f.key)
		value := truncatePath(f.value, innerWidth-runeWidth(key)-2)
		out = append(out, line(key+value, paint(colorYellow, key)+value))
	}
	out = append(out, paint(colorDim, "╰"+strings.Repeat("─", innerWidth)+"╯"))
	return out
}

// PrintFailure writes a one-line failure notice, naming the failed stage
// when err comes from a pipeline run.
func PrintFailure(w io.Writer, err error) {
	if stage, ok := FailedStage(err); ok {
		fmt.Fprintf(w, "%s failed: %v\n", stage, err)
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

// runeWidth approximates the display width of s; box-drawing characters are
// single width, other non-ASCII runes double.
func runeWidth(s string) int {
	width := 0
	for _, r := range s {
		switch {
		case r >= 0x2500 && r <= 0x259F:
			width++
		case r > 127:
			width += 2
		default:
			width++
		}
	}
	return width
}

// truncatePath keeps the tail of s, prefixed with "...", to fit maxWidth.
func truncatePath(s string, maxWidth int) string {
	if runeWidth(s) <= maxWidth {
		return s
	}
	for i := 0; i < len(s); i++ {
		sub := "..." + s[i:]
		if runeWidth(sub) <= maxWidth {
			return sub
		}
	}
	return "..."
}
