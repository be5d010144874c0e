package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"pdf-role-chat/internal/helper"
)

const maxBarWidth = 40

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	sourceColor  = color.New(color.FgGreen)
)

func printTitle(w io.Writer, title string) {
	titleColor.Fprintln(w, title)
}

func printWarnings(w io.Writer, warnings ...string) {
	for _, msg := range warnings {
		if msg != "" {
			warningColor.Fprintln(w, "! "+msg)
		}
	}
}

func printError(w io.Writer, err error) {
	errorColor.Fprintln(w, "error: "+err.Error())
}

func printList(w io.Writer, items []string) {
	for i, item := range items {
		fmt.Fprintf(w, "%2d. %s\n", i+1, item)
	}
}

func printReferences(w io.Writer, refs []string) {
	for _, ref := range refs {
		sourceColor.Fprintln(w, "  - "+ref)
	}
}

// emit prints v as JSON when --json is set and reports whether it did.
func emit(w io.Writer, v any) (bool, error) {
	if !jsonOutput {
		return false, nil
	}
	return true, helper.PrettyPrint(w, v)
}

// densityChart draws one horizontal bar per page, scaled to the busiest page.
func densityChart(density map[string]map[int]int) string {
	peak := 0
	sources := make([]string, 0, len(density))
	for src, pages := range density {
		sources = append(sources, src)
		for _, n := range pages {
			peak = max(peak, n)
		}
	}
	sort.Strings(sources)

	var b strings.Builder
	for _, src := range sources {
		b.WriteString(src + "\n")
		pages := make([]int, 0, len(density[src]))
		for p := range density[src] {
			pages = append(pages, p)
		}
		sort.Ints(pages)
		for _, p := range pages {
			n := density[src][p]
			width := max(1, n*maxBarWidth/max(peak, 1))
			fmt.Fprintf(&b, "  p.%-4d %s %d\n", p, strings.Repeat("█", width), n)
		}
	}
	return b.String()
}
