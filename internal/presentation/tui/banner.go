package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`   ___ __ _ _ __   ___  _ __  _   _ `, "#4ade80"},
	{`  / __/ _' | '_ \ / _ \| '_ \| | | |`, "#34d399"},
	{` | (_| (_| | | | | (_) | |_) | |_| |`, "#2dd4bf"},
	{`  \___\__,_|_| |_|\___/| .__/ \__, |`, "#22d3ee"},
	{`                       |_|    |___/ `, "#38bdf8"},
}

// PrintBanner writes the canopy banner to w, colored for the terminal's profile.
func PrintBanner(w io.Writer, version string) {
	p := termenv.NewOutput(w).Profile

	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintf(w, "%s\n\n", p.String("  v"+version).Faint())
}
