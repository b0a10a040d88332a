package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"     _                    _   _____",
	"    / \\   __ _  ___ _ __ | |_|  ___|__  _ __ __ _  ___",
	"   / _ \\ / _` |/ _ \\ '_ \\| __| |_ / _ \\| '__/ _` |/ _ \\",
	"  / ___ \\ (_| |  __/ | | | |_|  _| (_) | | | (_| |  __/",
	" /_/   \\_\\__, |\\___|_| |_|\\__|_|  \\___/|_|  \\__, |\\___|",
	"         |___/                              |___/",
}

var bannerColors = []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6", "#fb7185"}

// PrintBanner writes the AgentForge banner to w.
// Colors are dropped when w is not a color-capable terminal.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).Profile

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line).Foreground(p.Color(bannerColors[i])))
	}
	fmt.Fprintln(w)
}
