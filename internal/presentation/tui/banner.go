package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the arbor ASCII banner with a green-to-blue gradient.
func PrintBanner() {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`     ___       _`, "#34d399"},
		{`    / _ \     | |`, "#2dd4bf"},
		{`   / /_\ \_ __| |__   ___  _ __`, "#22d3ee"},
		{`   |  _  | '__| '_ \ / _ \| '__|`, "#38bdf8"},
		{`   | | | | |  | |_) | (_) | |`, "#60a5fa"},
		{`   \_| |_/_|  |_.__/ \___/|_|`, "#818cf8"},
	}

	fmt.Println()
	for _, l := range lines {
		fmt.Println(termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Println()
}
