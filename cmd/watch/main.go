// Command watch shows the status slot of a running host. On a terminal it
// runs an interactive view; otherwise, or with -plain, it prints one line per
// reading.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/younwookim/tickhook/internal/application/monitor"
	"github.com/younwookim/tickhook/internal/infrastructure/storage"
)

func main() {
	root := flag.String("root", "hooks", "Directory holding the status slot")
	name := flag.String("status", "status.bin", "Status slot name under -root")
	interval := flag.Duration("interval", 500*time.Millisecond, "Polling interval")
	duration := flag.Duration("duration", 0, "Stop after this long in plain mode (0 runs until interrupted)")
	plain := flag.Bool("plain", false, "Print plain lines even on a terminal")
	flag.Parse()

	fsys, err := storage.NewDir(*root)
	if err != nil {
		log.Fatalf("Failed to open root: %v", err)
	}
	mon := monitor.New(fsys, *name)

	if *plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		runPlain(mon, *interval, *duration)
		return
	}

	p := tea.NewProgram(newWatchModel(mon, fsys.Root()+"/"+*name, *interval))
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}

func runPlain(mon *monitor.Monitor, interval, duration time.Duration) {
	var deadline <-chan time.Time
	if duration > 0 {
		deadline = time.After(duration)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if r, err := mon.Read(); err != nil {
			fmt.Fprintf(os.Stderr, "read failed: %v\n", err)
		} else {
			fmt.Println(monitor.Line(r))
		}

		select {
		case <-deadline:
			return
		case <-ticker.C:
		}
	}
}
