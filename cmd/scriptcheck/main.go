// Command scriptcheck parses an input script the way the core does and
// reports what playback would see.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/younwookim/tickhook/internal/application/replay"
	"github.com/younwookim/tickhook/internal/infrastructure/storage"
)

const ticksPerSecond = 60

func main() {
	maxBytes := flag.Int("max-bytes", replay.DefaultMaxBytes, "Read limit, as applied by the core")
	maxKeyframes := flag.Int("max-keyframes", replay.DefaultMaxKeyframes, "Keyframe limit, as applied by the core")
	dump := flag.Bool("dump", false, "List every keyframe")
	normalize := flag.Bool("normalize", false, "Print the script sorted and cleaned instead of a report")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: scriptcheck [flags] <script.csv>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	fsys, err := storage.NewDir(filepath.Dir(path))
	if err != nil {
		log.Fatalf("Failed to open script directory: %v", err)
	}
	s, err := replay.LoadScript(fsys, filepath.Base(path), *maxBytes, *maxKeyframes)
	if err != nil {
		log.Fatalf("Failed to load script: %v", err)
	}

	if *normalize {
		var end *uint32
		if s.HasEnd {
			end = &s.End
		}
		_, _ = os.Stdout.Write(replay.Format(s.Keyframes, end))
		return
	}
	report(os.Stdout, s, *dump)
}

// report describes s the way playback will treat it
func report(w io.Writer, s *replay.Script, dump bool) {
	kfs := s.Keyframes
	first, last := kfs[0].Tick, kfs[len(kfs)-1].Tick
	fmt.Fprintf(w, "keyframes: %d (ticks %d..%d, %.2fs)\n", len(kfs), first, last, float64(last)/ticksPerSecond)

	switch {
	case s.HasEnd:
		fmt.Fprintf(w, "ends:      at tick %d (end marker)\n", s.End)
	case kfs[len(kfs)-1].Buttons == 0:
		fmt.Fprintf(w, "ends:      at tick %d (released)\n", last)
	default:
		fmt.Fprintf(w, "ends:      never, %s stays held\n", replay.FormatButtons(kfs[len(kfs)-1].Buttons))
	}

	if s.Reordered {
		fmt.Fprintln(w, "warning:   keyframes were out of order and have been sorted")
	}
	if s.Truncated {
		fmt.Fprintln(w, "warning:   script was truncated at a read or keyframe limit")
	}
	if len(s.Skipped) > 0 {
		lines := make([]string, len(s.Skipped))
		for i, n := range s.Skipped {
			lines[i] = fmt.Sprintf("%d", n)
		}
		fmt.Fprintf(w, "warning:   skipped malformed lines %s\n", strings.Join(lines, ", "))
	}

	if !dump {
		return
	}
	fmt.Fprintln(w)
	for _, kf := range kfs {
		fmt.Fprintf(w, "%8d  %-24s %6d %6d\n", kf.Tick, replay.FormatButtons(kf.Buttons), kf.StickX, kf.StickY)
	}
}
