// Command logviewer follows the userdesk log files and prints new entries
// as they are written. Typed characters narrow the output to matching
// entries; backspace removes the last one.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"userdesk/local-app/internal/logview"
	"userdesk/local-app/internal/ui"
)

// gapDelay is the quiet period after which a separator is printed.
const gapDelay = 100 * time.Millisecond

// viewer owns the terminal output and the typed filter.
type viewer struct {
	mu         sync.Mutex
	filter     string
	lastPrint  time.Time
	gapPrinted bool
	u          *ui.UI
	raw        bool
}

func (v *viewer) println(text string) {
	if v.raw {
		// Raw mode does not translate newlines.
		text = crlf(text)
		v.u.Print(text + "\r\n")
		return
	}
	v.u.Println(text)
}

func crlf(text string) string {
	out := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			out = append(out, '\r')
		}
		out = append(out, text[i])
	}
	return string(out)
}

func (v *viewer) show(lines []logview.Line, notices []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, notice := range notices {
		v.println(notice)
	}
	for _, line := range lines {
		if logview.Matches(line.Text, v.filter) {
			v.println(line.Text)
			v.lastPrint = time.Now()
			v.gapPrinted = false
		}
	}
}

func (v *viewer) markGap() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.gapPrinted && time.Since(v.lastPrint) > gapDelay {
		v.println("◆")
		v.gapPrinted = true
	}
}

// edit applies one keystroke to the filter. It reports false on Ctrl-C.
func (v *viewer) edit(b byte) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case b == 3:
		return false
	case b == 127 || b == 8:
		if len(v.filter) > 0 {
			v.filter = v.filter[:len(v.filter)-1]
		}
	case b >= 32 && b < 127:
		v.filter += string(b)
	default:
		return true
	}
	v.u.Print("\rCurrent filter: " + v.filter + "\x1b[K")
	return true
}

func run() error {
	var interval time.Duration
	flagSet := pflag.NewFlagSet("logviewer", pflag.ContinueOnError)
	flagSet.DurationVarP(&interval, "rate", "r", 250*time.Millisecond, "how often the log files are checked")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  logviewer [log directory] [flags]\n\nThe log directory defaults to ./logs.\n\nFlags:\n")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	logDir := "./logs"
	if args := flagSet.Args(); len(args) > 0 {
		logDir = args[0]
	}
	if info, err := os.Stat(logDir); err != nil || !info.IsDir() {
		return fmt.Errorf("log directory %q does not exist", logDir)
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	v := &viewer{u: ui.NewUI(os.Stdout, term.IsTerminal(int(os.Stdout.Fd()))), lastPrint: time.Now()}
	tailer := logview.NewTailer(logDir, logview.Formatter{Color: term.IsTerminal(int(os.Stdout.Fd()))})

	v.u.Info(fmt.Sprintf("Monitoring logs in directory: %s", logDir))

	done := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(done) }) }

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		stop()
	}()

	if interactive {
		state, err := term.MakeRaw(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to set raw mode: %w", err)
		}
		defer term.Restore(int(os.Stdin.Fd()), state)
		v.raw = true
		v.println("Start typing to filter logs. Press Ctrl-C to exit.")

		go func() {
			buf := make([]byte, 1)
			for {
				if _, err := os.Stdin.Read(buf); err != nil || !v.edit(buf[0]) {
					stop()
					return
				}
			}
		}()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	gapTicker := time.NewTicker(gapDelay / 2)
	defer gapTicker.Stop()

	poll := func() {
		lines, notices, err := tailer.Poll()
		if err != nil {
			v.show(nil, []string{err.Error()})
			return
		}
		v.show(lines, notices)
	}

	poll()
	for {
		select {
		case <-done:
			v.println("")
			v.println("Exiting...")
			return nil
		case <-gapTicker.C:
			v.markGap()
		case <-ticker.C:
			poll()
		}
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
