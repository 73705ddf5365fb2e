// Package logview reads the JSON log streams written by internal/log and
// formats them for a terminal.
package logview

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"userdesk/local-app/internal/ui"
)

// Entry is one decoded log line.
type Entry map[string]interface{}

// Line is a formatted entry with the file it came from.
type Line struct {
	File string
	Text string
}

// Formatter renders entries. Colors are skipped when Color is false.
type Formatter struct {
	Color bool
}

func (f Formatter) paint(s string, color ui.Color) string {
	if !f.Color {
		return s
	}
	return lipgloss.NewStyle().Foreground(color).Render(s)
}

func formatTimestamp(timestamp string) string {
	t, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return timestamp
	}
	return t.Format("06-01-02 15:04:05.000000")
}

func levelColor(level string) ui.Color {
	switch level {
	case "DEBUG":
		return ui.ColorLightBlue
	case "INFO":
		return ui.ColorLightGreen
	case "WARN":
		return ui.ColorLightYellow
	case "ERROR":
		return ui.ColorRed
	default:
		return ui.ColorWhite
	}
}

// Format renders entry as a header line followed by one indented line per
// extra field, in key order.
func (f Formatter) Format(entry Entry) string {
	timestamp, _ := entry["time"].(string)
	level, _ := entry["level"].(string)
	msg, _ := entry["msg"].(string)
	level = strings.ToUpper(level)

	var b strings.Builder
	b.WriteString(f.paint(formatTimestamp(timestamp), ui.ColorLightPurple))
	b.WriteString(" ")
	b.WriteString(f.paint(fmt.Sprintf("%-5s", level), levelColor(level)))
	b.WriteString(" ")
	b.WriteString(msg)

	keys := make([]string, 0, len(entry))
	for key := range entry {
		if key != "time" && key != "level" && key != "msg" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, "\n    %s %v", f.paint(key+":", ui.ColorLightBlue), entry[key])
	}
	return b.String()
}

// Matches reports whether text contains filter, ignoring case. An empty
// filter matches everything.
func Matches(text, filter string) bool {
	return filter == "" || strings.Contains(strings.ToLower(text), strings.ToLower(filter))
}

// Tailer follows every *.log file in a directory, remembering how far each
// file has been read.
type Tailer struct {
	dir       string
	formatter Formatter
	positions map[string]int64
	known     map[string]bool
}

// NewTailer creates a Tailer for dir.
func NewTailer(dir string, formatter Formatter) *Tailer {
	return &Tailer{
		dir:       dir,
		formatter: formatter,
		positions: make(map[string]int64),
		known:     make(map[string]bool),
	}
}

// Poll returns the entries appended since the previous call. notices
// report new or truncated files and unreadable lines; a failure on one
// file does not stop the others.
func (t *Tailer) Poll() (lines []Line, notices []string, err error) {
	files, err := filepath.Glob(filepath.Join(t.dir, "*.log"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read log directory: %w", err)
	}
	sort.Strings(files)

	for _, path := range files {
		name := filepath.Base(path)
		if !t.known[path] {
			notices = append(notices, "New log file detected: "+name)
			t.known[path] = true
		}
		fileLines, fileNotices, err := t.read(path)
		notices = append(notices, fileNotices...)
		if err != nil {
			notices = append(notices, fmt.Sprintf("Error reading %s: %v", name, err))
		}
		lines = append(lines, fileLines...)
	}
	return lines, notices, nil
}

func (t *Tailer) read(path string) ([]Line, []string, error) {
	name := filepath.Base(path)
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, nil, err
	}

	var notices []string
	if stat.Size() < t.positions[path] {
		notices = append(notices, name+" has been truncated, starting from beginning")
		t.positions[path] = 0
	}
	if _, err := file.Seek(t.positions[path], io.SeekStart); err != nil {
		return nil, notices, err
	}

	// Only complete lines are consumed; a partial write is picked up
	// on the next poll.
	var lines []Line
	reader := bufio.NewReader(file)
	position := t.positions[path]
	for {
		raw, err := reader.ReadBytes('\n')
		if err != nil {
			break
		}
		position += int64(len(raw))

		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			notices = append(notices, fmt.Sprintf("Error parsing log entry in %s: %v", name, err))
			continue
		}
		lines = append(lines, Line{File: name, Text: t.formatter.Format(entry)})
	}
	t.positions[path] = position
	return lines, notices, nil
}
