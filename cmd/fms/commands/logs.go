package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/config"
)

// textTimeLayout is the timestamp the text log handler writes between the
// leading brackets of each line.
const textTimeLayout = "2006-01-02 15:04:05.000"

var (
	logsFollow bool
	logsLines  int
	logsSince  string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Tail server logs",
	Long: `Display and optionally follow the fms server logs.

This command reads the log file named by logging.output in the configuration.
A server logging to stdout or stderr has no file to read.

Both log formats are understood: --since compares against the bracketed
timestamp of text lines and the "time" field of JSON lines. Lines without a
timestamp are always shown.

Examples:
  # Show last 100 lines (default)
  fms logs

  # Show last 50 lines
  fms logs -n 50

  # Follow logs in real-time
  fms logs -f

  # Show logs since a specific time
  fms logs --since "2024-01-15T10:00:00Z"`,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 100, "Number of lines to show")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since timestamp (RFC3339 format)")
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logFile := cfg.Logging.Output
	if logFile == "stdout" || logFile == "stderr" {
		return fmt.Errorf("server is configured to log to %s, not a file\nSet 'logging.output' to a file path to use this command", logFile)
	}
	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		return fmt.Errorf("log file not found: %s\nThe server may not have started yet or is logging elsewhere", logFile)
	}

	var since time.Time
	if logsSince != "" {
		since, err = time.Parse(time.RFC3339, logsSince)
		if err != nil {
			return fmt.Errorf("invalid --since format (use RFC3339): %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if err := showLogs(logFile, out, logsLines, since); err != nil {
		return err
	}
	if !logsFollow {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := newFollower(logFile)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(cmd.ErrOrStderr(), "Following %s (Ctrl+C to stop)...\n", logFile)
	return f.Run(ctx, out)
}

// showLogs writes the last n lines of logFile at or after since.
func showLogs(logFile string, w io.Writer, n int, since time.Time) error {
	file, err := os.Open(logFile)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	lines, err := tailLines(file, n, since)
	if err != nil {
		return fmt.Errorf("error reading log file: %w", err)
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	return nil
}

// tailLines returns the last n lines of r whose timestamp is not before
// since. Only n lines are kept in memory.
func tailLines(r io.Reader, n int, since time.Time) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	ring := make([]string, 0, min(n, 1024))
	next := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !since.IsZero() {
			if t := lineTime(line); !t.IsZero() && t.Before(since) {
				continue
			}
		}
		if len(ring) < n {
			ring = append(ring, line)
			continue
		}
		ring[next] = line
		next = (next + 1) % n
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return append(ring[next:len(ring):len(ring)], ring[:next]...), nil
}

// lineTime extracts the timestamp of a log line written by either handler.
// It returns the zero time when the line carries none.
func lineTime(line string) time.Time {
	if strings.HasPrefix(line, "{") {
		var rec struct {
			Time time.Time `json:"time"`
		}
		if json.Unmarshal([]byte(line), &rec) == nil {
			return rec.Time
		}
		return time.Time{}
	}

	if len(line) > len(textTimeLayout)+1 && line[0] == '[' && line[len(textTimeLayout)+1] == ']' {
		if t, err := time.ParseInLocation(textTimeLayout, line[1:len(textTimeLayout)+1], time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// follower streams lines appended to a log file.
type follower struct {
	path    string
	file    *os.File
	reader  *bufio.Reader
	watcher *fsnotify.Watcher
	partial string
}

// newFollower opens path positioned at its end and starts watching it.
// Lines written after newFollower returns are reported by Run.
func newFollower(path string) (*follower, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch log file: %w", err)
	}

	file, err := os.Open(path)
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		_ = file.Close()
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to seek to end of log file: %w", err)
	}

	return &follower{path: path, file: file, reader: bufio.NewReader(file), watcher: watcher}, nil
}

// Run copies complete lines to w until ctx is done or the file goes away.
func (f *follower) Run(ctx context.Context, w io.Writer) error {
	if err := f.drain(w); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-f.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				return fmt.Errorf("log file %s was removed", f.path)
			}
			if event.Has(fsnotify.Write) {
				if err := f.drain(w); err != nil {
					return err
				}
			}

		case err, ok := <-f.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// drain writes every complete line available. A trailing fragment is held
// back until its newline arrives. A file truncated below the read offset is
// read again from the start.
func (f *follower) drain(w io.Writer) error {
	if err := f.rewindIfTruncated(); err != nil {
		return err
	}

	for {
		chunk, err := f.reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			f.partial += chunk
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading log file: %w", err)
		}
		if _, err := io.WriteString(w, f.partial+chunk); err != nil {
			return err
		}
		f.partial = ""
	}
}

func (f *follower) rewindIfTruncated() error {
	info, err := f.file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	offset, err := f.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("failed to read log file offset: %w", err)
	}
	// The reader has consumed the file up to offset minus what it buffers.
	if info.Size() >= offset-int64(f.reader.Buffered()) {
		return nil
	}
	if _, err := f.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind log file: %w", err)
	}
	f.reader.Reset(f.file)
	f.partial = ""
	return nil
}

// Close stops watching and closes the file.
func (f *follower) Close() {
	_ = f.watcher.Close()
	_ = f.file.Close()
}
