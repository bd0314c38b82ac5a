package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/runlet-dev/runlet/internal/config"
	clierrors "github.com/runlet-dev/runlet/internal/errors"
	"github.com/runlet-dev/runlet/internal/output"
)

// followPollInterval is how often --follow re-checks the log for growth.
const followPollInterval = 250 * time.Millisecond

func newLogsCmd() *cobra.Command {
	var (
		flags  workerFlags
		lines  int
		follow bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the worker's output",
		Long: `Logs prints the tail of the worker log, which holds the worker's
combined stdout and stderr from the most recent 'runlet start'.

With --follow, new output is streamed as the worker writes it, until
interrupted with Ctrl-C.`,
		Example: `  runlet logs
  runlet logs -n 100
  runlet logs --follow`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			spec := resolveSpec(config.Load(), flags)
			logPath := logfilePath(spec)

			file, err := os.Open(logPath)
			if err != nil {
				if os.IsNotExist(err) {
					return clierrors.LogFileMissing(logPath)
				}

				return clierrors.Wrap(clierrors.ExitGeneral, "Cannot open worker log", err)
			}
			defer file.Close()

			offset, err := printTail(out, file, lines)
			if err != nil {
				return clierrors.Wrap(clierrors.ExitGeneral, "Cannot read worker log", err)
			}

			if !follow {
				return nil
			}

			return followLog(cmd, out, file, offset)
		},
	}

	addWorkerFlags(cmd.Flags(), &flags)
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream new output as it is written")

	return cmd
}

// printTail writes the last n lines of file to out and returns the
// offset at the end of the content it printed.
func printTail(out *output.Writer, file *os.File, n int) (int64, error) {
	info, err := file.Stat()
	if err != nil {
		return 0, err
	}

	// The worker log is a plain append-only file; reading it whole is
	// fine at the sizes a single run produces.
	data := make([]byte, info.Size())
	if _, err := io.ReadFull(file, data); err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, err
	}

	content := strings.TrimRight(string(data), "\n")
	if content == "" {
		return info.Size(), nil
	}

	all := strings.Split(content, "\n")
	if n > 0 && len(all) > n {
		all = all[len(all)-n:]
	}

	for _, line := range all {
		fmt.Fprintln(out, line)
	}

	return info.Size(), nil
}

// followLog streams appended log content until interrupted. Truncation
// (a fresh 'runlet start') resets the read offset.
func followLog(cmd *cobra.Command, out *output.Writer, file *os.File, offset int64) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	ticker := time.NewTicker(followPollInterval)

	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		info, err := file.Stat()
		if err != nil {
			return nil
		}

		if info.Size() < offset {
			offset = 0
		}

		if info.Size() == offset {
			continue
		}

		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			return nil
		}

		reader := bufio.NewReader(file)

		n, err := io.Copy(out, reader)
		if err != nil {
			return nil
		}

		offset += n
	}
}
