package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gourdian25/gourdianringlog/filesink"
	"github.com/gourdian25/gourdianringlog/internal/entryfilter"
	"github.com/gourdian25/gourdianringlog/pebblesink"
)

type dumpOptions struct {
	pebbleDir string
	file      string
	filter    string
	session   string
	verbose   bool
}

func newDumpCommand() *cobra.Command {
	var opts dumpOptions

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print persisted records from a Pebble directory or a log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case opts.pebbleDir != "" && opts.file != "":
				return errors.New("use either --pebble-dir or --file")
			case opts.file != "":
				return dumpFile(cmd.OutOrStdout(), opts.file)
			case opts.pebbleDir != "":
				return dumpPebble(cmd.OutOrStdout(), opts)
			default:
				return errors.New("one of --pebble-dir or --file is required")
			}
		},
	}

	cmd.Flags().StringVar(&opts.pebbleDir, "pebble-dir", "", "Pebble database directory")
	cmd.Flags().StringVar(&opts.file, "file", "", "Log file or rotated backup (.log or .log.zst)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "CEL expression selecting Pebble entries, e.g. 'severity >= 3'")
	cmd.Flags().StringVar(&opts.session, "session", "", "Restrict to one boot session UUID")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Prefix each line with its session and sequence")
	return cmd
}

func dumpFile(w io.Writer, path string) error {
	data, err := filesink.ReadAll(path)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func dumpPebble(w io.Writer, opts dumpOptions) error {
	filter, err := entryfilter.New(opts.filter)
	if err != nil {
		return fmt.Errorf("invalid --filter: %w", err)
	}

	var session uuid.UUID
	if opts.session != "" {
		if session, err = uuid.Parse(opts.session); err != nil {
			return fmt.Errorf("invalid --session: %w", err)
		}
	}

	sink, err := pebblesink.Open(pebblesink.Options{DataDir: opts.pebbleDir, Session: session})
	if err != nil {
		return err
	}
	defer sink.Close()

	emit := func(e pebblesink.Entry) error {
		ok, err := filter.Match(e)
		if err != nil || !ok {
			return err
		}
		if opts.verbose {
			fmt.Fprintf(w, "%s %6d ", e.Session, e.Seq)
		}
		_, err = io.WriteString(w, e.Line)
		return err
	}

	if session != uuid.Nil {
		return sink.ScanSession(session, emit)
	}
	return sink.Scan(emit)
}
