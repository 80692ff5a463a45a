package kv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ValentinKolb/seglog/cmd/util"
	"github.com/ValentinKolb/seglog/lib/store/command"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	execCmd = &cobra.Command{
		Use:   "exec [file]",
		Short: "Executes a stream of commands against the local store",
		Long: `Executes a stream of commands against the local store and prints one result per command.
The input is read from file, or from stdin if file is omitted or "-".

By default the input is a stream of binary commands (see "kv encode"). With --text every
non-empty line that does not start with # is one command:

  put <key> <value>
  update <key> <value>
  get <key>

The value is the rest of the line and may contain spaces.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExec,
	}
	encodeCmd = &cobra.Command{
		Use:   "encode [file]",
		Short: "Converts a text command script into a binary command stream",
		Long:  `Reads a text command script (see "kv exec --text") from file or stdin and writes the binary command stream to stdout.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEncode,
	}
)

func init() {
	key := "text"
	execCmd.Flags().Bool(key, false, util.WrapString("Read a text script instead of binary commands"))

	key = "batch-size"
	execCmd.Flags().Int(key, 1024, util.WrapString("Number of commands executed as one pipelined batch"))
}

func runExec(cmd *cobra.Command, args []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	batchSize := viper.GetInt("batch-size")
	if batchSize < 1 {
		return fmt.Errorf("batch-size must be at least 1, got %d", batchSize)
	}

	in, closeIn, err := openInput(args)
	if err != nil {
		return err
	}
	defer closeIn()

	next := commandReader(in, viper.GetBool("text"))
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	stats := execStats{}
	batch := make([]command.Command, 0, batchSize)
	for {
		c, err := next()
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if err == nil {
			batch = append(batch, c)
		}

		if len(batch) == batchSize || (errors.Is(err, io.EOF) && len(batch) > 0) {
			for _, resp := range localStore.ExecuteBatch(batch) {
				stats.add(resp)
				fmt.Fprintln(out, resp)
			}
			batch = batch[:0]
		}

		if errors.Is(err, io.EOF) {
			break
		}
	}

	if stats.rejected > 0 {
		log.Warningf("%d writes were rejected because the log had no capacity left", stats.rejected)
	}
	log.Infof("executed %d commands (%d writes, %d gets, %d errors)", stats.total, stats.writes, stats.gets, stats.errors)
	return nil
}

func runEncode(_ *cobra.Command, args []string) error {
	in, closeIn, err := openInput(args)
	if err != nil {
		return err
	}
	defer closeIn()

	next := commandReader(in, true)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for {
		c, err := next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := out.Write(c.Serialize()); err != nil {
			return err
		}
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// execStats counts the results of executed commands
type execStats struct {
	total, writes, rejected, gets, errors int
}

func (s *execStats) add(resp command.Response) {
	s.total++
	switch {
	case resp.Err != nil:
		s.errors++
	case resp.IsGet():
		s.gets++
	case resp.Ok:
		s.writes++
	default:
		s.rejected++
	}
}

// openInput opens the file named by args, or stdin
func openInput(args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// commandReader returns a function yielding the next command of r until io.EOF
func commandReader(r io.Reader, text bool) func() (command.Command, error) {
	if !text {
		br := bufio.NewReader(r)
		var offset int64
		return func() (command.Command, error) {
			var c command.Command
			n, err := c.ReadFrom(br)
			if err == io.EOF {
				return c, err
			}
			if err == nil {
				err = validateCommand(c)
			}
			if err != nil {
				return command.Command{}, fmt.Errorf("command at offset %d: %w", offset, err)
			}
			offset += n
			return c, nil
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 2*64*1024)
	line := 0
	return func() (command.Command, error) {
		for scanner.Scan() {
			line++
			entry := strings.TrimSpace(scanner.Text())
			if entry == "" || strings.HasPrefix(entry, "#") {
				continue
			}
			c, err := parseTextCommand(entry)
			if err != nil {
				return command.Command{}, fmt.Errorf("line %d: %w", line, err)
			}
			return c, nil
		}
		if err := scanner.Err(); err != nil {
			return command.Command{}, err
		}
		return command.Command{}, io.EOF
	}
}

// validateCommand rejects writes the store would refuse as programming errors
func validateCommand(c command.Command) error {
	if c.Type != command.TypeGet && (len(c.Key) == 0 || len(c.Value) == 0) {
		return fmt.Errorf("%s with empty key or value", c.Type)
	}
	return nil
}

// parseTextCommand parses a single line of a text script
func parseTextCommand(line string) (command.Command, error) {
	op, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimLeft(rest, " ")

	switch strings.ToLower(op) {
	case "get":
		if rest == "" || strings.Contains(rest, " ") {
			return command.Command{}, fmt.Errorf("get expects exactly one key, got %q", rest)
		}
		return command.Get([]byte(rest)), nil
	case "put", "update":
		key, value, _ := strings.Cut(rest, " ")
		if key == "" || value == "" {
			return command.Command{}, fmt.Errorf("%s expects a key and a value, got %q", op, rest)
		}
		if strings.EqualFold(op, "put") {
			return command.Put([]byte(key), []byte(value)), nil
		}
		return command.Update([]byte(key), []byte(value)), nil
	default:
		return command.Command{}, fmt.Errorf("unknown command %q", op)
	}
}
