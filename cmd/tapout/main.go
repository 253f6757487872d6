// tapout renders TAP (Test Anything Protocol) streams as information-dense
// terminal output.
//
// Usage:
//
//	node --test --test-reporter=tap | tapout
//	prove -v t/ | tapout -format llm
//	tapout -tui results.tap
//	tapout a.tap b.tap c.tap
//
// Output modes (auto-detected):
//
//	terminal  styled Unicode output (live view when stdin feeds a TTY)
//	llm       terse plain text for AI consumption (default when piped)
//	json      structured JSON for automation
//	events    one JSON object per parsed TAP event (NDJSON)
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/dkoosis/tapout/internal/config"
	"github.com/dkoosis/tapout/internal/detect"
	"github.com/dkoosis/tapout/internal/logging"
	"github.com/dkoosis/tapout/internal/version"
	"github.com/dkoosis/tapout/pkg/mapper"
	"github.com/dkoosis/tapout/pkg/render"
	"github.com/dkoosis/tapout/pkg/stream"
	"github.com/dkoosis/tapout/pkg/tap"
	"github.com/dkoosis/tapout/pkg/tui"
)

const peekSize = 4096

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// input is one parsed TAP source.
type input struct {
	name    string
	session *tap.Session
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	start := time.Now()

	fs := flag.NewFlagSet("tapout", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var flags config.CliFlags
	fs.StringVar(&flags.Format, "format", "auto", "Output format: auto, terminal, llm, json, events")
	fs.StringVar(&flags.Theme, "theme", "default", "Theme: default, orca, mono")
	fs.StringVar(&flags.ConfigPath, "config", "", "Config file (default: ./.tapout.yaml, then user config dir)")
	fs.BoolVar(&flags.Debug, "debug", false, "Log debug information to stderr")
	fs.BoolVar(&flags.NoColor, "no-color", false, "Disable colors")
	fs.IntVar(&flags.MaxLineLength, "max-line", tap.DefaultMaxLineLength, "Longest accepted input line in bytes")
	tuiFlag := fs.Bool("tui", false, "Browse results interactively")
	versionFlag := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			flags.FormatSet = true
		case "theme":
			flags.ThemeSet = true
		case "debug":
			flags.DebugSet = true
		case "no-color":
			flags.NoColorSet = true
		case "max-line":
			flags.MaxLineLengthSet = true
		}
	})

	if *versionFlag {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	cfg, err := config.ResolveConfig(flags)
	if err != nil {
		fmt.Fprintf(stderr, "tapout: %v\n", err)
		return 2
	}
	log := logging.New(stderr, cfg.Debug)
	log.Debug("config resolved",
		"file", cfg.ConfigFile,
		"format", cfg.Format, "format_source", cfg.FormatSource,
		"theme", cfg.Theme, "theme_source", cfg.ThemeSource)

	opts := []tap.Option{tap.WithLogger(log), tap.WithMaxLineLength(cfg.MaxLineLength)}
	files := fs.Args()

	if *tuiFlag && len(files) > 1 {
		fmt.Fprintf(stderr, "tapout: -tui accepts a single input\n")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var inputs []input
	if len(files) == 0 || (len(files) == 1 && files[0] == "-") {
		br := bufio.NewReaderSize(stdin, 8*1024)
		peeked, _ := br.Peek(peekSize)
		if len(peeked) == 0 {
			fmt.Fprintf(stderr, "tapout: no input on stdin\n")
			return 2
		}
		if code := checkFormat(detect.Sniff(peeked), "stdin", log, stderr); code >= 0 {
			return code
		}

		// Live stream view: piped TAP into a terminal with auto format.
		if cfg.Format == "auto" && !*tuiFlag && isTTYWriter(stdout) {
			return runStream(ctx, stdin, br, stdout, cfg.Theme, opts)
		}

		s, err := tap.Parse(br, opts...)
		if err != nil {
			fmt.Fprintf(stderr, "tapout: parsing stdin: %v\n", err)
			return 2
		}
		inputs = []input{{name: "stdin", session: s}}
	} else {
		inputs, err = parseFiles(ctx, files, cfg.Jobs, log, opts)
		if err != nil {
			if ctx.Err() != nil {
				return 130
			}
			fmt.Fprintf(stderr, "tapout: %v\n", err)
			var fe *formatError
			if errors.As(err, &fe) {
				fmt.Fprintf(stderr, "%s\n", fe.hint())
			}
			return 2
		}
	}

	for _, in := range inputs {
		if in.session.Truncated() {
			fmt.Fprintf(stderr, "tapout: warning: %s ended inside a diagnostic block; last assertion dropped\n", in.name)
		}
	}

	if *tuiFlag {
		if !isTTYWriter(stdout) {
			fmt.Fprintf(stderr, "tapout: -tui requires a terminal\n")
			return 2
		}
		if err := tui.Run(ctx, inputs[0].session, render.ThemeByName(cfg.Theme)); err != nil {
			if ctx.Err() != nil {
				return 130
			}
			fmt.Fprintf(stderr, "tapout: %v\n", err)
			return 2
		}
		return exitCode(inputs)
	}

	mode := resolveFormat(cfg.Format, stdout)
	if mode == "events" {
		if err := writeEvents(stdout, inputs); err != nil {
			fmt.Fprintf(stderr, "tapout: writing events: %v\n", err)
			return 2
		}
		return exitCode(inputs)
	}

	renderer := selectRenderer(mode, cfg.Theme, stdout)
	elapsed := time.Since(start)
	for _, in := range inputs {
		if len(inputs) > 1 && mode != "json" {
			fmt.Fprintf(stdout, "== %s ==\n", in.name)
		}
		fmt.Fprint(stdout, renderer.Render(mapper.FromTAP(in.session, elapsed)))
	}
	return exitCode(inputs)
}

// formatError reports input that is recognizably not TAP.
type formatError struct {
	name   string
	format detect.Format
}

func (e *formatError) Error() string {
	return fmt.Sprintf("%s: input is %s, not TAP", e.name, e.format)
}

func (e *formatError) hint() string {
	return "tapout: hint: run the test tool with its TAP reporter (e.g. node --test --test-reporter=tap)"
}

// checkFormat rejects recognizably non-TAP input. Unknown input is parsed
// anyway: unrecognized lines become comments. Returns -1 to continue.
func checkFormat(format detect.Format, name string, log *slog.Logger, stderr io.Writer) int {
	switch format {
	case detect.JSON:
		fe := &formatError{name: name, format: format}
		fmt.Fprintf(stderr, "tapout: %v\n%s\n", fe, fe.hint())
		return 2
	case detect.Unknown:
		log.Debug("no TAP structure near start of input", "input", name)
	}
	return -1
}

// parseFiles reads and parses files concurrently. Results keep argument order.
func parseFiles(ctx context.Context, files []string, jobs int, log *slog.Logger, opts []tap.Option) ([]input, error) {
	inputs := make([]input, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, name := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(name)
			if err != nil {
				return fmt.Errorf("reading %s: %w", name, err)
			}
			switch detect.Sniff(data) {
			case detect.JSON:
				return &formatError{name: name, format: detect.JSON}
			case detect.Unknown:
				log.Debug("no TAP structure near start of input", "input", name)
			}
			s, err := tap.ParseBytes(data, opts...)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", name, err)
			}
			inputs[i] = input{name: name, session: s}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inputs, nil
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termSize returns the terminal dimensions for w, defaulting to 80x24.
func termSize(w io.Writer) (width, height int) {
	width, height = 80, 24
	if f, ok := w.(*os.File); ok {
		if tw, th, err := term.GetSize(int(f.Fd())); err == nil {
			if tw > 0 {
				width = tw
			}
			if th > 0 {
				height = th
			}
		}
	}
	return width, height
}

// runStream handles the live streaming path (piped TAP + TTY).
func runStream(ctx context.Context, stdin io.Reader, br *bufio.Reader, stdout io.Writer, themeName string, opts []tap.Option) int {
	// Close the underlying reader on cancel to unblock the scanner.
	// bufio.Reader doesn't implement io.Closer, so Stream can't close it itself.
	if c, ok := stdin.(io.Closer); ok {
		stopClose := context.AfterFunc(ctx, func() { _ = c.Close() })
		defer stopClose()
	}
	width, height := termSize(stdout)
	return stream.Run(ctx, br, stdout, width, height, render.ThemeByName(themeName).StreamStyle(), opts...)
}

func writeEvents(w io.Writer, inputs []input) error {
	bw := bufio.NewWriter(w)
	enc := tap.NewEncoder(bw)
	for _, in := range inputs {
		for _, ev := range in.session.Events() {
			if err := enc.Encode(ev); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func selectRenderer(mode, themeName string, w io.Writer) render.Renderer {
	switch mode {
	case "json":
		return render.NewJSON()
	case "llm":
		return render.NewLLM()
	default:
		width, _ := termSize(w)
		return render.NewTerminal(render.ThemeByName(themeName), width)
	}
}

func resolveFormat(format string, w io.Writer) string {
	if format != "auto" {
		return format
	}
	// Auto-detect: TTY = terminal, piped = llm
	if isTTYWriter(w) {
		return "terminal"
	}
	return "llm"
}

// exitCode returns 1 if any input is failing by tap.Stats.Failing, else 0.
func exitCode(inputs []input) int {
	for _, in := range inputs {
		if tap.ComputeStats(in.session).Failing() {
			return 1
		}
	}
	return 0
}
