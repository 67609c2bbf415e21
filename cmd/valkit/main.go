// Command valkit validates credit card numbers and image files from the
// command line.
//
//	valkit card [-type Visa,Mastercard] NUMBER...
//	valkit image [-mime image/png,gif] [-header-check] [-magic magic.yaml] FILE...
//	valkit types
//
// Defaults are read from BEAVER_VALKIT_* environment variables. The exit
// status is 1 when any input is invalid and 2 on usage or configuration
// errors.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/gobeaver/valkit"
	"github.com/gobeaver/valkit/creditcard"
	"github.com/gobeaver/valkit/file"
)

const (
	exitOK      = 0
	exitInvalid = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type message struct {
	Code string `yaml:"code"`
	Text string `yaml:"text"`
}

type result struct {
	Input    string    `yaml:"input"`
	Valid    bool      `yaml:"valid"`
	Issuers  []string  `yaml:"issuers,omitempty"`
	Messages []message `yaml:"messages,omitempty"`
}

type outputFlags struct {
	format  string
	noColor bool
}

func (o *outputFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&o.format, "format", "text", "Output format: text or yaml")
	fs.BoolVar(&o.noColor, "no-color", false, "Disable colored output")
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}

	cfg, err := valkit.GetConfig()
	if err != nil {
		fmt.Fprintf(stderr, "Error loading configuration: %v\n", err)
		return exitUsage
	}
	if err := cfg.Apply(); err != nil {
		fmt.Fprintf(stderr, "Error applying configuration: %v\n", err)
		return exitUsage
	}

	switch args[0] {
	case "card":
		return runCard(cfg, args[1:], stdout, stderr)
	case "image":
		return runImage(cfg, args[1:], stdout, stderr)
	case "types":
		return runTypes(stdout)
	case "-h", "-help", "--help", "help":
		usage(stdout)
		return exitOK
	}

	fmt.Fprintf(stderr, "Unknown command %q\n\n", args[0])
	usage(stderr)
	return exitUsage
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  valkit card [-type LIST] [-obscure] [-format text|yaml] NUMBER...")
	fmt.Fprintln(w, "  valkit image [-mime LIST] [-header-check] [-magic FILE] [-format text|yaml] FILE...")
	fmt.Fprintln(w, "  valkit types")
}

func runCard(cfg *valkit.Config, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("card", flag.ContinueOnError)
	fs.SetOutput(stderr)
	types := fs.String("type", cfg.CreditCardTypes, "Accepted issuers, comma-separated (default: all)")
	obscure := fs.Bool("obscure", cfg.ValueObscured, "Mask card numbers in messages")
	var out outputFlags
	out.register(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "card: at least one NUMBER is required")
		return exitUsage
	}

	opts := cfg.CreditCardOptions()
	delete(opts, creditcard.OptionType)
	if list := valkit.SplitList(*types); len(list) > 0 {
		opts[creditcard.OptionType] = list
	}
	opts[valkit.OptionValueObscured] = *obscure

	v, err := creditcard.New(opts)
	if err != nil {
		fmt.Fprintf(stderr, "card: %v\n", err)
		return exitUsage
	}

	results := make([]result, 0, fs.NArg())
	for _, number := range fs.Args() {
		r := validate(v, number)
		for _, t := range creditcard.Detect(number) {
			r.Issuers = append(r.Issuers, string(t))
		}
		results = append(results, r)
	}
	return report(results, out, stdout, stderr)
}

func runImage(cfg *valkit.Config, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("image", flag.ContinueOnError)
	fs.SetOutput(stderr)
	mimeTypes := fs.String("mime", cfg.ImageMimeTypes, "Accepted MIME types, comma-separated (default: built-in image list)")
	headerCheck := fs.Bool("header-check", cfg.ImageHeaderCheck, "Require a genuine image header")
	magic := fs.String("magic", cfg.MagicFile, "YAML magic file with extra signatures")
	var out outputFlags
	out.register(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "image: at least one FILE is required")
		return exitUsage
	}

	opts := cfg.ImageOptions()
	delete(opts, file.OptionMimeType)
	delete(opts, file.OptionMagicFile)
	if list := valkit.SplitList(*mimeTypes); len(list) > 0 {
		opts[file.OptionMimeType] = list
	}
	opts[file.OptionEnableHeaderCheck] = *headerCheck
	if *magic != "" {
		opts[file.OptionMagicFile] = *magic
	}

	v, err := file.NewIsImage(opts)
	if err != nil {
		fmt.Fprintf(stderr, "image: %v\n", err)
		return exitUsage
	}

	results := make([]result, 0, fs.NArg())
	for _, path := range fs.Args() {
		results = append(results, validate(v, path))
	}
	return report(results, out, stdout, stderr)
}

func runTypes(stdout io.Writer) int {
	registry := creditcard.DefaultRegistry()
	for _, t := range registry.Types() {
		rule, _ := registry.Rule(t)
		fmt.Fprintf(stdout, "%-18s %s\n", t, rule)
	}
	return exitOK
}

func validate(v valkit.Validator, input string) result {
	r := result{Input: input, Valid: v.IsValid(input)}
	for _, msg := range v.Messages() {
		r.Messages = append(r.Messages, message{Code: msg.Key, Text: msg.Text})
	}
	return r
}

func report(results []result, out outputFlags, stdout, stderr io.Writer) int {
	code := exitOK
	for _, r := range results {
		if !r.Valid {
			code = exitInvalid
		}
	}

	switch out.format {
	case "yaml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			fmt.Fprintf(stderr, "Error encoding results: %v\n", err)
			return exitUsage
		}
		if err := enc.Close(); err != nil {
			fmt.Fprintf(stderr, "Error encoding results: %v\n", err)
			return exitUsage
		}
	case "text":
		color.NoColor = out.noColor || !isTerminal(stdout)
		printText(stdout, results)
	default:
		fmt.Fprintf(stderr, "Unknown format %q\n", out.format)
		return exitUsage
	}
	return code
}

func printText(w io.Writer, results []result) {
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	cyan := color.New(color.FgCyan)

	for _, r := range results {
		if r.Valid {
			fmt.Fprintf(w, "%s %s", green.Sprint("VALID  "), r.Input)
		} else {
			fmt.Fprintf(w, "%s %s", red.Sprint("INVALID"), r.Input)
		}
		if len(r.Issuers) > 0 {
			fmt.Fprintf(w, " %s", cyan.Sprintf("(%s)", strings.Join(r.Issuers, ", ")))
		}
		fmt.Fprintln(w)
		for _, msg := range r.Messages {
			fmt.Fprintf(w, "  %s: %s\n", msg.Code, msg.Text)
		}
	}
}

// isTerminal checks if w is a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
