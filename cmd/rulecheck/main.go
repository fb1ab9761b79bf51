package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/GriffinCanCode/ReaderOS/backend/internal/engine"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/providers/http/client"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/shared/urls"
	"github.com/bytedance/sonic"
)

var output = sonic.Config{SortMapKeys: true}.Froze()

// fieldStart matches the "name=" that begins each entry of -fields.
var fieldStart = regexp.MustCompile(`(?:^|,)\s*([A-Za-z_][A-Za-z0-9_]*)=`)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "rulecheck:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("rulecheck", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		file    = fs.String("file", "", "payload file, - for stdin")
		target  = fs.String("url", "", "fetch the payload from a request spec instead of a file")
		rule    = fs.String("rule", "", "rule to evaluate against the whole payload")
		list    = fs.String("list", "", "list rule; enables per-item -fields")
		fields  = fs.String("fields", "", "per-item field rules: name=RULE,name=RULE")
		base    = fs.String("base", "", "base URL for resolving links")
		all     = fs.Bool("all", false, "evaluate -rule in list mode")
		resolve = fs.Bool("resolve", false, "resolve extracted values against -base")
		verbose = fs.Bool("v", false, "log degraded rules and payloads to stderr")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *rule == "" && *list == "" {
		return errors.New("one of -rule or -list is required")
	}
	if (*file == "") == (*target == "") {
		return errors.New("exactly one of -file or -url is required")
	}
	if *target != "" && !urls.IsHTTP(client.ParseRequestSpec(*target).URL) {
		return fmt.Errorf("-url must be an absolute http(s) URL: %q", *target)
	}

	if *verbose {
		logger, err := logging.New(logging.Config{Level: "debug", Development: true, OutputPaths: []string{"stderr"}})
		if err != nil {
			return err
		}
		defer logger.Sync()
		engine.SetLogger(logger.Component("engine"))
	}

	payload, finalURL, err := load(ctx, *file, *target, stdin)
	if err != nil {
		return err
	}
	if *base == "" {
		*base = finalURL
	}

	probe := engine.Probe{
		Rule:       *rule,
		List:       *list,
		Fields:     parseFields(*fields),
		All:        *all,
		BaseURL:    *base,
		ResolveURL: *resolve,
	}
	result := engine.NewDocument(payload).Run(probe)

	out, err := output.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(out))
	return err
}

func load(ctx context.Context, file, target string, stdin io.Reader) (payload, finalURL string, err error) {
	if target != "" {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		resp, err := client.NewClient(client.DefaultConfig(), nil).Fetch(ctx, target, nil)
		if err != nil {
			return "", "", err
		}
		return resp.Body, resp.FinalURL, nil
	}

	var data []byte
	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", "", err
	}
	return string(data), "", nil
}

// parseFields splits "name=RULE,other=RULE". A comma only starts a new
// entry when it is followed by an identifier and "=", so rules may
// contain commas.
func parseFields(spec string) map[string]string {
	fields := map[string]string{}
	matches := fieldStart.FindAllStringSubmatchIndex(spec, -1)
	for i, m := range matches {
		end := len(spec)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		name := spec[m[2]:m[3]]
		fields[name] = strings.TrimSpace(spec[m[1]:end])
	}
	return fields
}
