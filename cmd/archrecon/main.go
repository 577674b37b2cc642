// Command archrecon creates, merges and inspects project architecture
// documents.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"archrecon/internal/app"
	"archrecon/internal/architecture/reconcile"
	"archrecon/internal/config"
	"archrecon/internal/service/architecture"
	"archrecon/internal/util/jsonutil"
)

const usage = `usage: archrecon <command> [flags]

commands:
  create     create or replace fields of a document      -project -author [-f file]
  merge      merge a section update into a document      -project -section -author [-f file]
  show       print the stored document                    -project
  delete     delete the stored document                   -project
  generate   ask the text generator for a section update  -project [-section] -prompt
  snapshots  list stored versions or print one            -project [-version]

Payloads are read from -f (JSON, or YAML for .yaml/.yml) or stdin.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "archrecon:", err)
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return flag.ErrHelp
	}
	cmd, rest := args[0], args[1:]

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stdout)
	project := fs.String("project", "", "project reference")
	author := fs.String("author", strings.TrimSpace(os.Getenv("USER")), "author recorded on the document")
	section := fs.String("section", "", "section to merge: structure, endpoints, modules")
	file := fs.String("f", "", "payload file; stdin when empty")
	prompt := fs.String("prompt", "", "instruction for the text generator")
	version := fs.Int64("version", 0, "snapshot version to print")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	svc := a.Service

	switch cmd {
	case "create":
		payload, err := readPayload(*file, stdin)
		if err != nil {
			return err
		}
		res, err := svc.Create(ctx, *project, *author, payload)
		if err != nil {
			return describe(err)
		}
		return printJSON(stdout, map[string]any{
			"document": res.Document,
			"present":  res.Present,
			"dropped":  res.Dropped,
		})
	case "merge":
		payload, err := readPayload(*file, stdin)
		if err != nil {
			return err
		}
		res, err := svc.Merge(ctx, architecture.MergeRequest{
			ProjectRef: *project,
			Section:    *section,
			Payload:    payload,
			Author:     *author,
		})
		if err != nil {
			return describe(err)
		}
		return printJSON(stdout, mergeOutput(res.Result))
	case "show":
		doc, ok, err := svc.Get(ctx, *project)
		if err != nil {
			return describe(err)
		}
		if !ok {
			return fmt.Errorf("no architecture document for project %q", *project)
		}
		return printJSON(stdout, doc)
	case "delete":
		ok, err := svc.Delete(ctx, *project)
		if err != nil {
			return describe(err)
		}
		return printJSON(stdout, map[string]any{"deleted": ok})
	case "generate":
		res, err := svc.GenerateAndMerge(ctx, architecture.GenerateRequest{
			ProjectRef:  *project,
			Section:     *section,
			Instruction: *prompt,
			Author:      *author,
		})
		if err != nil {
			return describe(err)
		}
		out := mergeOutput(res.Result)
		out["prose"] = res.Prose
		return printJSON(stdout, out)
	case "snapshots":
		if *version > 0 {
			doc, err := svc.Snapshot(ctx, *project, *version)
			if err != nil {
				return err
			}
			return printJSON(stdout, doc)
		}
		versions, err := svc.Snapshots(ctx, *project)
		if err != nil {
			return err
		}
		return printJSON(stdout, map[string]any{"versions": versions})
	}
	fmt.Fprint(stdout, usage)
	return fmt.Errorf("unknown command %q: %w", cmd, flag.ErrHelp)
}

// mergeOutput is the caller facing shape of a partial update.
func mergeOutput(r reconcile.Result) map[string]any {
	return map[string]any{
		"sectionFieldName": r.Field,
		"mergedFragment":   r.Fragment,
		"itemCount":        r.ItemCount,
		"countLabel":       r.CountLabel(),
		"added":            r.Summary.Added,
		"updated":          r.Summary.Updated,
	}
}

func readPayload(path string, stdin io.Reader) (any, error) {
	var (
		raw []byte
		err error
	)
	if path == "" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var v any
		if err := yaml.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("parse yaml payload: %w", err)
		}
		return stringKeys(v), nil
	}
	// JSON text goes to the reconciler as is; it reports malformed input.
	return raw, nil
}

// stringKeys converts the map[any]any nodes yaml.v3 produces for non-string
// keys such as `200: OK` into map[string]any.
func stringKeys(v any) any {
	switch x := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case map[string]any:
		for k, val := range x {
			x[k] = stringKeys(val)
		}
		return x
	case []any:
		for i, val := range x {
			x[i] = stringKeys(val)
		}
		return x
	}
	return v
}

// describe adds the rejection stage to taxonomy errors.
func describe(err error) error {
	var (
		unsupported *reconcile.UnsupportedSectionError
		malformed   *reconcile.MalformedPayloadError
		notFound    *reconcile.DocumentNotFoundError
		invalid     *reconcile.ValidationError
	)
	switch {
	case errors.As(err, &unsupported):
		return fmt.Errorf("rejected at %s: %w", unsupported.Stage, err)
	case errors.As(err, &malformed):
		return fmt.Errorf("rejected at %s: %w", malformed.Stage, err)
	case errors.As(err, &notFound):
		return fmt.Errorf("rejected at %s: %w (run create first)", notFound.Stage, err)
	case errors.As(err, &invalid):
		return fmt.Errorf("rejected at %s: %w", invalid.Stage, err)
	}
	return err
}

func printJSON(w io.Writer, v any) error {
	b, err := jsonutil.MarshalNoEscapeIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
