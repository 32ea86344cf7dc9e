package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/apcooley/grafty/internal/indexer"
	"github.com/apcooley/grafty/internal/models"
	"github.com/apcooley/grafty/internal/patchset"
	"github.com/apcooley/grafty/internal/selector"
	"github.com/apcooley/grafty/internal/textedit"
	"github.com/apcooley/grafty/internal/vcs"
)

// buildResolver indexes the given paths (files or directories; "." when
// empty) and returns a resolver over the result.
func buildResolver(cmd *cli.Command, paths []string) (*selector.Resolver, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	ix := indexer.Default()
	log := logger(cmd)

	indices := make(map[string]*models.FileIndex)
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot stat %s: %w", p, err)
		}
		if info.IsDir() {
			dirIndices, err := ix.IndexDir(p, log)
			if err != nil {
				return nil, err
			}
			for path, fi := range dirIndices {
				indices[path] = fi
			}
			continue
		}
		fi, err := ix.IndexFile(p)
		if err != nil {
			return nil, err
		}
		indices[p] = fi
	}
	return selector.New(indices), nil
}

// printNodes renders nodes as an aligned table, or one node per line in
// compact id-only form.
func printNodes(nodes []*models.Node, compact bool) {
	if compact {
		for _, n := range nodes {
			fmt.Printf("%s %s:%s:%s\n", n.ID, n.Path, n.Kind, n.Name)
		}
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tNAME\tLOCATION")
	for _, n := range nodes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s:%d-%d\n",
			n.ID, n.Kind, n.Name, n.Path, n.StartLine, n.EndLine)
	}
	w.Flush()
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:      "index",
		Usage:     "Index files or directories and list the structural nodes found",
		ArgsUsage: "[paths...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "compact", Usage: "One node per line: id and selector"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r, err := buildResolver(cmd, cmd.Args().Slice())
			if err != nil {
				return err
			}
			nodes := r.Nodes()
			if len(nodes) == 0 {
				fmt.Println("no nodes found")
				return nil
			}
			printNodes(nodes, cmd.Bool("compact"))
			return nil
		},
	}
}

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve a selector against indexed files",
		ArgsUsage: "SELECTOR [paths...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) == 0 {
				return fmt.Errorf("selector is required")
			}
			r, err := buildResolver(cmd, args[1:])
			if err != nil {
				return err
			}
			res := r.Resolve(args[0])
			switch res.Status {
			case models.StatusResolved:
				printNodes([]*models.Node{res.Node}, false)
				return nil
			case models.StatusAmbiguous:
				fmt.Printf("ambiguous: %d candidates\n", len(res.Candidates))
				printNodes(res.Candidates, false)
				return fmt.Errorf("selector is ambiguous")
			default:
				return fmt.Errorf("not found: %s", res.Reason)
			}
		},
	}
}

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "List nodes matching a glob pattern (name glob or pathGlob[:kindGlob[:nameGlob]])",
		ArgsUsage: "PATTERN [paths...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "compact", Usage: "One node per line: id and selector"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) == 0 {
				return fmt.Errorf("pattern is required")
			}
			r, err := buildResolver(cmd, args[1:])
			if err != nil {
				return err
			}
			var nodes []*models.Node
			if strings.Contains(args[0], ":") {
				nodes = r.QueryBySelector(args[0])
			} else {
				nodes = r.QueryByName(args[0])
			}
			if len(nodes) == 0 {
				fmt.Println("no nodes matched")
				return nil
			}
			printNodes(nodes, cmd.Bool("compact"))
			return nil
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print the text of the node a selector resolves to",
		ArgsUsage: "SELECTOR [paths...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) == 0 {
				return fmt.Errorf("selector is required")
			}
			r, err := buildResolver(cmd, args[1:])
			if err != nil {
				return err
			}
			res := r.Resolve(args[0])
			if !res.IsResolved() {
				if res.Status == models.StatusAmbiguous {
					printNodes(res.Candidates, false)
					return fmt.Errorf("selector is ambiguous")
				}
				return fmt.Errorf("not found: %s", res.Reason)
			}
			n := res.Node
			data, err := os.ReadFile(n.Path)
			if err != nil {
				return err
			}
			normalized, _ := textedit.Normalize(string(data))
			fmt.Printf("%s %s %s (%s:%d-%d)\n\n", n.ID, n.Kind, n.Name, n.Path, n.StartLine, n.EndLine)
			fmt.Print(textedit.LineRange(normalized, n.StartLine, n.EndLine))
			return nil
		},
	}
}

// loadPatchSet reads a mutations file: JSON array for .json, the
// line-oriented simple format otherwise.
func loadPatchSet(path string) (*patchset.PatchSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read mutations file: %w", err)
	}
	ps := patchset.New()
	if filepath.Ext(path) == ".json" {
		err = ps.LoadJSON(string(data))
	} else {
		err = ps.LoadSimpleFormat(string(data))
	}
	if err != nil {
		return nil, err
	}
	return ps, nil
}

func patchRoot(cmd *cli.Command) string {
	if dir := cmd.String("dir"); dir != "" {
		return dir
	}
	return "."
}

func reportResult(res patchset.Result) error {
	fmt.Println(res.String())
	for _, p := range sortedKeys(res.Diffs) {
		fmt.Println()
		fmt.Print(res.Diffs[p])
	}
	if !res.Success {
		return fmt.Errorf("patch failed")
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func patchCommand() *cli.Command {
	dirFlag := &cli.StringFlag{
		Name:  "dir",
		Usage: "Root directory mutation paths are relative to",
		Value: ".",
	}
	return &cli.Command{
		Name:  "patch",
		Usage: "Validate, preview, and apply multi-file line-range patches",
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "Check a mutations file against the current file state",
				ArgsUsage: "MUTATIONS_FILE",
				Flags:     []cli.Flag{dirFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					ps, err := loadPatchSet(cmd.Args().First())
					if err != nil {
						return err
					}
					return reportResult(ps.ValidateAll(patchRoot(cmd)))
				},
			},
			{
				Name:      "diff",
				Usage:     "Show per-file unified diffs without writing anything",
				ArgsUsage: "MUTATIONS_FILE",
				Flags:     []cli.Flag{dirFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					ps, err := loadPatchSet(cmd.Args().First())
					if err != nil {
						return err
					}
					res := ps.GenerateDiffs(patchRoot(cmd))
					if res.Success {
						fmt.Println(textedit.FormatSummary(joinDiffs(res.Diffs)))
					}
					return reportResult(res)
				},
			},
			{
				Name:      "apply",
				Usage:     "Apply all mutations atomically; everything succeeds or rolls back",
				ArgsUsage: "MUTATIONS_FILE",
				Flags: []cli.Flag{
					dirFlag,
					&cli.BoolFlag{Name: "backup", Usage: "Write <path>.bak before modifying each file"},
					&cli.BoolFlag{Name: "force", Usage: "Skip the pre-write drift re-check"},
					&cli.BoolFlag{Name: "commit", Usage: "Commit the modified files after applying"},
					&cli.BoolFlag{Name: "push", Usage: "Push the commit to the remote (implies --commit)"},
					&cli.BoolFlag{Name: "allow-dirty", Usage: "Allow committing from a dirty working tree"},
					&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Usage: "Commit message"},
					&cli.StringFlag{Name: "remote", Usage: "Remote to push to", Value: "origin"},
					&cli.BoolFlag{Name: "dry-run", Usage: "Log VCS commands instead of running them"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					ps, err := loadPatchSet(cmd.Args().First())
					if err != nil {
						return err
					}
					opts := patchset.ApplyOptions{
						Backup: cmd.Bool("backup"),
						Force:  cmd.Bool("force"),
					}
					if cmd.Bool("commit") || cmd.Bool("push") {
						opts.VCS = &vcs.Config{
							AutoCommit:    true,
							AutoPush:      cmd.Bool("push"),
							AllowDirty:    cmd.Bool("allow-dirty"),
							CommitMessage: cmd.String("message"),
							Remote:        cmd.String("remote"),
							DryRun:        cmd.Bool("dry-run"),
						}
					}
					return reportResult(ps.ApplyAtomic(patchRoot(cmd), opts))
				},
			},
		},
	}
}

func joinDiffs(diffs map[string]string) string {
	parts := make([]string, 0, len(diffs))
	for _, p := range sortedKeys(diffs) {
		parts = append(parts, diffs[p])
	}
	return strings.Join(parts, "\n")
}
