// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/urfave/cli/v3"

	"github.com/staranto/itemctl/internal/command"
)

// Minimal doc generator. Walks the itemctl command tree and generates:
//   - docs/man/share/man1/itemctl-<cmd>.1 via md2man
//   - docs/tldr/itemctl-<cmd>.md from the quick examples

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")
	tldrOutDir := filepath.Join(repoRoot, "docs", "tldr")

	if err := os.MkdirAll(manOutDir, 0o755); err != nil {
		fatalf("creating man output dir: %v", err)
	}
	if err := os.MkdirAll(tldrOutDir, 0o755); err != nil {
		fatalf("creating tldr output dir: %v", err)
	}

	app, err := command.InitApp(context.Background(), []string{"itemctl"})
	if err != nil {
		fatalf("building command tree: %v", err)
	}

	var processed int
	for _, cmd := range app.Commands {
		md := buildMarkdown(cmd, command.Examples[cmd.Name])

		manPath := filepath.Join(manOutDir, fmt.Sprintf("itemctl-%s.1", cmd.Name))
		if err := writeFileIfChanged(manPath, md2man.Render([]byte(md)), writeOnlyIfChanged); err != nil {
			fatalf("writing man page for %s: %v", cmd.Name, err)
		}

		tldr := buildTLDR(cmd.Name, cmd.Usage, command.Examples[cmd.Name])
		tldrPath := filepath.Join(tldrOutDir, fmt.Sprintf("itemctl-%s.md", cmd.Name))
		if err := writeFileIfChanged(tldrPath, []byte(tldr), writeOnlyIfChanged); err != nil {
			fatalf("writing TLDR for %s: %v", cmd.Name, err)
		}

		processed++
	}

	if processed == 0 {
		fatalf("no commands found")
	}
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, new []byte, onlyIfChanged bool) error {
	if !onlyIfChanged {
		return os.WriteFile(path, new, 0o644)
	}
	old, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.WriteFile(path, new, 0o644)
		}
		return err
	}
	if bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(new)) {
		return nil
	}
	return os.WriteFile(path, new, 0o644)
}

// buildMarkdown renders a command as the markdown md2man expects: a title
// block followed by NAME, SYNOPSIS, OPTIONS and EXAMPLES sections.
func buildMarkdown(cmd *cli.Command, exs [][2]string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%% ITEMCTL-%s 1\n\n", strings.ToUpper(cmd.Name))

	b.WriteString("# NAME\n\n")
	fmt.Fprintf(&b, "itemctl-%s - %s\n\n", cmd.Name, cmd.Usage)

	b.WriteString("# SYNOPSIS\n\n")
	synopsis := cmd.UsageText
	if synopsis == "" {
		synopsis = "itemctl " + cmd.Name + " [options]"
	}
	fmt.Fprintf(&b, "**%s**\n\n", synopsis)

	if len(cmd.Flags) > 0 {
		b.WriteString("# OPTIONS\n\n")
		for _, f := range cmd.Flags {
			if vf, ok := f.(cli.VisibleFlag); ok && !vf.IsVisible() {
				continue
			}
			names := make([]string, 0, len(f.Names()))
			for _, n := range f.Names() {
				if len(n) == 1 {
					names = append(names, "-"+n)
				} else {
					names = append(names, "--"+n)
				}
			}
			fmt.Fprintf(&b, "**%s**\n", strings.Join(names, ", "))
			if df, ok := f.(cli.DocGenerationFlag); ok && df.GetUsage() != "" {
				fmt.Fprintf(&b, ": %s\n", df.GetUsage())
			}
			b.WriteString("\n")
		}
	}

	if len(exs) > 0 {
		b.WriteString("# EXAMPLES\n\n")
		for _, ex := range exs {
			fmt.Fprintf(&b, "%s:\n\n    %s\n\n", capitalize(ex[1]), sanitizeCommand(ex[0]))
		}
	}

	return b.String()
}

func buildTLDR(cmd, short string, exs [][2]string) string {
	var b strings.Builder
	// Header
	b.WriteString("# itemctl-" + cmd + "\n\n")
	if short != "" {
		b.WriteString("> " + capitalize(short) + ".\n")
	} else {
		b.WriteString("> itemctl " + cmd + "\n")
	}
	b.WriteString("> More information: https://github.com/staranto/itemctl.\n\n")

	if len(exs) == 0 {
		// Fallback examples
		b.WriteString("- Show help for the command:\n\n")
		b.WriteString("`itemctl " + cmd + " --help`\n")
		b.WriteString("\n")
		return b.String()
	}

	for i, ex := range exs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + capitalize(strings.TrimSpace(ex[1])) + ":\n\n")
		b.WriteString("`" + sanitizeCommand(ex[0]) + "`\n")
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sanitizeCommand(s string) string {
	// Compress runs of whitespace
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
