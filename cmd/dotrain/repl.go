// Copyright 2024 Rain Language
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/rainlanguage/dotrain/compose"
	"github.com/rainlanguage/dotrain/lint"
	"github.com/rainlanguage/dotrain/meta"
	"github.com/rainlanguage/dotrain/parse"
)

const replHelp = `Commands:
  ::load <file.rain>       load and parse a dotrain file
  ::problems               show the problems of the loaded document
  ::bindings               list the bindings of the loaded document
  ::namespace              list the namespace keys of the loaded document
  ::compose <ep> [ep...]   compose the loaded document
  ::help                   show this help
  ::quit                   exit`

func newReplCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive dotrain shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := buildStore(configPath, true)
			if err != nil {
				return err
			}
			return runRepl(cmd.OutOrStdout(), store)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a rainconfig file")
	return cmd
}

func runRepl(out io.Writer, store *meta.Store) error {
	rl, err := readline.New("dotrain> ")
	if err != nil {
		return err
	}
	defer rl.Close()
	fmt.Fprintln(out, replHelp)

	var doc *parse.RainDocument
	var file string
	for {
		line, err := rl.Readline()
		if err != nil {
			// interrupt or EOF ends the session
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		readline.AddHistory(line)
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		switch cmd {
		case "::quit", "::exit":
			return nil
		case "::help":
			fmt.Fprintln(out, replHelp)
		case "::load":
			text, err := os.ReadFile(rest)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
				continue
			}
			file = rest
			doc = parse.CreateCached(string(text), store, nil, nil)
			fmt.Fprintf(out, "loaded %s: %d binding(s), %d import(s), %d problem(s)\n",
				rest, len(doc.Bindings), len(doc.Imports), len(doc.AllProblems()))
		case "::problems":
			if doc == nil {
				fmt.Fprintln(out, "no document loaded")
				continue
			}
			lint.FormatText(out, lint.Findings(file, doc))
		case "::bindings":
			if doc == nil {
				fmt.Fprintln(out, "no document loaded")
				continue
			}
			for _, b := range doc.Bindings {
				fmt.Fprintf(out, "  #%s  %s\n", b.Name, bindingKind(b))
			}
		case "::namespace":
			if doc == nil {
				fmt.Fprintln(out, "no document loaded")
				continue
			}
			keys := make([]string, 0, len(doc.Namespace))
			for k := range doc.Namespace {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				kind := "namespace"
				if parse.IsLeaf(doc.Namespace[k]) {
					kind = "binding"
				}
				fmt.Fprintf(out, "  %-24s %s\n", k, kind)
			}
		case "::compose":
			if doc == nil {
				fmt.Fprintln(out, "no document loaded")
				continue
			}
			entrypoints := strings.Fields(rest)
			result, err := compose.Compose(doc, entrypoints)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
				continue
			}
			fmt.Fprintln(out, result)
		default:
			fmt.Fprintln(out, "unknown command, ::help lists commands")
		}
	}
}

func bindingKind(b parse.Binding) string {
	switch b.Item.(type) {
	case parse.LiteralBindingItem:
		return "literal"
	case parse.ElidedBindingItem:
		return "elided"
	case parse.QuoteBindingItem:
		return "quote"
	default:
		return "expression"
	}
}
