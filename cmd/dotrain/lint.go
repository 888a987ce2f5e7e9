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
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/rainlanguage/dotrain/lint"
	"github.com/rainlanguage/dotrain/parse"
)

func newLintCmd() *cobra.Command {
	var (
		configPath    string
		format        string
		localDataOnly bool
	)
	cmd := &cobra.Command{
		Use:   "lint <file.rain> [file.rain...]",
		Short: "Report the problems of .rain files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := buildStore(configPath, false)
			if err != nil {
				return err
			}
			var findings []lint.Finding
			var errs error
			for _, path := range args {
				text, err := os.ReadFile(path)
				if err != nil {
					errs = multierr.Append(errs, err)
					continue
				}
				doc := parse.New(string(text), store, 0, nil)
				doc.Parse(cmd.Context(), !localDataOnly, nil)
				findings = append(findings, lint.Findings(path, doc)...)
			}
			if errs != nil {
				return errs
			}
			switch format {
			case "json":
				if err := lint.FormatJSON(cmd.OutOrStdout(), findings); err != nil {
					return err
				}
			default:
				lint.FormatText(cmd.OutOrStdout(), findings)
			}
			if lint.Worst(findings) >= lint.SeverityError {
				return fmt.Errorf("%d problem(s) found", len(findings))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a rainconfig file")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	cmd.Flags().BoolVar(&localDataOnly, "local-data-only", false, "parse against cached metas only, no remote search")
	return cmd
}
