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
	"strings"

	"github.com/spf13/cobra"

	"github.com/rainlanguage/dotrain/compose"
	"github.com/rainlanguage/dotrain/meta"
	"github.com/rainlanguage/dotrain/parse"
	"github.com/rainlanguage/dotrain/rainconfig"
)

func newComposeCmd() *cobra.Command {
	var (
		configPath    string
		force         bool
		localDataOnly bool
		entrypoints   []string
		binds         []string
		output        string
	)
	cmd := &cobra.Command{
		Use:   "compose <file.rain>",
		Short: "Compose a .rain file to rainlang",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := buildStore(configPath, force)
			if err != nil {
				return err
			}
			text, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			rebinds, err := parseBinds(binds)
			if err != nil {
				return err
			}

			doc := parse.New(string(text), store, 0, nil)
			doc.Parse(cmd.Context(), !localDataOnly, rebinds)
			result, err := compose.Compose(doc, entrypoints)
			if err != nil {
				return err
			}
			if output != "" {
				return os.WriteFile(output, []byte(result), 0o644)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a rainconfig file")
	cmd.Flags().BoolVar(&force, "force", false, "keep building the store past bad rainconfig entries")
	cmd.Flags().BoolVar(&localDataOnly, "local-data-only", false, "compose against cached metas only, no remote search")
	cmd.Flags().StringSliceVarP(&entrypoints, "entrypoint", "e", nil, "entrypoint binding name (repeatable)")
	cmd.Flags().StringArrayVarP(&binds, "bind", "b", nil, "rebind a binding as name=value (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the composed rainlang to a file")
	_ = cmd.MarkFlagRequired("entrypoint")
	return cmd
}

func buildStore(configPath string, force bool) (*meta.Store, error) {
	if configPath == "" {
		if _, err := os.Stat(rainconfig.DefaultPath); err != nil {
			return meta.NewStore(), nil
		}
		configPath = rainconfig.DefaultPath
	}
	cfg, err := rainconfig.Read(configPath)
	if err != nil {
		return nil, err
	}
	if force {
		return cfg.ForceBuildStore()
	}
	return cfg.BuildStore()
}

func parseBinds(binds []string) ([]parse.Rebind, error) {
	var rebinds []parse.Rebind
	for _, b := range binds {
		key, value, ok := strings.Cut(b, "=")
		if !ok {
			return nil, fmt.Errorf("invalid bind %q, expected name=value", b)
		}
		rebinds = append(rebinds, parse.Rebind{Key: key, Value: value})
	}
	return rebinds, nil
}
