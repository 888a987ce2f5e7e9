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

// Binary dotrain is the command line front end of the dotrain compiler:
// it composes .rain files to rainlang, reports their problems and offers
// an interactive shell.
package main

import (
	goflag "flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "dotrain",
		Short:         "dotrain compiler and tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// glog registers its flags on the standard flag set
	root.PersistentFlags().AddGoFlagSet(goflag.CommandLine)
	root.AddCommand(newComposeCmd(), newLintCmd(), newReplCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
