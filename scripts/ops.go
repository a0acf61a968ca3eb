// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
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
	"sort"
	"strings"
)

// go run ./scripts <task>
var tasks = map[string]struct {
	desc string
	run  func() error
}{
	"test":        {"all packages, ok/FAIL lines only", runTest},
	"test-detail": {"verbose run without [no test files] noise", runTestDetail},
	"race":        {"search/driver/runtime packages under -race", runRace},
	"bench":       {"placement search benchmarks", runBench},
	"smoke":       {"short seeded simulation of every bundled game", runSmoke},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	t, ok := tasks[os.Args[1]]
	if !ok {
		PrintYellow(fmt.Sprintf("Unknown task: %s", os.Args[1]))
		usage()
		os.Exit(1)
	}
	if err := t.run(); err != nil {
		PrintRed(fmt.Sprintf("\n%s finished with errors: %v", os.Args[1], err))
		os.Exit(1)
	}
}

func usage() {
	names := make([]string, 0, len(tasks))
	for n := range tasks {
		names = append(names, n)
	}
	sort.Strings(names)
	var sb strings.Builder
	sb.WriteString("Usage: go run ./scripts [task]\n")
	for _, n := range names {
		fmt.Fprintf(&sb, "  %-12s %s\n", n, tasks[n].desc)
	}
	PrintDefault(sb.String())
}
