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
)

type ansi string

const (
	blue   ansi = "\033[34m"
	yellow ansi = "\033[33m"
	green  ansi = "\033[32m"
	red    ansi = "\033[31m"
	plain  ansi = ""
	reset       = "\033[0m"
)

// NO_COLOR (https://no-color.org) 或 CI 管線時不輸出色碼
var noColor = os.Getenv("NO_COLOR") != ""

func paint(c ansi, msg string) {
	if noColor || c == plain {
		fmt.Println(msg)
		return
	}
	fmt.Printf("%s%s%s\n", c, msg, reset)
}

func PrintDefault(msg string) { paint(plain, msg) }
func PrintRed(msg string)     { paint(red, msg) }
func PrintGreen(msg string)   { paint(green, msg) }
func PrintYellow(msg string)  { paint(yellow, msg) }
func PrintBlue(msg string)    { paint(blue, msg) }
