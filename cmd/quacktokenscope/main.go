// QuackTokenScope CLI entry point
//
// QuackTokenScope (qts) compares how different tokenizers segment the same
// text and estimates what that segmentation costs across model pricing
// tables.
package main

import "github.com/ducktyper-ai/quacktokenscope/internal/presentation/cli/commands"

func main() {
	commands.Execute()
}
