package main

import "github.com/PreiyaaKedia/agent-evaluation-v2/internal/cli"

func main() {
	cli.Execute()
}
