package main

import "github.com/angelospk/subfetch/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
