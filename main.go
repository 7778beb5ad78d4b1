package main

import "github.com/iksnae/agent-transcript/cmd"

func main() {
	cmd.Execute()
}
