package main

import "github.com/noderank/noderank/cmd/noderank/cmd"

func main() {
	cmd.Execute()
}
