package main

import "github.com/thistlemesh/thistle/cmd"

func main() {
	cmd.Execute()
}
