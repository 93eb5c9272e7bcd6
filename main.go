package main

import "github.com/paulabirocchi/Paper-Phytoplankton-TSB/cmd"

func main() {
	cmd.Execute()
}
