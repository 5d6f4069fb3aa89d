package main

import "rca-agent/cmd"

func main() {
	cmd.Execute()
}
