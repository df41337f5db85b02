package main

import "kani/cmd"

func main() {
	cmd.Execute()
}
