package main

import "canlidizi/cmd"

func main() {
	cmd.Execute()
}
