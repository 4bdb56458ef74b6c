package main

import "tracktide/cmd"

func main() {
	cmd.Execute()
}
