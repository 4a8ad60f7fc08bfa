package main

import "pscan/cmd"

func main() {
	cmd.Execute()
}
