package main

import "admatch/cmd"

func main() {
	cmd.Execute()
}
