package main

import "ddi-sync/cmd"

func main() {
	cmd.Execute()
}
