package main

import "notenodes/cmd"

func main() {
	cmd.Execute()
}
