package main

import "github.com/jeffreytso/contourdex/cmd"

func main() {
	cmd.Execute()
}
