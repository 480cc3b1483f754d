package main

import "github.com/oshokin/sprint-start/cmd/sprint-start/cmd"

func main() {
	cmd.Execute()
}
