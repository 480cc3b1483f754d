package main

import "github.com/oshokin/sprint-start/cmd/starter-server/cmd"

func main() {
	cmd.Execute()
}
