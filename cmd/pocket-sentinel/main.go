package main

import "github.com/oshokin/pocket-sentinel/cmd/pocket-sentinel/cmd"

func main() {
	cmd.Execute()
}
