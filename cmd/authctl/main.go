package main

import "go.pilab.hu/authcore/cmd/authctl/cmd"

func main() {
	cmd.Execute()
}
