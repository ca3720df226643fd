package main

import "github.com/kozaktomas/face-insight/cmd"

func main() {
	cmd.Execute()
}
