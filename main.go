package main

import "github.com/zjrosen/flowlens/cmd"

func main() {
	cmd.Execute()
}
