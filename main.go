package main

import "github.com/gitgeistai/gitgeist-ai/cmd"

func main() {
	cmd.Execute()
}
