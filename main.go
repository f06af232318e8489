package main

import "github.com/gyapaarachchi-ifs/pr-summarizer/cmd"

func main() {
	cmd.Execute()
}
