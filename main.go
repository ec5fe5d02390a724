package main

import "github.com/theirongolddev/ccoach/cmd"

func main() {
	cmd.Execute()
}
