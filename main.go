package main

import "github.com/theirongolddev/spendviz/cmd"

func main() {
	cmd.Execute()
}
