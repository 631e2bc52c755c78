package main

import "github.com/spotcell-game/server/internal/cli"

func main() {
	cli.Execute()
}
