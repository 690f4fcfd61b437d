package main

import "github.com/beerbuddy/beerbuddy/cmd/beerbuddy-admin/commands"

func main() {
	commands.Execute()
}
