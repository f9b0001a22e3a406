package main

import "github.com/diogo/foldchat/internal/commands"

func main() {
	commands.Execute()
}
