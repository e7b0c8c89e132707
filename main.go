package main

import "github.com/VoxDroid/waex/cmd"

func main() {
	cmd.Execute()
}
