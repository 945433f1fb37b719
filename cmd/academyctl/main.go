package main

import "academy/internal/cli"

func main() {
	cli.Execute()
}
