package main

import "chv/internal/cli"

func main() {
	cli.Execute()
}
