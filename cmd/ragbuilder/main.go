package main

import (
	"ragbuilder/internal/cli"
)

func main() {
	cli.Execute()
}
