package main

import (
	"portage-resolvo/internal/cli"
)

func main() {
	cli.Execute()
}
