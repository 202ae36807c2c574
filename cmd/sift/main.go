package main

import "github.com/sift-dev/sift/internal/cli"

func main() {
	cli.Execute()
}
