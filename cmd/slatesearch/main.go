package main

import "github.com/kailas-cloud/slatesearch/internal/cli"

func main() {
	cli.Execute()
}
