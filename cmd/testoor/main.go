package main

import "github.com/ethpandaops/testoor/pkg/cli"

func main() {
	cli.Execute(Suites())
}
