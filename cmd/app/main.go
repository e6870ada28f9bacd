package main

import "MarketClose/internal/cli"

func main() {
	cli.Execute()
}
