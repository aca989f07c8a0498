package main

import "github.com/wheecious/kener/internal/cli"

func main() {
	cli.Execute()
}
