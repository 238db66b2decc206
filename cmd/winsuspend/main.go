package main

import "github.com/winsuspend/winsuspend/internal/cli"

func main() {
	cli.Execute()
}
