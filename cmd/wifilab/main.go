package main

import "github.com/gyaneshwarpardhi/wifilab/internal/cli"

func main() {
	cli.Execute()
}
