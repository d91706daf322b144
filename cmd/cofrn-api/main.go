package main

import "github.com/cofrn/cofrn-monitor/cmd/cofrn-api/cmd"

func main() {
	cmd.Execute()
}
