package main

import "github.com/cofrn/cofrn-monitor/cmd/alarm-notifier/cmd"

func main() {
	cmd.Execute()
}
