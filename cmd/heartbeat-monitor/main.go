package main

import "github.com/cofrn/cofrn-monitor/cmd/heartbeat-monitor/cmd"

func main() {
	cmd.Execute()
}
