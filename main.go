package main

import "github.com/trungnq/frontdesk/cmd"

func main() {
	cmd.Execute()
}
