package main

import "github.com/giulianni/client-portal/cmd"

func main() {
	cmd.Execute()
}
