package main

import "github.com/novadent/novadent_backend/cmd"

func main() {
	cmd.Execute()
}
