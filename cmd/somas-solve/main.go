package main

import "github.com/somasolver/somas/cmd/somas-solve/cmd"

func main() {
	cmd.Execute()
}
