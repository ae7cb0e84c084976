package main

import "github.com/billexact/billexact/cmd"

func main() {
	cmd.Execute()
}
