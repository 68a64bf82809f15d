package main

import "github.com/jjaoguedes/facegate/cmd"

func main() {
	cmd.Execute()
}
