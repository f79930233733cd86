package main

import "github.com/OpenModelica/OMGraphics/cmd/omg/cmd"

func main() {
	cmd.Execute()
}
