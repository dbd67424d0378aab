package main

import (
	"KaraFM/cmd"
)

func main() {
	cmd.Execute()
}
