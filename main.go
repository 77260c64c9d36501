package main

import "github.com/atbphosting/clumsyloader/cmd"

func main() {
	cmd.Execute()
}
