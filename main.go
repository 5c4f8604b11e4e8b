package main

import "dispatchq/cmd"

func main() {
	cmd.Run()
}
