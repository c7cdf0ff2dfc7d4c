package main

import "crownsync/cmd/client/cmd"

func main() {
	cmd.Execute()
}
