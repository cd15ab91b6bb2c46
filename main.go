package main

import "github.com/josephlewis42/accsh/cmd"

func main() {
	cmd.Execute()
}
