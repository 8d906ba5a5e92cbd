package main

import (
	"codemaobot/cmd/codemaobot/cmd"
)

func main() {
	cmd.Execute()
}
