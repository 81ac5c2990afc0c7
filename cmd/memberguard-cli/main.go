package main

import "github.com/certifiedcode/memberguard/cli/cmd"

func main() {
	cmd.Execute()
}
