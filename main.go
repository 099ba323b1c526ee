package main

import "github.com/hublun/MDConverter/cmd"

func main() {
	cmd.Execute()
}
