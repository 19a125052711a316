package main

import "github.com/jmehdipour/tenant-console/cmd"

func main() {
	cmd.Execute()
}
