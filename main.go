package main

import "github.com/macoc/registration-service/cmd"

func main() {
	cmd.Execute()
}
