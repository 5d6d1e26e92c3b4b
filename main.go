package main

import "github.com/jfmyers9/stationfm/cmd"

func main() {
	cmd.Execute()
}
