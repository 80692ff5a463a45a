package main

import "github.com/ValentinKolb/seglog/cmd"

func main() {
	cmd.Execute()
}
