package main

import cmd "github.com/rohmanhakim/vnlaw-crawler/internal/cli"

func main() {
	cmd.Execute()
}
