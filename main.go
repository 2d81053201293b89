package main

import "github.com/sambabib/versioneye-check/cmd"

func main() {
	cmd.Execute()
}
