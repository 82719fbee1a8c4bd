package main

import "drive-upload-relay/cmd"

func main() {
	cmd.Execute()
}
