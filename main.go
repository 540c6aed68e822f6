package main

import "github.com/andresmejia3/eigenfaces/cmd"

func main() {
	cmd.Execute()
}
