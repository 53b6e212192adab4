package main

import (
	"os"

	upvectorcmder "github.com/papercomputeco/upvector/cmd/upvector"
)

func main() {
	cmd := upvectorcmder.NewUpvectorCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
