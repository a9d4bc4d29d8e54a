package main

import "github.com/dbsmedya/pgarchive/cmd/pgarchive/cmd"

func main() {
	cmd.Execute()
}
