package main

import (
	"os"

	"system_model_importer/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
