package main

import (
	"fmt"
	"os"

	"adisyon-backend/internal/termcli"
)

func main() {
	if err := termcli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hata:", err)
		os.Exit(1)
	}
}
