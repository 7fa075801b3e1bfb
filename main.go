package main

import (
	"fmt"
	"os"

	"github.com/yilin0518/Advanced-DB/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
