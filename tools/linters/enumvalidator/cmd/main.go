package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/avishaychauhan/EchoLabs/tools/linters/enumvalidator"
)

func main() {
	singlechecker.Main(enumvalidator.Analyzer)
}
