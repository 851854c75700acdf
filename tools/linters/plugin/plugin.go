// Package main exposes the echolens analyzers to golangci-lint as a Go plugin.
package main

import (
	"golang.org/x/tools/go/analysis"

	"github.com/avishaychauhan/EchoLabs/tools/linters/enumvalidator"
)

type AnalyzerPlugin struct{}

func (*AnalyzerPlugin) GetAnalyzers() []*analysis.Analyzer {
	return []*analysis.Analyzer{
		enumvalidator.Analyzer,
	}
}

func New(conf any) ([]*analysis.Analyzer, error) {
	return []*analysis.Analyzer{enumvalidator.Analyzer}, nil
}

// main is never called; it lets the package link outside -buildmode=plugin.
func main() {}
