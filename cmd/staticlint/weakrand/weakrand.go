// Package weakrand содержит пользовательский анализатор, который запрещает
// импорт math/rand: slug и криптографические параметры обязаны получать
// случайность из crypto/rand.
package weakrand

import (
	"strconv"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer представляет анализатор, запрещающий math/rand.
var Analyzer = &analysis.Analyzer{
	Name: "weakrand",
	Doc:  "запрещает импорт math/rand в пользу crypto/rand",
	Run:  run,
}

// NewAnalyzer возвращает анализатор weakrand.
func NewAnalyzer() *analysis.Analyzer {
	return Analyzer
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		filename := pass.Fset.Position(file.Pos()).Filename
		if strings.HasSuffix(filename, "_test.go") {
			continue
		}

		for _, imp := range file.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			if err != nil {
				continue
			}
			if path == "math/rand" || path == "math/rand/v2" {
				pass.Reportf(imp.Pos(), "импорт %s запрещён: используйте crypto/rand", path)
			}
		}
	}
	return nil, nil
}
