package liveness

import (
	"sort"

	"github.com/panbanda/vmsweep/pkg/models"
)

// Classify splits the registry into completely unused ViewModels and unused
// methods of ViewModels that are otherwise used. ViewModels are ordered by
// FQN, methods by declaration line. An unused ViewModel's methods are not
// listed individually.
func Classify(reg *models.Registry, keep models.AnnotationMatcher) *models.DeadCodeAnalysis {
	result := &models.DeadCodeAnalysis{
		UnusedViewModels: []models.DeadViewModel{},
		UnusedMethods:    []models.DeadMethod{},
	}

	for _, vm := range reg.All() {
		methods := vm.Methods()
		result.Summary.TotalViewModels++
		result.Summary.TotalMethods += len(methods)

		if !vm.IsUsed(keep) {
			result.UnusedViewModels = append(result.UnusedViewModels, models.DeadViewModel{
				FQN:     vm.FQN,
				File:    vm.File,
				Methods: len(methods),
			})
			continue
		}

		sorted := append([]*models.Method(nil), methods...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Line < sorted[j].Line })
		for _, m := range sorted {
			if m.IsUsed(keep) {
				continue
			}
			decls := []models.Declaration{{Line: m.Line, BlockStartLine: m.BlockStartLine}}
			for _, o := range m.Overloads {
				decls = append(decls, models.Declaration{Line: o.Line, BlockStartLine: o.BlockStartLine})
			}
			result.UnusedMethods = append(result.UnusedMethods, models.DeadMethod{
				ViewModel:      vm.FQN,
				File:           vm.File,
				Name:           m.Name,
				Line:           m.Line,
				BlockStartLine: m.BlockStartLine,
				Annotations:    m.AnnotationTexts(),
				Declarations:   decls,
			})
		}
	}

	result.Summary.UnusedViewModels = len(result.UnusedViewModels)
	result.Summary.UnusedMethods = len(result.UnusedMethods)
	return result
}
