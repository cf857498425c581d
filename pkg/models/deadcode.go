package models

// DeadViewModel is a ViewModel with no usage evidence at all.
type DeadViewModel struct {
	FQN     string `json:"fqn" yaml:"fqn" toon:"fqn"`
	File    string `json:"file" yaml:"file" toon:"file"`
	Methods int    `json:"methods" yaml:"methods" toon:"methods"`
}

// DeadMethod is an unused method of a ViewModel that is otherwise used.
type DeadMethod struct {
	ViewModel      string   `json:"view_model" yaml:"view_model" toon:"view_model"`
	File           string   `json:"file" yaml:"file" toon:"file"`
	Name           string   `json:"name" yaml:"name" toon:"name"`
	Line           int      `json:"line" yaml:"line" toon:"line"`
	BlockStartLine int      `json:"block_start_line" yaml:"block_start_line" toon:"block_start_line"`
	Annotations    []string `json:"annotations,omitempty" yaml:"annotations,omitempty" toon:"annotations"`

	// Declarations lists every declaration sharing the name, overloads
	// included, in source order.
	Declarations []Declaration `json:"declarations,omitempty" yaml:"declarations,omitempty" toon:"declarations"`
}

// Declaration locates one method declaration in its source file.
type Declaration struct {
	Line           int `json:"line" yaml:"line" toon:"line"`
	BlockStartLine int `json:"block_start_line" yaml:"block_start_line" toon:"block_start_line"`
}

// Key returns the "<fqdn>#<method>" identity used by the decision cache.
func (d DeadMethod) Key() string {
	return d.ViewModel + "#" + d.Name
}

// DeadCodeSummary provides aggregate statistics.
type DeadCodeSummary struct {
	TotalViewModels      int `json:"total_view_models" yaml:"total_view_models" toon:"total_view_models"`
	TotalMethods         int `json:"total_methods" yaml:"total_methods" toon:"total_methods"`
	UnusedViewModels     int `json:"unused_view_models" yaml:"unused_view_models" toon:"unused_view_models"`
	UnusedMethods        int `json:"unused_methods" yaml:"unused_methods" toon:"unused_methods"`
	JavaFilesAnalyzed    int `json:"java_files_analyzed" yaml:"java_files_analyzed" toon:"java_files_analyzed"`
	JavaFilesSkipped     int `json:"java_files_skipped" yaml:"java_files_skipped" toon:"java_files_skipped"`
	TemplateFilesScanned int `json:"template_files_scanned" yaml:"template_files_scanned" toon:"template_files_scanned"`
}

// DeadCodeAnalysis is the classified result of a run.
type DeadCodeAnalysis struct {
	UnusedViewModels []DeadViewModel `json:"unused_view_models" yaml:"unused_view_models" toon:"unused_view_models"`
	UnusedMethods    []DeadMethod    `json:"unused_methods" yaml:"unused_methods" toon:"unused_methods"`
	Summary          DeadCodeSummary `json:"summary" yaml:"summary" toon:"summary"`
}

// Empty reports whether nothing unused was found.
func (a *DeadCodeAnalysis) Empty() bool {
	return len(a.UnusedViewModels) == 0 && len(a.UnusedMethods) == 0
}

// MethodsByViewModel groups unused methods by owning ViewModel, keeping the
// order in which ViewModels first appear.
func (a *DeadCodeAnalysis) MethodsByViewModel() ([]string, map[string][]DeadMethod) {
	var order []string
	groups := make(map[string][]DeadMethod)
	for _, m := range a.UnusedMethods {
		if _, ok := groups[m.ViewModel]; !ok {
			order = append(order, m.ViewModel)
		}
		groups[m.ViewModel] = append(groups[m.ViewModel], m)
	}
	return order, groups
}
