package service

import "strings"

const (
	ArchitectureYOLO       = "yolo"
	ArchitectureFasterRCNN = "faster_rcnn"
	ArchitectureUnknown    = "unknown"
)

// architectureRules is evaluated in order; the first substring hit wins.
var architectureRules = []struct {
	needle       string
	architecture string
}{
	{needle: "yolo", architecture: ArchitectureYOLO},
	{needle: "faster", architecture: ArchitectureFasterRCNN},
}

// ClassifyArchitecture infers the model family from a model name. Every
// input maps to a tag; names matching no rule are ArchitectureUnknown.
func ClassifyArchitecture(modelName string) string {
	lowered := strings.ToLower(modelName)
	for _, rule := range architectureRules {
		if strings.Contains(lowered, rule.needle) {
			return rule.architecture
		}
	}
	return ArchitectureUnknown
}
