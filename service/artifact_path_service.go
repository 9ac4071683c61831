package service

import (
	"errors"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SystemKeyPrefix is the object key folder for artifacts ingested by the system.
const SystemKeyPrefix = "system"

var ErrModelNameEmpty = errors.New("model name is required")

// ArtifactPathService derives object store keys for local artifacts.
type ArtifactPathService struct {
	Prefix string
	newID  func() string
}

func NewArtifactPathService() *ArtifactPathService {
	return &ArtifactPathService{
		Prefix: SystemKeyPrefix,
		newID:  uuid.NewString,
	}
}

// BuildStorageKey returns {prefix}/{uuid}_{model name}{ext}. The random
// component keeps keys distinct across runs even for identical names.
func (s *ArtifactPathService) BuildStorageKey(filePath, modelName string) (string, error) {
	name := sanitizeModelName(modelName)
	if name == "" {
		return "", ErrModelNameEmpty
	}

	newID := s.newID
	if newID == nil {
		newID = uuid.NewString
	}
	prefix := strings.Trim(strings.TrimSpace(s.Prefix), "/")
	if prefix == "" {
		prefix = SystemKeyPrefix
	}

	_, ext := splitArtifactName(filePath)
	fileName := newID() + "_" + name + ext
	return path.Join(prefix, fileName), nil
}

// ModelNameFromFile strips the last extension from a file's base name.
// ".pt" has no extension, so its model name is ".pt".
func ModelNameFromFile(fileName string) string {
	stem, _ := splitArtifactName(fileName)
	return stem
}

// splitArtifactName splits a base name into stem and extension. Leading
// dots belong to the stem.
func splitArtifactName(fileName string) (stem, ext string) {
	base := filepath.Base(fileName)
	ext = filepath.Ext(strings.TrimLeft(base, "."))
	return strings.TrimSuffix(base, ext), ext
}

func sanitizeModelName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}
