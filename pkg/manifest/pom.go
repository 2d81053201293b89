package manifest

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sambabib/versioneye-check/pkg/logger"
)

// PomXML is the part of a Maven pom.xml needed to name a project
type PomXML struct {
	XMLName    xml.Name  `xml:"project"`
	GroupID    string    `xml:"groupId"`
	ArtifactID string    `xml:"artifactId"`
	Version    string    `xml:"version"`
	Name       string    `xml:"name"`
	Parent     PomParent `xml:"parent"`
}

// PomParent represents the parent section in a pom.xml
type PomParent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// Load reads a manifest produced by the build. The content is uploaded as is.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("manifest %s is empty", path)
	}
	return data, nil
}

// ProjectName picks a default project name: the pom artifactId, or the manifest's
// parent directory when the manifest is not a readable pom.
func ProjectName(path string, data []byte) string {
	var pom PomXML
	if err := xml.Unmarshal(data, &pom); err != nil {
		logger.Debugf("Manifest: %s is not a pom (%v), using directory name", path, err)
	} else if name := strings.TrimSpace(pom.ArtifactID); name != "" {
		return name
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return filepath.Base(filepath.Dir(abs))
}
