// Package pom edits Maven project descriptors in place.
package pom

import (
	"errors"
	"fmt"
	"os"

	"github.com/beevik/etree"
	"github.com/huangsam/entran/internal/contract"
)

// FileName is the descriptor name at a module root.
const FileName = "pom.xml"

// JavaLevel is the compiler source and target level pinned before rebuilds.
const JavaLevel = "8"

const (
	compilerGroupID    = "org.apache.maven.plugins"
	compilerArtifactID = "maven-compiler-plugin"
	compilerVersion    = "3.8.1"
)

var errNoProject = errors.New("descriptor has no root element")

// Exists reports whether a descriptor is present in dir.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// PatchCompiler pins the compiler plugin's source and target levels. The
// plugin, its configuration and the enclosing build/plugins elements are
// created when missing; existing settings are overwritten.
func PatchCompiler(path, level string) error {
	return edit(path, func(project *etree.Element) {
		setCompilerLevel(project, level)
	})
}

// SetCoordinates rewrites the project's own groupId, artifactId and version.
func SetCoordinates(path string, coords contract.Coordinates) error {
	return edit(path, func(project *etree.Element) {
		setChildText(project, "groupId", coords.GroupID)
		setChildText(project, "artifactId", coords.ArtifactID)
		setChildText(project, "version", coords.Version)
	})
}

func edit(path string, fn func(project *etree.Element)) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	project := doc.Root()
	if project == nil {
		return fmt.Errorf("%s: %w", path, errNoProject)
	}
	fn(project)
	if err := doc.WriteToFile(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func setCompilerLevel(project *etree.Element, level string) {
	plugins := child(child(project, "build"), "plugins")

	var plugin *etree.Element
	for _, p := range plugins.SelectElements("plugin") {
		if id := p.SelectElement("artifactId"); id != nil && id.Text() == compilerArtifactID {
			plugin = p
			break
		}
	}
	if plugin == nil {
		plugin = plugins.CreateElement("plugin")
		plugin.CreateElement("groupId").SetText(compilerGroupID)
		plugin.CreateElement("artifactId").SetText(compilerArtifactID)
		plugin.CreateElement("version").SetText(compilerVersion)
	}

	configuration := child(plugin, "configuration")
	setChildText(configuration, "source", level)
	setChildText(configuration, "target", level)
}

// child returns the first child element named tag, creating it if needed.
// Lookup ignores namespace prefixes, so a default POM namespace still matches.
func child(parent *etree.Element, tag string) *etree.Element {
	if el := parent.SelectElement(tag); el != nil {
		return el
	}
	return parent.CreateElement(tag)
}

func setChildText(parent *etree.Element, tag, text string) {
	child(parent, tag).SetText(text)
}
