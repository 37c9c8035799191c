package pom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
	"github.com/huangsam/entran/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bareProject = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <groupId>org.x-stream</groupId>
  <artifactId>xstream</artifactId>
  <version>1.4.20</version>
</project>
`

const partialPlugin = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <build>
    <plugins>
      <plugin>
        <artifactId>maven-jar-plugin</artifactId>
      </plugin>
      <plugin>
        <artifactId>maven-compiler-plugin</artifactId>
        <version>2.0</version>
        <configuration>
          <source>1.4</source>
          <encoding>UTF-8</encoding>
        </configuration>
      </plugin>
    </plugins>
  </build>
</project>
`

func writePOM(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readPOM(t *testing.T, path string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromFile(path))
	return doc.Root()
}

func compilerPlugins(project *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, p := range project.FindElements("./build/plugins/plugin") {
		if id := p.SelectElement("artifactId"); id != nil && id.Text() == compilerArtifactID {
			out = append(out, p)
		}
	}
	return out
}

func TestPatchCompiler_CreatesPlugin(t *testing.T) {
	path := writePOM(t, bareProject)
	require.NoError(t, PatchCompiler(path, JavaLevel))

	project := readPOM(t, path)
	plugins := compilerPlugins(project)
	require.Len(t, plugins, 1)
	plugin := plugins[0]
	assert.Equal(t, compilerGroupID, plugin.SelectElement("groupId").Text())
	assert.Equal(t, compilerVersion, plugin.SelectElement("version").Text())
	assert.Equal(t, "8", plugin.FindElement("./configuration/source").Text())
	assert.Equal(t, "8", plugin.FindElement("./configuration/target").Text())
	assert.Equal(t, "http://maven.apache.org/POM/4.0.0", project.SelectAttrValue("xmlns", ""))
}

func TestPatchCompiler_UpdatesExistingPlugin(t *testing.T) {
	path := writePOM(t, partialPlugin)
	require.NoError(t, PatchCompiler(path, JavaLevel))

	project := readPOM(t, path)
	plugins := compilerPlugins(project)
	require.Len(t, plugins, 1)
	plugin := plugins[0]
	assert.Equal(t, "2.0", plugin.SelectElement("version").Text())
	assert.Equal(t, "8", plugin.FindElement("./configuration/source").Text())
	assert.Equal(t, "8", plugin.FindElement("./configuration/target").Text())
	assert.Equal(t, "UTF-8", plugin.FindElement("./configuration/encoding").Text())
	assert.Len(t, project.FindElements("./build/plugins/plugin"), 2)
}

func TestPatchCompiler_Idempotent(t *testing.T) {
	path := writePOM(t, bareProject)
	require.NoError(t, PatchCompiler(path, JavaLevel))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, PatchCompiler(path, JavaLevel))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestPatchCompiler_Errors(t *testing.T) {
	assert.Error(t, PatchCompiler(filepath.Join(t.TempDir(), "missing.xml"), JavaLevel))
	assert.Error(t, PatchCompiler(writePOM(t, `<?xml version="1.0"?>`), JavaLevel))
}

func TestSetCoordinates(t *testing.T) {
	path := writePOM(t, bareProject)
	require.NoError(t, SetCoordinates(path, contract.Coordinates{
		GroupID:    "com.thoughtworks.xstream",
		ArtifactID: "xstream",
		Version:    "entran",
	}))

	project := readPOM(t, path)
	assert.Equal(t, "com.thoughtworks.xstream", project.SelectElement("groupId").Text())
	assert.Equal(t, "xstream", project.SelectElement("artifactId").Text())
	assert.Equal(t, "entran", project.SelectElement("version").Text())
	assert.Equal(t, "4.0.0", project.SelectElement("modelVersion").Text())
}

func TestExists(t *testing.T) {
	path := writePOM(t, bareProject)
	assert.True(t, Exists(path))
	assert.False(t, Exists(filepath.Dir(path)))
	assert.False(t, Exists(filepath.Join(filepath.Dir(path), "other.xml")))
}
