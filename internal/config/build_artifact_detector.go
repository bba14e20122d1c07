// Build artifact detection from Maven and Gradle build files.
// Build outputs carry copies of mapper XML (target/classes, build/resources)
// which would otherwise be indexed next to the sources.
package config

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// BuildArtifactDetector finds Java build output directories
type BuildArtifactDetector struct {
	projectRoot string
}

// NewBuildArtifactDetector creates a new build artifact detector
func NewBuildArtifactDetector(projectRoot string) *BuildArtifactDetector {
	return &BuildArtifactDetector{projectRoot: projectRoot}
}

// DetectOutputDirectories scans for build configuration files and extracts output directories
// Returns glob patterns to exclude (e.g., "**/target/**")
func (bad *BuildArtifactDetector) DetectOutputDirectories() []string {
	var patterns []string
	patterns = append(patterns, bad.detectMavenOutputs()...)
	patterns = append(patterns, bad.detectGradleOutputs()...)
	return DeduplicatePatterns(patterns)
}

type pomBuild struct {
	Build struct {
		Directory       string `xml:"directory"`
		OutputDirectory string `xml:"outputDirectory"`
	} `xml:"build"`
}

// detectMavenOutputs reads <build><directory> from pom.xml
func (bad *BuildArtifactDetector) detectMavenOutputs() []string {
	data, err := os.ReadFile(filepath.Join(bad.projectRoot, "pom.xml"))
	if err != nil {
		return nil
	}
	patterns := []string{"**/target/**"}

	var pom pomBuild
	if xml.Unmarshal(data, &pom) != nil {
		return patterns
	}
	for _, dir := range []string{pom.Build.Directory, pom.Build.OutputDirectory} {
		if p, ok := outputPattern(dir); ok {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// buildDir = "out" / layout.buildDirectory = file("out") / buildDir = 'out'
var reGradleBuildDir = regexp.MustCompile(`(?:buildDir|buildDirectory)\s*(?:=|\.set\()\s*(?:file\()?\s*["']([^"']+)["']`)

// detectGradleOutputs reads a custom buildDir from build.gradle(.kts)
func (bad *BuildArtifactDetector) detectGradleOutputs() []string {
	var patterns []string
	for _, name := range []string{"build.gradle", "build.gradle.kts"} {
		data, err := os.ReadFile(filepath.Join(bad.projectRoot, name))
		if err != nil {
			continue
		}
		patterns = append(patterns, "**/build/**")
		for _, m := range reGradleBuildDir.FindAllStringSubmatch(string(data), -1) {
			if p, ok := outputPattern(m[1]); ok {
				patterns = append(patterns, p)
			}
		}
	}
	return patterns
}

// outputPattern turns a configured directory into an exclusion glob.
// Maven property references like ${project.basedir}/out keep their last
// literal path element.
func outputPattern(dir string) (string, bool) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", false
	}
	dir = filepath.ToSlash(dir)
	if i := strings.LastIndex(dir, "}"); i >= 0 {
		dir = dir[i+1:]
	}
	dir = strings.Trim(dir, "/")
	if dir == "" || strings.ContainsAny(dir, "${}") {
		return "", false
	}
	return "**/" + dir + "/**", true
}

// DeduplicatePatterns removes duplicate exclusion patterns
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		if !seen[pattern] {
			seen[pattern] = true
			result = append(result, pattern)
		}
	}

	return result
}
