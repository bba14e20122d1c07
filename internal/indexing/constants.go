package indexing

// Project marker constants for detecting project roots.
// These are checked in priority order when determining the project root directory.

// ConfigMarkers are mapperlink config files, the highest priority.
// A parent directory holding one wins over a nested build file.
var ConfigMarkers = []string{
	".mapperlink.kdl",
	".mapperlink.toml",
}

// PrimaryProjectMarkers are build definitions of JVM projects
var PrimaryProjectMarkers = []string{
	".git",
	"pom.xml",
	"build.gradle",
	"build.gradle.kts",
	"settings.gradle",
	"settings.gradle.kts",
}

// SecondaryProjectMarkers are weaker hints found at many project roots
var SecondaryProjectMarkers = []string{
	"mvnw",
	"gradlew",
	".gitignore",
	"README.md",
}

// SourceDirectoryNames are the Maven/Gradle source set roots. Their
// presence is the fallback when no marker file exists.
var SourceDirectoryNames = []string{
	"src/main/java",
	"src/main/resources",
}
