// Package docs embeds the fdash documentation topics.
//
// Each topic is a markdown file. The readme topic lists the others.
package docs

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

//go:embed *.md
var files embed.FS

// Readme is the topic shown when none is requested.
const Readme = "readme"

// All expands to every topic but the readme.
const All = "*"

// ErrUnknownTopic is returned for a name that is not an embedded topic.
var ErrUnknownTopic = errors.New("unknown topic")

// Topics returns the readme followed by every other topic, sorted.
func Topics() []string {
	names, _ := fs.Glob(files, "*.md")
	topics := []string{Readme}
	for _, name := range names {
		if name = strings.TrimSuffix(name, ".md"); name != Readme {
			topics = append(topics, name)
		}
	}
	return topics
}

// Topic returns the markdown content of a topic.
func Topic(name string) (string, error) {
	if !slices.Contains(Topics(), name) {
		return "", fmt.Errorf("%w %q (available: %s)", ErrUnknownTopic, name, strings.Join(Topics(), ", "))
	}
	content, err := files.ReadFile(name + ".md")
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// Join returns the content of several topics, separated by a blank line.
// All expands to every topic but the readme, and no name means the readme.
func Join(names ...string) (string, error) {
	if len(names) == 0 {
		names = []string{Readme}
	}
	var parts []string
	for _, name := range names {
		expanded := []string{name}
		if name == All {
			expanded = Topics()[1:]
		}
		for _, n := range expanded {
			content, err := Topic(n)
			if err != nil {
				return "", err
			}
			parts = append(parts, strings.TrimRight(content, "\n"))
		}
	}
	return strings.Join(parts, "\n\n") + "\n", nil
}
