// ABOUTME: index.theme parsing
// ABOUTME: Reads the inheritance chain and stereo directories of a sound theme
package theme

import (
	"bufio"
	"io"
	"strings"
)

type index struct {
	inherits    []string
	directories []string
}

// parseIndex reads the [Sound Theme] group and the output profile of each listed directory.
// Only directories with the stereo profile (or none) are kept.
func parseIndex(r io.Reader) *index {
	var (
		group    string
		inherits []string
		dirs     []string
		profiles = make(map[string]string)
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			group = line[1 : len(line)-1]
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch {
		case group == "Sound Theme" && key == "Inherits":
			inherits = splitList(value)
		case group == "Sound Theme" && key == "Directories":
			dirs = splitList(value)
		case group != "Sound Theme" && key == "OutputProfile":
			profiles[group] = value
		}
	}

	idx := &index{inherits: inherits}
	for _, d := range dirs {
		if p, ok := profiles[d]; !ok || p == DefaultProfile {
			idx.directories = append(idx.directories, d)
		}
	}
	return idx
}

func (idx *index) merge(other *index) {
	idx.inherits = appendUnique(idx.inherits, other.inherits...)
	idx.directories = appendUnique(idx.directories, other.directories...)
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range list {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			list = append(list, v)
		}
	}
	return list
}
