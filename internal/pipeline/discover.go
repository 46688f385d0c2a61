package pipeline

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var trailingNumber = regexp.MustCompile(`(\d+)$`)

// levelNumber returns the trailing number of a model name, or -1.
func levelNumber(name string) int {
	m := trailingNumber.FindStringSubmatch(name)
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return n
}

// DiscoverModels lists the visual models in dir matching pattern, ordered by
// trailing level number and then name, followed by any extras that exist.
func DiscoverModels(dir, pattern string, extras []string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, errors.Wrapf(err, "bad model pattern %q", pattern)
	}

	seen := make(map[string]bool)
	var names []string
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), filepath.Ext(m))
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := levelNumber(names[i]), levelNumber(names[j])
		switch {
		case a != b && a >= 0 && b >= 0:
			return a < b
		case a >= 0 && b < 0:
			return true
		case a < 0 && b >= 0:
			return false
		}
		return names[i] < names[j]
	})

	for _, extra := range extras {
		if seen[extra] {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, extra+ContainerExt)); err == nil {
			seen[extra] = true
			names = append(names, extra)
		}
	}
	return names, nil
}

// DiscoverCollision lists collision source models in dir, skipping outputs
// of a previous registration pass.
func DiscoverCollision(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+CollisionExt))
	if err != nil {
		return nil, errors.Wrap(err, "listing collision sources")
	}
	var names []string
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), CollisionExt)
		if strings.Contains(name, "_chunk") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
