package classes

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrUnknownClass = errors.New("unknown class id")

// Names is the ordered class table of the detector model, indexed by class id.
type Names []string

// Load reads one class name per line. Trailing blank lines are ignored.
func Load(path string) (Names, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open class names: %w", err)
	}
	defer f.Close()

	var names Names
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		names = append(names, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read class names: %w", err)
	}

	for len(names) > 0 && strings.TrimSpace(names[len(names)-1]) == "" {
		names = names[:len(names)-1]
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("class names file %s is empty", path)
	}
	return names, nil
}

func (n Names) Resolve(id int) (string, error) {
	if id < 0 || id >= len(n) {
		return "", fmt.Errorf("%w: %d (have %d classes)", ErrUnknownClass, id, len(n))
	}
	return n[id], nil
}
