package resolve

import (
	"bufio"
	"os"
	"strings"
)

// ReadLines reads a newline-delimited file, trimming whitespace and
// dropping lines starting with "#". Blank lines are returned rather
// than dropped: address files need to warn on them, so that decision
// belongs to the caller, not here. Grounded on the teacher's
// pkg/network/file_utils.go scan-and-skip convention.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}
