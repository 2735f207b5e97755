package extract

import (
	"regexp"
	"strings"

	"github.com/ashvale/lattice/internal/models"
)

var todoRe = regexp.MustCompile(`^\s*- \[([ xX])\] (.+)$`)

// contextRadius is the number of lines captured on each side of a task.
const contextRadius = 2

// Todos scans text for checkbox tasks. Completion is classified by the
// checkbox character; each task carries a context window of the two
// lines before and after, with the task's own line marked.
func Todos(text string) []models.TaskItem {
	lines := strings.Split(text, "\n")
	var out []models.TaskItem
	for i, line := range lines {
		m := todoRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out = append(out, models.TaskItem{
			Text:    strings.TrimSpace(m[2]),
			Done:    m[1] == "x" || m[1] == "X",
			Line:    i + 1,
			Context: contextWindow(lines, i, contextRadius),
		})
	}
	return out
}

// contextWindow returns the lines around idx, prefixing the line at idx
// with a marker so consumers can locate it inside the window.
func contextWindow(lines []string, idx, radius int) []string {
	start := idx - radius
	if start < 0 {
		start = 0
	}
	end := idx + radius
	if end > len(lines)-1 {
		end = len(lines) - 1
	}
	out := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		if i == idx {
			out = append(out, "→ "+lines[i])
		} else {
			out = append(out, "  "+lines[i])
		}
	}
	return out
}

// ToggleTask flips the checkbox on the given 1-based line of text.
// It returns the updated text and reports whether the line actually
// contained a task.
func ToggleTask(text string, line int) (string, bool) {
	lines := strings.Split(text, "\n")
	if line < 1 || line > len(lines) {
		return text, false
	}
	m := todoRe.FindStringSubmatch(lines[line-1])
	if m == nil {
		return text, false
	}
	old := lines[line-1]
	if m[1] == " " {
		lines[line-1] = strings.Replace(old, "- [ ]", "- [x]", 1)
	} else {
		lines[line-1] = strings.Replace(old, "- ["+m[1]+"]", "- [ ]", 1)
	}
	return strings.Join(lines, "\n"), true
}
