package html

import (
	"strings"
	"unicode"
)

// GetAttachedCommentText returns the text of the comment immediately
// preceding n. License banners and empty comments are not attached.
func GetAttachedCommentText(n Node) (string, bool) {
	prev, ok := n.PreviousSibling()
	if !ok || !prev.IsComment() {
		return "", false
	}

	body := prev.Text()
	body = strings.TrimPrefix(body, "<!--")
	body = strings.TrimSuffix(body, "-->")
	if strings.Contains(body, "@license") {
		return "", false
	}

	text := strings.TrimSpace(unindent(body))
	if text == "" {
		return "", false
	}
	return text, true
}

// unindent strips the indentation shared by every non-blank line.
func unindent(text string) string {
	lines := strings.Split(text, "\n")
	common := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeftFunc(line, unicode.IsSpace))
		if common < 0 || indent < common {
			common = indent
		}
	}
	if common <= 0 {
		return text
	}
	for i, line := range lines {
		if len(line) >= common {
			lines[i] = line[common:]
		} else {
			lines[i] = strings.TrimLeftFunc(line, unicode.IsSpace)
		}
	}
	return strings.Join(lines, "\n")
}
