package executor

import "strings"

// SplitArgs extracts the argument texts of a call statement such as
// `draw_text(1, 2, "a,b")`. It takes the text between the first "(" and the
// last ")" and splits it on commas that are outside quotes and nested
// brackets. Each argument is trimmed. An empty argument list yields nil.
func SplitArgs(call string) []string {
	open := strings.IndexByte(call, '(')
	close := strings.LastIndexByte(call, ')')
	if open < 0 || close <= open {
		return nil
	}
	inner := call[open+1 : close]
	if strings.TrimSpace(inner) == "" {
		return nil
	}

	var (
		args  []string
		start int
		depth int
		quote byte
	)
	for i := 0; i < len(inner); i++ {
		ch := inner[i]
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'':
			quote = ch
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(inner[start:]))
}
