package script

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	whitespaceCode = iota
	timestampCode
	labelCode
	commandCode
)

// Token definitions
var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	timestampToken  = parsly.NewToken(timestampCode, "Timestamp", newDigitsMatcher())
	labelToken      = parsly.NewToken(labelCode, "Label", newLabelMatcher())
	commandToken    = parsly.NewToken(commandCode, "Command", newCommandMatcher())
)

func newDigitsMatcher() parsly.Matcher {
	return &digitsMatcher{}
}

func newLabelMatcher() parsly.Matcher {
	return &labelMatcher{}
}

func newCommandMatcher() parsly.Matcher {
	return &commandMatcher{}
}

// digitsMatcher matches a decimal integer, optionally negative so that
// out-of-range timestamps fail validation with a precise message rather
// than a generic parse error.
type digitsMatcher struct{}

func (m *digitsMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos >= size {
		return 0
	}

	matched := 0
	if input[pos] == '-' {
		matched++
		pos++
	}
	digits := 0
	for i := pos; i < size; i++ {
		if !isDigit(input[i]) {
			break
		}
		digits++
	}
	if digits == 0 {
		return 0
	}
	return matched + digits
}

// labelMatcher matches a scripted process label (e.g. "C1") or the EXIT
// keyword: a letter followed by letters, digits or underscores.
type labelMatcher struct{}

func (m *labelMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos >= size {
		return 0
	}
	if !isLetter(input[pos]) {
		return 0
	}

	matched := 1
	for i := pos + 1; i < size; i++ {
		if isLetter(input[i]) || isDigit(input[i]) || input[i] == '_' {
			matched++
			continue
		}
		break
	}
	return matched
}

// commandMatcher matches a single command character (S or T) that is not
// followed by further identifier characters.
type commandMatcher struct{}

func (m *commandMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos >= size {
		return 0
	}
	if input[pos] != 'S' && input[pos] != 'T' {
		return 0
	}
	if pos+1 < size && (isLetter(input[pos+1]) || isDigit(input[pos+1]) || input[pos+1] == '_') {
		return 0
	}
	return 1
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
