package chat

import (
	"regexp"
	"strings"
)

const (
	CmdSearch    = "SEARCH"
	CmdBook      = "BOOK"
	CmdAvailable = "AVAILABLE"
	CmdMyLoans   = "MY_LOANS"
	CmdMyFees    = "MY_FEES"
	CmdTopBooks  = "TOP_BOOKS"
)

var knownCommands = map[string]bool{
	CmdSearch:    true,
	CmdBook:      true,
	CmdAvailable: true,
	CmdMyLoans:   true,
	CmdMyFees:    true,
	CmdTopBooks:  true,
}

// tokenPattern matches [NAME] and [NAME: argument] with optional padding.
var tokenPattern = regexp.MustCompile(`\[\s*([A-Za-z_]+)\s*(?::\s*([^\[\]]*?))?\s*\]`)

var blankRun = regexp.MustCompile(`[ \t]{2,}`)

// Command is one bracket token found in a model reply.
type Command struct {
	Name     string
	Argument string
}

func (c Command) String() string {
	if c.Argument == "" {
		return "[" + c.Name + "]"
	}
	return "[" + c.Name + ": " + c.Argument + "]"
}

// ParseCommands returns the known commands in text in order of appearance.
// Names are case-insensitive, unknown names are ignored and repeated commands
// are returned once.
func ParseCommands(text string) []Command {
	var cmds []Command
	seen := map[string]bool{}
	for _, m := range tokenPattern.FindAllStringSubmatch(text, -1) {
		name := strings.ToUpper(m[1])
		if !knownCommands[name] {
			continue
		}
		arg := strings.TrimSpace(m[2])
		key := name + "\x00" + strings.ToLower(arg)
		if seen[key] {
			continue
		}
		seen[key] = true
		cmds = append(cmds, Command{Name: name, Argument: arg})
	}
	return cmds
}

// StripCommands removes known command tokens from text and tidies the
// whitespace they leave behind. Unknown bracketed text is kept.
func StripCommands(text string) string {
	out := tokenPattern.ReplaceAllStringFunc(text, func(tok string) string {
		m := tokenPattern.FindStringSubmatch(tok)
		if knownCommands[strings.ToUpper(m[1])] {
			return ""
		}
		return tok
	})
	lines := strings.Split(out, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(blankRun.ReplaceAllString(l, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
