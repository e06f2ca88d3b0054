package chat

import (
	"errors"
	"time"
)

var ErrEmptyMessage = errors.New("message is empty")

const (
	// MaxRounds caps the model calls made for one user message.
	MaxRounds       = 3
	MaxHistory      = 20
	HistoryTTL      = 24 * time.Hour
	toolResultsHead = "TOOL RESULTS"
)

// ExecutedCommand records one bracket command the assistant ran while
// answering.
type ExecutedCommand struct {
	Name     string `json:"name"`
	Argument string `json:"argument,omitempty"`
	Output   string `json:"output,omitempty"`
	Error    string `json:"error,omitempty"`
}

type Reply struct {
	Message  string            `json:"message"`
	Commands []ExecutedCommand `json:"commands"`
}

const systemPrompt = `You are the LibraLink library assistant. You help members find books, check
availability, and understand their loans and late fees. Be brief and friendly.

You cannot see the catalogue directly. To look something up, write one or more
commands on their own in your reply and stop; the results will be sent back to
you in a message starting with "TOOL RESULTS", after which you answer the member.

Commands:
  [SEARCH: <text>]     search the catalogue by title, author or keyword
  [BOOK: <isbn>]       details of one book
  [AVAILABLE: <isbn>]  whether a copy can be borrowed now
  [MY_LOANS]           the member's current loans and due dates
  [MY_FEES]            the member's late fees
  [TOP_BOOKS]          the most borrowed books

Only use these commands. Never invent books, ISBNs, due dates or amounts; if a
command reports an error, tell the member what went wrong. Fees are in US
dollars. Members borrow, return and renew books from the app, not through you.`
