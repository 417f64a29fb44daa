package script

import (
	"io"

	"github.com/edwingeng/deque"
)

// Queue is an in-memory Source. Loop blocks are replayed through a fresh Queue
// on every iteration.
type Queue struct {
	lines deque.Deque
}

// NewQueue creates a Queue holding lines in order.
func NewQueue(lines ...Line) *Queue {
	q := &Queue{lines: deque.NewDeque()}
	for _, l := range lines {
		q.Push(l)
	}
	return q
}

// NewQueueFromStrings creates a Queue from raw text, numbering lines from 1.
func NewQueueFromStrings(texts ...string) *Queue {
	q := &Queue{lines: deque.NewDeque()}
	for i, text := range texts {
		q.Push(Line{Text: text, Number: i + 1})
	}
	return q
}

// Push appends a line to the end of the queue.
func (q *Queue) Push(l Line) {
	q.lines.PushBack(l)
}

// Next removes and returns the first line.
func (q *Queue) Next() (Line, error) {
	if q.lines.Empty() {
		return Line{}, io.EOF
	}
	l := q.lines.Front().(Line)
	q.lines.PopFront()
	return l, nil
}

// Len returns the number of lines left.
func (q *Queue) Len() int {
	return q.lines.Len()
}
