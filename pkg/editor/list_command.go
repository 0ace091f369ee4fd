package editor

// ListOp is a structural edit on an ordered list.
type ListOp int

const (
	OpNone ListOp = iota
	OpRemove
	OpSwap
)

// ListCommand is one pending edit collected while a list is drawn and
// applied after the walk finishes.
type ListCommand struct {
	Op    ListOp
	Index int
	Other int
}

// Remove deletes the element at i.
func Remove(i int) ListCommand {
	return ListCommand{Op: OpRemove, Index: i}
}

// Swap exchanges the elements at a and b.
func Swap(a, b int) ListCommand {
	return ListCommand{Op: OpSwap, Index: a, Other: b}
}

// MoveUp swaps i with its predecessor. The first element cannot move up.
func MoveUp(i int) ListCommand {
	if i <= 0 {
		return ListCommand{}
	}
	return Swap(i-1, i)
}

// MoveDown swaps i with its successor in a list of length n.
func MoveDown(i, n int) ListCommand {
	if i < 0 || i+1 >= n {
		return ListCommand{}
	}
	return Swap(i, i+1)
}

// Apply performs cmd on list and returns the updated slice. Out-of-range
// indices leave the list unchanged.
func Apply[T any](list []T, cmd ListCommand) []T {
	n := len(list)
	switch cmd.Op {
	case OpRemove:
		if cmd.Index < 0 || cmd.Index >= n {
			return list
		}
		return append(list[:cmd.Index], list[cmd.Index+1:]...)
	case OpSwap:
		if cmd.Index < 0 || cmd.Index >= n || cmd.Other < 0 || cmd.Other >= n {
			return list
		}
		list[cmd.Index], list[cmd.Other] = list[cmd.Other], list[cmd.Index]
	}
	return list
}

// Queue collects at most one command per list walk. A later request replaces
// an earlier one.
type Queue struct {
	pending ListCommand
}

// Push records cmd as the pending command.
func (q *Queue) Push(cmd ListCommand) {
	if cmd.Op != OpNone {
		q.pending = cmd
	}
}

// Pending returns the recorded command, if any.
func (q *Queue) Pending() (ListCommand, bool) {
	return q.pending, q.pending.Op != OpNone
}

// Flush applies the pending command to list and clears it.
func Flush[T any](q *Queue, list []T) []T {
	cmd, ok := q.Pending()
	if !ok {
		return list
	}
	q.pending = ListCommand{}
	return Apply(list, cmd)
}
