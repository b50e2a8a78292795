package dialogue

// Merge joins a (possibly rewritten) head with its tail. An empty tail yields
// the head unchanged.
func Merge(head, tail string) string {
	if tail == "" {
		return head
	}
	return head + "\n" + tail
}
