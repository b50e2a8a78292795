package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRecordPadsRaggedRows(t *testing.T) {
	r := NewRecord([]string{"id", "conversation", "note"}, []string{"7"})
	assert.Equal(t, []string{"7", "", ""}, r.Values)
}

func TestNewRecordKeepsValuesPastHeader(t *testing.T) {
	r := NewRecord([]string{"id", "conversation", "note"}, []string{"8", "Patient: x", "n", "EXTRA"})
	assert.Equal(t, []string{"8", "Patient: x", "n", "EXTRA"}, r.Values)
	assert.Equal(t, 1, r.Extra())
	assert.Equal(t, 0, NewRecord([]string{"id"}, []string{"1"}).Extra())

	out := r.With(ConversationColumn, "Patient: y")
	assert.Equal(t, []string{"8", "Patient: y", "n", "EXTRA"}, out.Values)
}

func TestGetMatchesHeaderLoosely(t *testing.T) {
	r := NewRecord([]string{"id", " Conversation "}, []string{"1", "Doctor: hi"})
	assert.Equal(t, "Doctor: hi", r.Get(ConversationColumn))
	assert.Equal(t, "", r.Get("missing"))
}

func TestWithLeavesPassthroughAndOriginalAlone(t *testing.T) {
	r := NewRecord([]string{"id", "conversation", "note"}, []string{"1", "old", "keep, me"})
	out := r.With(ConversationColumn, "new")

	assert.Equal(t, []string{"1", "new", "keep, me"}, out.Values)
	assert.Equal(t, []string{"1", "old", "keep, me"}, r.Values)
}
