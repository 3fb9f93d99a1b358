package formstate

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hcp-crm/internal/interaction"
)

func TestNewStore_Defaults(t *testing.T) {
	snap := NewStore().Snapshot()
	assert.Equal(t, "Meeting", snap.Field(interaction.FieldInteractionType))
	assert.Equal(t, "Neutral", snap.Field(interaction.FieldSentiment))
	assert.Empty(t, snap.Messages)
	assert.False(t, snap.Loading)
}

func TestMergeForm_OverwritesOnlyGivenKeys(t *testing.T) {
	tests := []struct {
		name    string
		partial map[string]string
	}{
		{"single", map[string]string{interaction.FieldHCPName: "Dr. Rao"}},
		{"several", map[string]string{interaction.FieldTopics: "efficacy", interaction.FieldDate: "2024-05-01"}},
		{"empty value", map[string]string{interaction.FieldInteractionType: ""}},
		{"nothing", map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			s.MergeForm(map[string]string{interaction.FieldAttendees: "Nurse Anne"})
			before := s.Snapshot().Form

			s.MergeForm(tt.partial)
			after := s.Snapshot().Form

			for k, v := range before {
				if nv, ok := tt.partial[k]; ok {
					assert.Equal(t, nv, after[k], k)
				} else {
					assert.Equal(t, v, after[k], k)
				}
			}
			assert.Len(t, after, len(before))
		})
	}
}

func TestMergeForm_StoresUnknownKeys(t *testing.T) {
	s := NewStore()
	s.MergeForm(map[string]string{"priority": "high"})
	assert.Equal(t, "high", s.Snapshot().Field("priority"))
}

func TestAppendChatMessage_IsAppendOnly(t *testing.T) {
	s := NewStore()
	var want []interaction.ChatMessage
	for i := 0; i < 5; i++ {
		msg := interaction.ChatMessage{Role: interaction.RoleUser, Content: fmt.Sprintf("m%d", i)}
		if i%2 == 1 {
			msg.Role = interaction.RoleAssistant
		}
		s.AppendChatMessage(msg)
		want = append(want, msg)

		got := s.Snapshot().Messages
		require.Len(t, got, i+1)
		assert.Equal(t, want, got)
	}
}

func TestAppendChatMessage_KeepsDuplicates(t *testing.T) {
	s := NewStore()
	msg := interaction.ChatMessage{Role: interaction.RoleUser, Content: "same"}
	s.AppendChatMessage(msg)
	s.AppendChatMessage(msg)
	assert.Len(t, s.Snapshot().Messages, 2)
}

func TestSetLoading(t *testing.T) {
	s := NewStore()
	s.SetLoading(true)
	assert.True(t, s.Snapshot().Loading)
	s.SetLoading(false)
	assert.False(t, s.Snapshot().Loading)
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := NewStore()
	s.AppendChatMessage(interaction.ChatMessage{Role: interaction.RoleUser, Content: "hi"})
	snap := s.Snapshot()
	snap.Form[interaction.FieldHCPName] = "mutated"
	snap.Messages[0].Content = "mutated"

	again := s.Snapshot()
	assert.Equal(t, "", again.Field(interaction.FieldHCPName))
	assert.Equal(t, "hi", again.Messages[0].Content)
}

func TestStore_ConcurrentUse(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.MergeForm(map[string]string{interaction.FieldTopics: fmt.Sprint(i)})
			s.AppendChatMessage(interaction.ChatMessage{Role: interaction.RoleUser, Content: "x"})
			_ = s.Snapshot()
		}(i)
	}
	wg.Wait()
	assert.Len(t, s.Snapshot().Messages, 50)
}

func TestManager_GetReturnsSameStorePerSession(t *testing.T) {
	m := NewManager()
	a := m.Get("a")
	a.MergeForm(map[string]string{interaction.FieldHCPName: "Dr. A"})

	assert.Same(t, a, m.Get("a"))
	assert.NotSame(t, a, m.Get("b"))
	assert.Equal(t, "", m.Get("b").Snapshot().Field(interaction.FieldHCPName))
	assert.Equal(t, 2, m.Len())

	m.Reset("a")
	assert.False(t, m.Has("a"))
}

func TestManager_EvictIdle(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager()
	m.now = func() time.Time { return now }

	m.Get("old")
	busy := m.Get("busy")
	busy.SetLoading(true)

	now = now.Add(time.Hour)
	m.Get("fresh")

	removed := m.EvictIdle(30 * time.Minute)
	assert.Equal(t, 1, removed)
	assert.False(t, m.Has("old"))
	assert.True(t, m.Has("busy"))
	assert.True(t, m.Has("fresh"))
}
