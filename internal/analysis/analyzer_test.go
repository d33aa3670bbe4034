package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mentamind-backend/internal/domain"
	"github.com/yungbote/mentamind-backend/internal/platform/llm"
)

func conversation(userTurns int) []llm.Message {
	out := []llm.Message{}
	for i := 0; i < userTurns; i++ {
		out = append(out,
			llm.Message{Role: llm.RoleUser, Content: "I feel stuck at work"},
			llm.Message{Role: llm.RoleAssistant, Content: "That sounds heavy."},
		)
	}
	return out
}

func TestShouldRunAnalysis(t *testing.T) {
	cases := map[int]bool{0: false, 1: false, 4: false, 5: true, 10: true, 11: false, -5: false}
	for n, want := range cases {
		if got := ShouldRunAnalysis(n); got != want {
			t.Fatalf("ShouldRunAnalysis(%d) got=%v want=%v", n, got, want)
		}
	}
}

func TestAnalyzeSkipsShortConversations(t *testing.T) {
	mock := llm.NewMock()
	a := NewAnalyzer(mock, nil, nil)
	if got := a.Analyze(context.Background(), "s1", conversation(2)); got != nil {
		t.Fatalf("expected nil for 2 user turns, got %+v", got)
	}
	if len(mock.Calls()) != 0 {
		t.Fatalf("no completion expected, got %d calls", len(mock.Calls()))
	}
}

func TestAnalyzeParsesFencedJSON(t *testing.T) {
	reply := "Here you go:\n```json\n{\"primary_emotions\":[\"anxiety\",\" \"],\"secondary_emotions\":[\"guilt\"],\"themes\":[\"Work Stress\"],\"possible_core_issue\":\"\",\"intensity\":\"Medium\"}\n```"
	mock := llm.NewMock(reply)
	a := NewAnalyzer(mock, nil, nil)

	got := a.Analyze(context.Background(), "s1", conversation(3))
	require.NotNil(t, got)
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, []string{"anxiety"}, []string(got.PrimaryEmotions))
	assert.Equal(t, domain.IntensityMedium, got.Intensity)
	assert.Equal(t, domain.UnspecifiedCoreIssue, got.PossibleCoreIssue)
	assert.Equal(t, 3, got.MessageCount)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 200, calls[0].MaxTokens)
	assert.Equal(t, 0.1, calls[0].Temperature)
	prompt := calls[0].History[0].Content
	assert.Contains(t, prompt, "USER: I feel stuck at work\nASSISTANT: That sounds heavy.")
	assert.NotContains(t, prompt, conversationPlaceholder)
}

func TestAnalyzeRejectsUnusableReplies(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		err   error
	}{
		{name: "no json", reply: "I can't do that"},
		{name: "missing primary emotions", reply: `{"intensity":"low"}`},
		{name: "missing intensity", reply: `{"primary_emotions":["sad"]}`},
		{name: "unknown intensity", reply: `{"primary_emotions":["sad"],"intensity":"extreme"}`},
		{name: "broken json", reply: `{"primary_emotions":["sad"],}`},
		{name: "completion error", err: errors.New("boom")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := llm.NewMock(tc.reply)
			mock.Err = tc.err
			a := NewAnalyzer(mock, nil, nil)
			if got := a.Analyze(context.Background(), "s", conversation(5)); got != nil {
				t.Fatalf("expected nil, got %+v", got)
			}
		})
	}
}

func TestAnalyzeAcceptsEmptyPrimaryList(t *testing.T) {
	a := NewAnalyzer(llm.NewMock(`{"primary_emotions":[],"intensity":"low"}`), nil, nil)
	got := a.Analyze(context.Background(), "s", conversation(3))
	require.NotNil(t, got)
	assert.Empty(t, got.PrimaryEmotions)
}

func TestSanitizeAnalysis(t *testing.T) {
	in := &domain.EmotionAnalysis{
		Themes:            []string{"  Work Stress ", "FAMILY", " "},
		PossibleCoreIssue: "  Burnout At Work ",
	}
	out := SanitizeAnalysis(in)
	assert.Equal(t, []string{"work stress", "family"}, []string(out.Themes))
	assert.Equal(t, "burnout at work", out.PossibleCoreIssue)
	assert.Equal(t, "  Burnout At Work ", in.PossibleCoreIssue)
	assert.True(t, strings.HasPrefix(in.Themes[0], "  "))
}
