package llm

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	calls    []*GenerateRequest
	reply    string
	failWith error
}

func (f *fakeClient) Generate(ctx context.Context, req *GenerateRequest) (string, error) {
	f.calls = append(f.calls, req)
	if f.failWith != nil {
		return "", f.failWith
	}
	if f.reply != "" {
		return f.reply, nil
	}
	return fmt.Sprintf("reply-%d", len(f.calls)), nil
}

func (f *fakeClient) ModelName() string { return "fake-model" }

func TestChat_AccumulatesHistory(t *testing.T) {
	client := &fakeClient{}
	chat := NewChat(client, "be helpful", nil, nil)

	first, err := chat.Prompt(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "reply-1", first)

	second, err := chat.Prompt(context.Background(), "what did I just say?")
	require.NoError(t, err)
	assert.Equal(t, "reply-2", second)

	// The second request must carry the first exchange
	require.Len(t, client.calls, 2)
	secondReq := client.calls[1]
	require.Len(t, secondReq.Messages, 3)
	assert.Equal(t, RoleUser, secondReq.Messages[0].Role)
	assert.Equal(t, "hello", secondReq.Messages[0].Content)
	assert.Equal(t, RoleAssistant, secondReq.Messages[1].Role)
	assert.Equal(t, "reply-1", secondReq.Messages[1].Content)
	assert.Equal(t, "what did I just say?", secondReq.Messages[2].Content)
}

func TestChat_SystemAppliedOnEveryBackendCall(t *testing.T) {
	client := &fakeClient{}
	chat := NewChat(client, "translate everything to French", nil, nil)

	_, err := chat.Prompt(context.Background(), "one")
	require.NoError(t, err)
	_, err = chat.Prompt(context.Background(), "two")
	require.NoError(t, err)

	for _, call := range client.calls {
		assert.Equal(t, "translate everything to French", call.System)
	}
}

func TestChat_FailedTurnNotRecorded(t *testing.T) {
	client := &fakeClient{failWith: fmt.Errorf("backend down")}
	chat := NewChat(client, "", nil, nil)

	_, err := chat.Prompt(context.Background(), "hello")
	require.Error(t, err)
	assert.Empty(t, chat.History())
}

func TestChat_Destroy(t *testing.T) {
	client := &fakeClient{}
	chat := NewChat(client, "", nil, nil)

	_, err := chat.Prompt(context.Background(), "hello")
	require.NoError(t, err)
	require.NotEmpty(t, chat.History())

	chat.Destroy()
	assert.Empty(t, chat.History())
}
