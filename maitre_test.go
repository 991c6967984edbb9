package maitre_test

import (
	"context"
	"testing"

	"github.com/aretw0/maitre"
	"github.com/aretw0/maitre/internal/testutils"
	"github.com/aretw0/maitre/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := maitre.New(nil, &testutils.FlakyBooking{}, &testutils.RecordingNotifier{})
	assert.Error(t, err)
	_, err = maitre.New(&testutils.ScriptedExtractor{}, nil, &testutils.RecordingNotifier{})
	assert.Error(t, err)
	_, err = maitre.New(&testutils.ScriptedExtractor{}, &testutils.FlakyBooking{}, nil)
	assert.Error(t, err)
}

func TestEngine_StartAssignsID(t *testing.T) {
	eng, err := maitre.New(&testutils.ScriptedExtractor{}, &testutils.FlakyBooking{}, &testutils.RecordingNotifier{})
	require.NoError(t, err)

	s, err := eng.Start(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, maitre.Greeting, s.LastReply())

	other, _ := eng.Start(context.Background(), "")
	assert.NotEqual(t, s.ID, other.ID)
}

func TestEngine_HooksPassThrough(t *testing.T) {
	var states []domain.StateName
	hooks := domain.LifecycleHooks{
		OnStateEnter: func(_ context.Context, e *domain.StateEvent) {
			states = append(states, e.State)
		},
	}
	ex := &testutils.ScriptedExtractor{Extractions: []domain.Extraction{{AssistantText: "Which restaurant?"}}}
	eng, err := maitre.New(ex, &testutils.FlakyBooking{}, &testutils.RecordingNotifier{},
		maitre.WithLifecycleHooks(hooks), maitre.WithName("test"))
	require.NoError(t, err)

	s, _ := eng.Start(context.Background(), "s1")
	res, err := eng.Turn(context.Background(), s, "hi")
	require.NoError(t, err)

	assert.Equal(t, "Which restaurant?", res.Reply)
	assert.Equal(t, []domain.StateName{domain.StateCollect}, states)
	assert.NotEmpty(t, eng.Inspect())
}

func TestDiagram(t *testing.T) {
	eng, err := maitre.New(&testutils.ScriptedExtractor{}, &testutils.FlakyBooking{}, &testutils.RecordingNotifier{})
	require.NoError(t, err)

	plain := maitre.Diagram(eng.Inspect(), nil)
	assert.Contains(t, plain, "graph TD")
	assert.NotContains(t, plain, "classDef")

	marked := maitre.Diagram(eng.Inspect(), []domain.StateName{domain.StateCollect, domain.StateConfirm})
	assert.Contains(t, marked, "class confirm current;")
}
