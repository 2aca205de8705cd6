package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/guarden/store"
)

func TestBuildSystemPromptEmptyGarden(t *testing.T) {
	prompt := buildSystemPrompt(nil)
	assert.Contains(t, prompt, "You are 'Guarden AI', an expert nursery consultant.")
	assert.Contains(t, prompt, "[None (The user garden is empty).]")
}

func TestBuildSystemPromptListsOwnedPlants(t *testing.T) {
	plants := []*store.Plant{
		{Name: "Monstera", Type: "Tropical"},
		{Name: "Basil", Type: "Herb"},
	}

	prompt := buildSystemPrompt(plants)
	assert.Contains(t, prompt, "[Monstera (Type: Tropical), Basil (Type: Herb)]")
	assert.Contains(t, prompt, "Do NOT recommend plants already owned.")
}

func TestNewAdvisorRequiresAPIKey(t *testing.T) {
	_, err := NewAdvisor(&Config{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestNewAdvisorAppliesDefaults(t *testing.T) {
	advisor, err := NewAdvisor(&Config{APIKey: "sk-test"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", advisor.config.Model)
	assert.Equal(t, 3, advisor.config.MaxRetries)
	assert.NotZero(t, advisor.config.Timeout)
}

func TestResetSessionDropsHistory(t *testing.T) {
	advisor, err := NewAdvisor(&Config{APIKey: "sk-test"}, nil)
	require.NoError(t, err)

	advisor.sessions["s1"] = []Message{{Role: "user", Content: "hi"}}
	advisor.ResetSession("s1")
	assert.NotContains(t, advisor.sessions, "s1")
}
