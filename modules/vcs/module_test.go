package vcs

import (
	"testing"

	"github.com/specialistvlad/burstplan/internal/params"
	"github.com/specialistvlad/burstplan/internal/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutHasNoBody(t *testing.T) {
	task, err := Checkout(params.Set{})
	require.NoError(t, err)
	assert.Equal(t, plan.Task{Description: "Checkout git core", Interpreter: plan.InterpreterCheckout}, task)
}

func TestCherryPickReadsProjectFromVariable(t *testing.T) {
	task, err := GerritCherryPick(params.Set{})
	require.NoError(t, err)
	assert.Contains(t, task.Body, "gerrit-cherry-pick https://review.typo3.org/${bamboo.gerrit_project} $CHANGEURLID/$PATCHSET || exit 1")
	assert.NotContains(t, task.Body, "Security")
}
