package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProvisionStatus_Succeeded(t *testing.T) {
	assert.True(t, StatusCreated.Succeeded())
	assert.True(t, StatusUpdated.Succeeded())
	assert.True(t, StatusLinked.Succeeded())
	assert.False(t, StatusSkipped.Succeeded())
	assert.False(t, StatusFailed.Succeeded())
}

func TestIntakeForm_Validate(t *testing.T) {
	assert.NoError(t, IntakeForm{ProjectName: "Harbor Survey"}.Validate())
	assert.ErrorIs(t, IntakeForm{}.Validate(), ErrInvalidInput)
}

func TestIntakeForm_Placeholders(t *testing.T) {
	form := IntakeForm{
		ProjectName: "Harbor Survey",
		Description: "Annual harbor survey",
		Lead:        "J. Ortiz",
	}

	got := form.Placeholders()
	assert.Equal(t, "Harbor Survey", got["project_name"])
	assert.Equal(t, "Annual harbor survey", got["description"])
	assert.Equal(t, "J. Ortiz", got["lead"])
}

func TestProvisioningOutcome_Resource(t *testing.T) {
	outcome := &ProvisioningOutcome{
		Resources: map[PlatformID]ProvisionedResource{
			PlatformTaskBoard: {Platform: PlatformTaskBoard, Status: StatusCreated},
		},
	}

	assert.Equal(t, StatusCreated, outcome.Resource(PlatformTaskBoard).Status)
	assert.Empty(t, outcome.Resource(PlatformDocStore).Status)
}
