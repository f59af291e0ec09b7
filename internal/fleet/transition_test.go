package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetline/internal/domain"
)

func TestUpdateJobTransitionDoesNotTouchInput(t *testing.T) {
	jobs := Seed(testNow).Jobs
	change := updateJob(jobs, "j1", domain.JobPatch{Status: domain.Ptr(domain.JobInProgress)})

	require.True(t, change.Found)
	assert.Equal(t, domain.JobOpen, jobs[0].Status)
	assert.Equal(t, domain.JobInProgress, change.Jobs[0].Status)
	require.NotNil(t, change.Notice)
	assert.Equal(t, "Job status updated to In Progress", change.Notice.Message)
}

func TestUpdateJobTransitionMissing(t *testing.T) {
	jobs := Seed(testNow).Jobs
	change := updateJob(jobs, "zzz", domain.JobPatch{Status: domain.Ptr(domain.JobCompleted)})
	assert.False(t, change.Found)
	assert.Nil(t, change.Notice)
	assert.Equal(t, jobs, change.Jobs)
}

func TestJobUpdateNotice(t *testing.T) {
	assert.Nil(t, jobUpdateNotice(domain.JobPatch{Title: domain.Ptr("t")}))

	n := jobUpdateNotice(domain.JobPatch{Status: domain.Ptr(domain.JobCompleted)})
	require.NotNil(t, n)
	assert.Equal(t, domain.NotificationJobCompleted, n.Type)
	assert.Equal(t, "Job Completed", n.Title)

	n = jobUpdateNotice(domain.JobPatch{Status: domain.Ptr(domain.JobOpen)})
	require.NotNil(t, n)
	assert.Equal(t, domain.NotificationJobUpdated, n.Type)
}

func TestRemoveItemKeepsInput(t *testing.T) {
	ships := Seed(testNow).Ships
	next, found := removeItem(ships, "s2", shipID)
	assert.True(t, found)
	assert.Len(t, next, 2)
	assert.Len(t, ships, 3)
	assert.Equal(t, "s2", ships[1].ID)
}

func TestMarkReadAlreadyRead(t *testing.T) {
	list := []domain.Notification{{ID: "a", Read: true}}
	_, found, changed := markRead(list, "a")
	assert.True(t, found)
	assert.False(t, changed)
}
