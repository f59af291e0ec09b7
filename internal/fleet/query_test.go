package fleet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetline/internal/domain"
)

func TestFilterShips(t *testing.T) {
	ships := Seed(testNow).Ships
	assert.Len(t, FilterShips(ships, "", ""), 3)
	assert.Len(t, FilterShips(ships, "panama", ""), 2)
	assert.Len(t, FilterShips(ships, "MAERSK", ""), 1)
	assert.Len(t, FilterShips(ships, "9703", ""), 1)
	assert.Len(t, FilterShips(ships, "", domain.ShipActive), 2)
	assert.Empty(t, FilterShips(ships, "oscar", domain.ShipDocked))
}

func TestFilterJobs(t *testing.T) {
	jobs := Seed(testNow).Jobs
	assert.Len(t, FilterJobs(jobs, "radar", "", ""), 1)
	assert.Len(t, FilterJobs(jobs, "", domain.JobOpen, ""), 1)
	assert.Len(t, FilterJobs(jobs, "", "", domain.PriorityCritical), 1)
	assert.Empty(t, FilterJobs(jobs, "", domain.JobCompleted, ""))
}

func TestFilterComponents(t *testing.T) {
	comps := Seed(testNow).Components
	assert.Len(t, FilterComponents(comps, "s1", "", ""), 2)
	assert.Len(t, FilterComponents(comps, "", domain.ComponentNeedsAttention, ""), 1)
	assert.Len(t, FilterComponents(comps, "", "", "prop"), 1)
}

func TestShipSummary(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	_, err := s.UpdateComponent(ctx, "c3", domain.ComponentPatch{Status: domain.Ptr(domain.ComponentCritical)})
	require.NoError(t, err)

	sum := s.ShipSummary("s1")
	assert.Equal(t, ShipSummary{Components: 2, ActiveJobs: 1, CriticalComponents: 1}, sum)
	assert.Equal(t, ShipSummary{}, s.ShipSummary("s3"))
}

func TestOrphansOnSeed(t *testing.T) {
	assert.True(t, FindOrphans(Seed(testNow)).Empty())
}
