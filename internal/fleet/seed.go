package fleet

import (
	"time"

	"fleetline/internal/domain"
)

// Seed returns the sample fleet a fresh workspace starts with. The single
// seed notification is stamped with now.
func Seed(now time.Time) State {
	return State{
		Ships: []domain.Ship{
			{ID: "s1", Name: "Ever Given", IMO: "9811000", Flag: "Panama", Status: domain.ShipActive,
				Type: "Container Ship", YearBuilt: 2018, Length: 400, Owner: "Evergreen Marine"},
			{ID: "s2", Name: "Maersk Alabama", IMO: "9164263", Flag: "USA", Status: domain.ShipUnderMaintenance,
				Type: "Container Ship", YearBuilt: 1998, Length: 508, Owner: "Maersk Line"},
			{ID: "s3", Name: "MSC Oscar", IMO: "9703291", Flag: "Panama", Status: domain.ShipActive,
				Type: "Container Ship", YearBuilt: 2015, Length: 395, Owner: "MSC"},
		},
		Components: []domain.Component{
			{ID: "c1", ShipID: "s1", Name: "Main Engine", SerialNumber: "ME-1234", InstallDate: "2020-01-10",
				LastMaintenanceDate: "2024-03-12", NextMaintenanceDate: "2024-09-12", Status: domain.ComponentGood, Type: "Engine"},
			{ID: "c2", ShipID: "s2", Name: "Navigation Radar", SerialNumber: "RAD-5678", InstallDate: "2021-07-18",
				LastMaintenanceDate: "2023-12-01", NextMaintenanceDate: "2024-06-01", Status: domain.ComponentNeedsAttention, Type: "Navigation"},
			{ID: "c3", ShipID: "s1", Name: "Propeller System", SerialNumber: "PROP-9012", InstallDate: "2020-01-15",
				LastMaintenanceDate: "2024-01-20", NextMaintenanceDate: "2024-07-20", Status: domain.ComponentGood, Type: "Propulsion"},
		},
		Jobs: []domain.Job{
			{ID: "j1", ComponentID: "c1", ShipID: "s1", Type: domain.JobInspection, Priority: domain.PriorityHigh,
				Status: domain.JobOpen, AssignedEngineerID: "3", ScheduledDate: "2024-07-05",
				Title: "Main Engine Quarterly Inspection", Description: "Comprehensive inspection of main engine components", EstimatedHours: 8},
			{ID: "j2", ComponentID: "c2", ShipID: "s2", Type: domain.JobRepair, Priority: domain.PriorityCritical,
				Status: domain.JobInProgress, AssignedEngineerID: "3", ScheduledDate: "2024-07-02",
				Title: "Radar System Calibration", Description: "Recalibrate navigation radar after anomaly detection", EstimatedHours: 4},
		},
		Notifications: []domain.Notification{
			{ID: "n1", Type: domain.NotificationJobCreated, Title: "New Job Created",
				Message:   "Main Engine Quarterly Inspection has been scheduled",
				CreatedAt: now.UTC().Format(domain.TimestampLayout)},
		},
	}
}
