package services

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRecordAndRecent(t *testing.T) {
	store := newFakeStore()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	svc := NewAuditService(store, true, logger)

	actor := "admin-1"
	entity := "evt-1"
	svc.Record(Entry{
		ActorID:    &actor,
		Action:     "event_closed",
		EntityType: "event",
		EntityID:   &entity,
		IPAddress:  "203.0.113.7",
		UserAgent:  "Mozilla/5.0 (X11; Linux x86_64) Chrome/126.0",
		Details:    map[string]interface{}{"awarded": 2},
	})

	entries, err := svc.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "event_closed", entry.Action)
	require.NotNil(t, entry.ActorID)
	assert.Equal(t, "admin-1", *entry.ActorID)
	require.NotNil(t, entry.Details)
	assert.Contains(t, *entry.Details, "awarded")
	assert.Contains(t, *entry.Details, "device_info")
}

func TestAuditDisabledIsNoop(t *testing.T) {
	store := newFakeStore()
	logger := logrus.New()
	svc := NewAuditService(store, false, logger)

	svc.Record(Entry{Action: "event_closed", EntityType: "event"})

	entries, err := svc.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAuditRecentClampsLimit(t *testing.T) {
	store := newFakeStore()
	logger := logrus.New()
	svc := NewAuditService(store, true, logger)

	for i := 0; i < 3; i++ {
		svc.Record(Entry{Action: "points_adjusted", EntityType: "staff"})
	}

	entries, err := svc.Recent(-5)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
