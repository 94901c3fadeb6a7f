package services

import (
	"testing"
	"time"

	"github.com/songyu/bugtrack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBugCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	svc := NewBugService(db)

	id, err := svc.Create(BugCreate{
		Title:       "crash on save",
		Description: "saving a draft crashes the app",
		Version:     "1.4.2",
		Region:      "eu-west",
		Submitter:   "tester",
	})
	require.NoError(t, err)

	bug, err := svc.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, bug)
	assert.Equal(t, "crash on save", bug.Title)
	assert.Equal(t, models.BugStatusPending, bug.Status, "status defaults to pending")
	assert.Equal(t, models.Unassigned, bug.Assignee, "missing assignee reads back as the sentinel")
	assert.Nil(t, bug.ResolvedAt, "creation never stamps resolved_at")

	missing, err := svc.GetByID(9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBugCreate_ResolvedStatusStillUnstamped(t *testing.T) {
	db := newTestDB(t)
	svc := NewBugService(db)

	id, err := svc.Create(BugCreate{
		Title:       "already fixed upstream",
		Description: "filed for the record",
		Submitter:   "tester",
		Status:      models.BugStatusResolved,
	})
	require.NoError(t, err)

	bug, err := svc.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, models.BugStatusResolved, bug.Status)
	assert.Nil(t, bug.ResolvedAt)
}

func TestBugAssigneeResolution(t *testing.T) {
	db := newTestDB(t)
	svc := NewBugService(db)
	devs := NewDeveloperService(db)

	mustCreateDeveloper(t, devs, "Zhang San")

	t.Run("known name round-trips", func(t *testing.T) {
		id, err := svc.Create(BugCreate{
			Title: "a", Description: "a", Submitter: "tester",
			AssigneeName: "Zhang San",
		})
		require.NoError(t, err)

		bug, err := svc.GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, "Zhang San", bug.Assignee)
	})

	t.Run("unknown name degrades to unassigned", func(t *testing.T) {
		id, err := svc.Create(BugCreate{
			Title: "b", Description: "b", Submitter: "tester",
			AssigneeName: "Nobody Here",
		})
		require.NoError(t, err, "an unresolvable assignee must not fail the write")

		bug, err := svc.GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, models.Unassigned, bug.Assignee)
	})

	t.Run("sentinel maps to unassigned", func(t *testing.T) {
		id, err := svc.Create(BugCreate{
			Title: "c", Description: "c", Submitter: "tester",
			AssigneeName: models.Unassigned,
		})
		require.NoError(t, err)

		bug, err := svc.GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, models.Unassigned, bug.Assignee)
	})
}

func TestBugUpdate_ResolvedAtStamping(t *testing.T) {
	db := newTestDB(t)
	svc := NewBugService(db)

	id, err := svc.Create(BugCreate{Title: "a", Description: "a", Submitter: "tester"})
	require.NoError(t, err)

	t.Run("non-resolved status change does not stamp", func(t *testing.T) {
		status := models.BugStatusUrgent
		ok, err := svc.Update(id, BugUpdate{Status: &status})
		require.NoError(t, err)
		assert.True(t, ok)

		bug, err := svc.GetByID(id)
		require.NoError(t, err)
		assert.Nil(t, bug.ResolvedAt)
	})

	t.Run("resolving stamps resolved_at", func(t *testing.T) {
		status := models.BugStatusResolved
		ok, err := svc.Update(id, BugUpdate{Status: &status})
		require.NoError(t, err)
		assert.True(t, ok)

		bug, err := svc.GetByID(id)
		require.NoError(t, err)
		require.NotNil(t, bug.ResolvedAt)
		assert.WithinDuration(t, time.Now(), *bug.ResolvedAt, 5*time.Second)
	})

	t.Run("reopening leaves the old stamp in place", func(t *testing.T) {
		status := models.BugStatusNormal
		ok, err := svc.Update(id, BugUpdate{Status: &status})
		require.NoError(t, err)
		assert.True(t, ok)

		bug, err := svc.GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, models.BugStatusNormal, bug.Status)
		assert.NotNil(t, bug.ResolvedAt, "resolved_at is never cleared")
	})
}

func TestBugUpdate_PartialAndMisc(t *testing.T) {
	db := newTestDB(t)
	svc := NewBugService(db)
	devs := NewDeveloperService(db)

	mustCreateDeveloper(t, devs, "Zhang San")

	id, err := svc.Create(BugCreate{
		Title: "a", Description: "a", Submitter: "tester", AssigneeName: "Zhang San",
	})
	require.NoError(t, err)

	t.Run("empty update reports false", func(t *testing.T) {
		ok, err := svc.Update(id, BugUpdate{})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown id reports false", func(t *testing.T) {
		title := "x"
		ok, err := svc.Update(9999, BugUpdate{Title: &title})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("assignee set to sentinel clears the assignment", func(t *testing.T) {
		name := models.Unassigned
		ok, err := svc.Update(id, BugUpdate{AssigneeName: &name})
		require.NoError(t, err)
		assert.True(t, ok)

		bug, err := svc.GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, models.Unassigned, bug.Assignee)
	})
}

func TestBugSetStatus_AlwaysStamps(t *testing.T) {
	db := newTestDB(t)
	svc := NewBugService(db)
	devs := NewDeveloperService(db)

	mustCreateDeveloper(t, devs, "Zhang San")

	id, err := svc.Create(BugCreate{
		Title: "a", Description: "a", Submitter: "tester", AssigneeName: "Zhang San",
	})
	require.NoError(t, err)

	// SetStatus stamps resolved_at even for a non-resolved target status.
	ok, err := svc.SetStatus(id, models.BugStatusUrgent, "")
	require.NoError(t, err)
	assert.True(t, ok)

	bug, err := svc.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, models.BugStatusUrgent, bug.Status)
	assert.NotNil(t, bug.ResolvedAt)
	assert.Equal(t, "Zhang San", bug.Assignee,
		"an unresolvable assignee name must leave the current assignment alone")

	ok, err = svc.SetStatus(9999, models.BugStatusResolved, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBugDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewBugService(db)

	id, err := svc.Create(BugCreate{Title: "a", Description: "a", Submitter: "tester"})
	require.NoError(t, err)

	ok, err := svc.Delete(id)
	require.NoError(t, err)
	assert.True(t, ok)

	bug, err := svc.GetByID(id)
	require.NoError(t, err)
	assert.Nil(t, bug, "delete is a hard delete")

	ok, err = svc.Delete(id)
	require.NoError(t, err)
	assert.False(t, ok, "double delete reports false")
}

func TestBugLists(t *testing.T) {
	db := newTestDB(t)
	svc := NewBugService(db)
	devs := NewDeveloperService(db)

	mustCreateDeveloper(t, devs, "Zhang San")

	_, err := svc.Create(BugCreate{Title: "one", Description: "d", Submitter: "alice", AssigneeName: "Zhang San"})
	require.NoError(t, err)
	_, err = svc.Create(BugCreate{Title: "two", Description: "d", Submitter: "alice"})
	require.NoError(t, err)
	_, err = svc.Create(BugCreate{Title: "three", Description: "d", Submitter: "bob"})
	require.NoError(t, err)

	all, err := svc.List()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byAlice, err := svc.ListBySubmitter("alice")
	require.NoError(t, err)
	assert.Len(t, byAlice, 2)

	byZhang, err := svc.ListByAssignee("Zhang San")
	require.NoError(t, err)
	require.Len(t, byZhang, 1)
	assert.Equal(t, "one", byZhang[0].Title)

	// Unassigned bugs never match an assignee query.
	none, err := svc.ListByAssignee("Nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBugStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewBugService(db)
	devs := NewDeveloperService(db)

	mustCreateDeveloper(t, devs, "Zhang San")

	_, err := svc.Create(BugCreate{Title: "one", Description: "d", Submitter: "alice", AssigneeName: "Zhang San"})
	require.NoError(t, err)
	_, err = svc.Create(BugCreate{Title: "two", Description: "d", Submitter: "alice", Status: models.BugStatusResolved})
	require.NoError(t, err)
	_, err = svc.Create(BugCreate{Title: "three", Description: "d", Submitter: "bob"})
	require.NoError(t, err)

	stats, err := svc.Stats()
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 3, stats.Monthly, "all bugs were filed this month")
	assert.EqualValues(t, 1, stats.Resolved)

	assert.EqualValues(t, 2, stats.BySubmitter["alice"])
	assert.EqualValues(t, 1, stats.BySubmitter["bob"])

	assert.EqualValues(t, 2, stats.ByStatus[models.BugStatusPending])
	assert.EqualValues(t, 1, stats.ByStatus[models.BugStatusResolved])

	assert.EqualValues(t, 1, stats.ByAssignee["Zhang San"])
	assert.NotContains(t, stats.ByAssignee, models.Unassigned, "unassigned bugs are absent from assignee stats")

	require.Len(t, stats.MonthlyTrend, 12, "trend covers 12 months including empty ones")
	now := time.Now()
	assert.Equal(t, now.Format("2006-01"), stats.MonthlyTrend[0].Month, "most recent month first")
	assert.EqualValues(t, 3, stats.MonthlyTrend[0].Count)
	assert.EqualValues(t, 0, stats.MonthlyTrend[5].Count)
}
