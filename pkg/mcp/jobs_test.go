package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobManager(t *testing.T) {
	jm := NewJobManager()
	require.NotNil(t, jm)
	assert.Empty(t, jm.ListJobs())
}

func TestCreateJob(t *testing.T) {
	t.Run("new job fields correct", func(t *testing.T) {
		jm := NewJobManager()
		job := jm.CreateJob("guide")

		assert.NotEmpty(t, job.ID)
		assert.Equal(t, "guide", job.Book)
		assert.Equal(t, JobStatusPending, job.Status)
		assert.False(t, job.StartedAt.IsZero())
		assert.True(t, job.CompletedAt.IsZero())
		assert.Zero(t, job.PagesRendered)
		assert.Zero(t, job.PagesFailed)
		assert.Empty(t, job.ErrorMessage)
	})

	t.Run("duplicate active book returns same job", func(t *testing.T) {
		jm := NewJobManager()
		job1 := jm.CreateJob("guide")
		job2 := jm.CreateJob("guide")
		assert.Equal(t, job1.ID, job2.ID)
	})

	t.Run("new job allowed after completion", func(t *testing.T) {
		jm := NewJobManager()
		job1 := jm.CreateJob("guide")
		jm.UpdateStatus(job1.ID, JobStatusCompleted, "")

		job2 := jm.CreateJob("guide")
		assert.NotEqual(t, job1.ID, job2.ID)
	})

	t.Run("different books independent", func(t *testing.T) {
		jm := NewJobManager()
		assert.NotEqual(t, jm.CreateJob("a").ID, jm.CreateJob("b").ID)
	})
}

func TestGetJob(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob("guide")

	got := jm.GetJob(job.ID)
	require.NotNil(t, got)
	assert.Equal(t, job.ID, got.ID)

	// Snapshots do not alias the managed job.
	got.Status = JobStatusFailed
	assert.Equal(t, JobStatusPending, jm.GetJob(job.ID).Status)

	assert.Nil(t, jm.GetJob("nonexistent-id"))
}

func TestGetJobByBook(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob("guide")
	got := jm.GetJobByBook("guide")
	require.NotNil(t, got)
	assert.Equal(t, job.ID, got.ID)

	assert.Nil(t, jm.GetJobByBook("nonexistent"))

	jm.UpdateStatus(job.ID, JobStatusCompleted, "")
	assert.Nil(t, jm.GetJobByBook("guide"))
}

func TestIsRunning(t *testing.T) {
	jm := NewJobManager()

	jm.CreateJob("pending-book")
	assert.True(t, jm.IsRunning("pending-book"))

	running := jm.CreateJob("running-book")
	jm.UpdateStatus(running.ID, JobStatusRunning, "")
	assert.True(t, jm.IsRunning("running-book"))

	completed := jm.CreateJob("completed-book")
	jm.UpdateStatus(completed.ID, JobStatusCompleted, "")
	assert.False(t, jm.IsRunning("completed-book"))

	failed := jm.CreateJob("failed-book")
	jm.UpdateStatus(failed.ID, JobStatusFailed, "something broke")
	assert.False(t, jm.IsRunning("failed-book"))

	cancelled := jm.CreateJob("cancelled-book")
	jm.CancelJob(cancelled.ID)
	assert.False(t, jm.IsRunning("cancelled-book"))

	assert.False(t, jm.IsRunning("ghost"))
}

func TestUpdateStatus(t *testing.T) {
	t.Run("to failed sets ErrorMessage and CompletedAt", func(t *testing.T) {
		jm := NewJobManager()
		job := jm.CreateJob("guide")
		jm.UpdateStatus(job.ID, JobStatusFailed, "summary broken")

		got := jm.GetJob(job.ID)
		assert.Equal(t, JobStatusFailed, got.Status)
		assert.Equal(t, "summary broken", got.ErrorMessage)
		assert.False(t, got.CompletedAt.IsZero())
	})

	t.Run("cancelled job keeps its status", func(t *testing.T) {
		jm := NewJobManager()
		job := jm.CreateJob("guide")
		require.True(t, jm.CancelJob(job.ID))

		jm.UpdateStatus(job.ID, JobStatusCompleted, "")
		assert.Equal(t, JobStatusCancelled, jm.GetJob(job.ID).Status)
	})

	t.Run("nonexistent is no-op", func(t *testing.T) {
		jm := NewJobManager()
		jm.UpdateStatus("fake-id", JobStatusRunning, "")
		jm.UpdateProgress("fake-id", 1, 2)
	})
}

func TestUpdateProgress(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob("guide")
	jm.UpdateProgress(job.ID, 42, 3)

	got := jm.GetJob(job.ID)
	assert.Equal(t, 42, got.PagesRendered)
	assert.Equal(t, 3, got.PagesFailed)
}

func TestCancelJob(t *testing.T) {
	t.Run("running job cancelled", func(t *testing.T) {
		jm := NewJobManager()
		job := jm.CreateJob("guide")
		jm.UpdateStatus(job.ID, JobStatusRunning, "")

		assert.True(t, jm.CancelJob(job.ID))

		got := jm.GetJob(job.ID)
		assert.Equal(t, JobStatusCancelled, got.Status)
		assert.False(t, got.CompletedAt.IsZero())
		assert.ErrorIs(t, jm.GetContext(job.ID).Err(), context.Canceled)
	})

	t.Run("completed job not cancellable", func(t *testing.T) {
		jm := NewJobManager()
		job := jm.CreateJob("guide")
		jm.UpdateStatus(job.ID, JobStatusCompleted, "")
		assert.False(t, jm.CancelJob(job.ID))
	})

	t.Run("nonexistent returns false", func(t *testing.T) {
		assert.False(t, NewJobManager().CancelJob("nope"))
	})
}

func TestCancelAll(t *testing.T) {
	jm := NewJobManager()
	job1 := jm.CreateJob("a")
	job2 := jm.CreateJob("b")
	job3 := jm.CreateJob("c")
	jm.UpdateStatus(job3.ID, JobStatusCompleted, "")

	jm.CancelAll()

	assert.Equal(t, JobStatusCancelled, jm.GetJob(job1.ID).Status)
	assert.Equal(t, JobStatusCancelled, jm.GetJob(job2.ID).Status)
	assert.Equal(t, JobStatusCompleted, jm.GetJob(job3.ID).Status)

	newJob := jm.CreateJob("a")
	assert.NotEqual(t, job1.ID, newJob.ID)
	assert.Len(t, jm.ListJobs(), 4)
}

func TestGetContext(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob("guide")
	assert.NoError(t, jm.GetContext(job.ID).Err())

	assert.Equal(t, context.Background(), jm.GetContext("nope"))
}
