package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blues/launchpad/internal/auth"
	"github.com/blues/launchpad/internal/errs"
	"github.com/blues/launchpad/internal/model"
	"github.com/blues/launchpad/internal/repository"
	"github.com/blues/launchpad/internal/testkit"
)

func newProject(id, owner string) *model.ProjectModel {
	return &model.ProjectModel{
		Id:           id,
		Owner:        owner,
		Name:         "Test Project",
		GoalAmount:   1000,
		StartTime:    100,
		EndTime:      200,
		IsActive:     true,
		VaultAddress: auth.VaultAddress(id),
	}
}

func TestProjectRepository_CreateRejectsDuplicateKey(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProjectRepository(testkit.NewDB(t))
	owner := testkit.Principal(t, 1).String()

	require.NoError(t, repo.Create(ctx, newProject("p-1", owner)))

	dup := newProject("p-1", owner)
	dup.Name = "Overwrite attempt"
	dup.VaultAddress = "0x00000000000000000000000000000000000000ff"
	err := repo.Create(ctx, dup)
	require.ErrorIs(t, err, errs.ErrDuplicateRecord)

	got, err := repo.Get(ctx, "p-1")
	require.NoError(t, err)
	require.Equal(t, "Test Project", got.Name)

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, errs.ErrProjectNotFound)
}

func TestProjectRepository_ListFiltersByOwner(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProjectRepository(testkit.NewDB(t))
	alice := testkit.Principal(t, 1).String()
	bob := testkit.Principal(t, 2).String()

	require.NoError(t, repo.Create(ctx, newProject("p-1", alice)))
	require.NoError(t, repo.Create(ctx, newProject("p-2", alice)))
	require.NoError(t, repo.Create(ctx, newProject("p-3", bob)))

	projects, total, err := repo.List(ctx, repository.ProjectFilter{Owner: alice}, 1, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, projects, 1)

	_, total, err = repo.List(ctx, repository.ProjectFilter{}, 0, 0)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)

	var seen int
	require.NoError(t, repo.Each(ctx, 2, func(batch []model.ProjectModel) error {
		seen += len(batch)
		return nil
	}))
	require.Equal(t, 3, seen)
}

func TestContributionRepository_WithdrawOnceAndStats(t *testing.T) {
	ctx := context.Background()
	db := testkit.NewDB(t)
	projects := repository.NewProjectRepository(db)
	contributions := repository.NewContributionRepository(db)
	alice := testkit.Principal(t, 1).String()
	bob := testkit.Principal(t, 2).String()

	require.NoError(t, projects.Create(ctx, newProject("p-1", alice)))
	for i, c := range []struct {
		who    string
		amount uint64
	}{{alice, 100}, {alice, 50}, {bob, 300}} {
		require.NoError(t, contributions.Create(ctx, &model.ContributionModel{
			Id:          fmt.Sprintf("c-%d", i),
			ProjectId:   "p-1",
			Contributor: c.who,
			Amount:      c.amount,
		}))
	}

	require.NoError(t, contributions.MarkWithdrawn(ctx, "c-2", time.Unix(500, 0)))
	require.ErrorIs(t, contributions.MarkWithdrawn(ctx, "c-2", time.Unix(501, 0)), errs.ErrAlreadyWithdrawn)

	stats, err := contributions.Stats(ctx, "p-1")
	require.NoError(t, err)
	require.Equal(t, repository.ContributionStats{
		ContributionCount: 3,
		ContributorCount:  2,
		TotalAmount:       450,
		RefundedCount:     1,
		RefundedAmount:    300,
	}, stats)

	outstanding, err := contributions.SumOutstanding(ctx, "p-1")
	require.NoError(t, err)
	require.Equal(t, uint64(150), outstanding)

	byAlice, err := contributions.SumByContributor(ctx, "p-1", alice)
	require.NoError(t, err)
	require.Equal(t, uint64(150), byAlice)

	list, total, err := contributions.List(ctx, "p-1", repository.ContributionFilter{Contributor: bob}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.True(t, list[0].Withdrawn)
	require.NotNil(t, list[0].RefundedAt)
}

func TestEventRepository_Outbox(t *testing.T) {
	ctx := context.Background()
	events := repository.NewEventRepository(testkit.NewDB(t))

	for i := 0; i < 3; i++ {
		require.NoError(t, events.Append(ctx, &model.EventModel{
			ProjectId: "p-1",
			EventType: model.EventContributionMade,
			Actor:     testkit.Principal(t, 1).String(),
			Amount:    uint64(i + 1),
		}))
	}

	pending, err := events.ListUnprocessed(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	require.Less(t, pending[0].Id, pending[1].Id)

	require.NoError(t, events.MarkProcessed(ctx, pending[0].Id, time.Unix(10, 0)))

	pending, err = events.ListUnprocessed(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, uint64(2), pending[0].Amount)
}
