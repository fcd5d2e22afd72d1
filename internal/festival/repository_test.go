package festival_test

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lankatrip/festweather/internal/festival"
)

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func names(fs []*festival.Festival) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Name)
	}
	return out
}

func seedRepository(t *testing.T, repo festival.Repository) []*festival.Festival {
	t.Helper()

	items := []*festival.Festival{
		{Name: "Esala Perahera", Location: "Kandy", StartDate: date(2026, 7, 25), EndDate: date(2026, 8, 5), Type: festival.TypeOutdoor, IsActive: true},
		{Name: "Vesak", Location: "Nationwide", StartDate: date(2026, 5, 15), EndDate: date(2026, 5, 17), Type: festival.TypeReligious, IsActive: true},
		{Name: "Nallur Festival", Location: "Jaffna", StartDate: date(2026, 8, 10), EndDate: date(2026, 8, 31), Type: festival.TypeOutdoor, IsActive: true},
		{Name: "Kandy Perahera", Location: "KANDY", StartDate: date(2026, 7, 25), EndDate: date(2026, 8, 5), Type: festival.TypeOutdoor, IsActive: true},
		{Name: "Retired Pageant", Location: "Kandy", StartDate: date(2026, 7, 25), EndDate: date(2026, 7, 26), Type: festival.TypeCultural, IsActive: false},
	}

	ctx := context.Background()
	for _, f := range items {
		require.NoError(t, repo.Create(ctx, f))
		require.NotZero(t, f.ID)
	}
	return items
}

// runRepositoryContract exercises the behaviour every Repository must share.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) festival.Repository) {
	t.Run("create assigns increasing ids", func(t *testing.T) {
		items := seedRepository(t, newRepo(t))
		for i := 1; i < len(items); i++ {
			assert.Greater(t, items[i].ID, items[i-1].ID)
		}
	})

	t.Run("get returns active only", func(t *testing.T) {
		repo := newRepo(t)
		items := seedRepository(t, repo)
		ctx := context.Background()

		got, err := repo.Get(ctx, items[0].ID)
		require.NoError(t, err)
		assert.Equal(t, items[0], got)

		_, err = repo.Get(ctx, items[4].ID)
		assert.ErrorIs(t, err, festival.ErrFestivalNotFound)

		_, err = repo.Get(ctx, 9999)
		assert.ErrorIs(t, err, festival.ErrFestivalNotFound)
	})

	t.Run("list paginates active festivals", func(t *testing.T) {
		repo := newRepo(t)
		seedRepository(t, repo)
		ctx := context.Background()

		all, err := repo.List(ctx, festival.ListOptions{Limit: 100})
		require.NoError(t, err)
		assert.Equal(t, []string{"Esala Perahera", "Vesak", "Nallur Festival", "Kandy Perahera"}, names(all))

		page, err := repo.List(ctx, festival.ListOptions{Skip: 1, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"Vesak", "Nallur Festival"}, names(page))

		empty, err := repo.List(ctx, festival.ListOptions{Skip: 10, Limit: 2})
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("on date is inclusive at both ends", func(t *testing.T) {
		repo := newRepo(t)
		seedRepository(t, repo)
		ctx := context.Background()

		tests := []struct {
			day  civil.Date
			want []string
		}{
			{date(2026, 7, 24), []string{}},
			{date(2026, 7, 25), []string{"Esala Perahera", "Kandy Perahera"}},
			{date(2026, 8, 5), []string{"Esala Perahera", "Kandy Perahera"}},
			{date(2026, 8, 6), []string{}},
			{date(2026, 8, 31), []string{"Nallur Festival"}},
		}
		for _, tt := range tests {
			got, err := repo.ListOnDate(ctx, tt.day)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got), tt.day.String())
		}
	})

	t.Run("in range uses overlap", func(t *testing.T) {
		repo := newRepo(t)
		seedRepository(t, repo)

		got, err := repo.ListInRange(context.Background(), date(2026, 8, 1), date(2026, 8, 10))
		require.NoError(t, err)
		assert.Equal(t, []string{"Esala Perahera", "Nallur Festival", "Kandy Perahera"}, names(got))
	})

	t.Run("location match ignores case", func(t *testing.T) {
		repo := newRepo(t)
		seedRepository(t, repo)

		got, err := repo.ListByLocation(context.Background(), "kan")
		require.NoError(t, err)
		assert.Equal(t, []string{"Esala Perahera", "Kandy Perahera"}, names(got))

		got, err = repo.ListByLocation(context.Background(), "100%")
		require.NoError(t, err)
		assert.Empty(t, got, "wildcards are matched literally")
	})

	t.Run("search combines filters", func(t *testing.T) {
		repo := newRepo(t)
		seedRepository(t, repo)
		ctx := context.Background()

		from := date(2026, 8, 6)
		got, err := repo.Search(ctx, festival.SearchFilter{Type: festival.TypeOutdoor, From: &from})
		require.NoError(t, err)
		assert.Equal(t, []string{"Nallur Festival"}, names(got))

		to := date(2026, 6, 1)
		got, err = repo.Search(ctx, festival.SearchFilter{To: &to})
		require.NoError(t, err)
		assert.Equal(t, []string{"Vesak"}, names(got))

		got, err = repo.Search(ctx, festival.SearchFilter{Location: "kandy", Type: festival.TypeCultural})
		require.NoError(t, err)
		assert.Empty(t, got, "inactive festivals are never returned")

		got, err = repo.Search(ctx, festival.SearchFilter{})
		require.NoError(t, err)
		assert.Len(t, got, 4)
	})

	t.Run("update and soft delete see active only", func(t *testing.T) {
		repo := newRepo(t)
		items := seedRepository(t, repo)
		ctx := context.Background()

		updated := *items[1]
		updated.Description = "Festival of lights"
		require.NoError(t, repo.Update(ctx, &updated))

		got, err := repo.Get(ctx, updated.ID)
		require.NoError(t, err)
		assert.Equal(t, "Festival of lights", got.Description)

		retired := *items[4]
		assert.ErrorIs(t, repo.Update(ctx, &retired), festival.ErrFestivalNotFound)

		require.NoError(t, repo.SoftDelete(ctx, items[1].ID))
		assert.ErrorIs(t, repo.SoftDelete(ctx, items[1].ID), festival.ErrFestivalNotFound)
		assert.ErrorIs(t, repo.SoftDelete(ctx, 9999), festival.ErrFestivalNotFound)

		onVesak, err := repo.ListOnDate(ctx, date(2026, 5, 16))
		require.NoError(t, err)
		assert.Empty(t, onVesak)
	})
}

func TestInMemoryRepository(t *testing.T) {
	runRepositoryContract(t, func(*testing.T) festival.Repository {
		return festival.NewInMemoryRepository()
	})
}

func TestSQLiteRepository(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) festival.Repository {
		repo, err := festival.OpenSQLiteRepository(context.Background(), ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = repo.Close() })
		return repo
	})
}
