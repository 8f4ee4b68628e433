package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenspark/taskflow/pkg/domain"
)

func TestSetFilter_ResetsPage(t *testing.T) {
	l := NewChildren(9, TaskPageSize)
	l.TotalPages = 4
	l.Page = 2

	require.True(t, l.SetFilter(domain.FilterCompleted))
	assert.Equal(t, 0, l.Page)

	tk := l.Begin()
	assert.Equal(t, Key{Parent: 9, Page: 0, Filter: domain.FilterCompleted}, tk.Key)
}

func TestSetFilter_SameValueNoRefetch(t *testing.T) {
	l := NewChildren(1, TaskPageSize)
	l.Page = 1
	assert.False(t, l.SetFilter(domain.FilterAll))
	assert.Equal(t, 1, l.Page)
}

func TestCycleFilter(t *testing.T) {
	l := NewChildren(1, TaskPageSize)
	var seen []domain.StatusFilter
	for range 4 {
		l.Page = 3
		require.True(t, l.CycleFilter())
		assert.Equal(t, 0, l.Page)
		seen = append(seen, l.Filter)
	}
	assert.Equal(t, []domain.StatusFilter{
		domain.FilterPending, domain.FilterInProgress, domain.FilterCompleted, domain.FilterAll,
	}, seen)
}

func TestToggleSort(t *testing.T) {
	l := NewChildren(1, TaskPageSize)
	l.Page = 2
	require.True(t, l.ToggleSort())
	assert.True(t, l.SortTitle)
	assert.Equal(t, 0, l.Page)
}

func TestAccept_DropsStaleResponses(t *testing.T) {
	l := New(ProjectPageSize)
	l.TotalPages = 3

	first := l.Begin()
	l.Next()
	second := l.Begin()

	accepted, _ := l.Apply(first, 3, 6)
	assert.False(t, accepted, "superseded fetch is dropped")
	accepted, _ = l.Apply(second, 3, 6)
	assert.True(t, accepted)
}

func TestAccept_SameKeyRefetchSupersedes(t *testing.T) {
	l := New(ProjectPageSize)
	a := l.Begin()
	b := l.Begin()
	assert.Equal(t, a.Key, b.Key)
	assert.False(t, l.Accept(a))
	assert.True(t, l.Accept(b))
}

func TestApply_ClampsEmptyTrailingPage(t *testing.T) {
	l := New(ProjectPageSize)
	l.TotalPages = 3
	l.Page = 2

	tk := l.Begin()
	accepted, refetch := l.Apply(tk, 2, 0)
	assert.True(t, accepted)
	assert.True(t, refetch)
	assert.Equal(t, 1, l.Page)
	assert.Equal(t, 2, l.TotalPages)
}

func TestApply_EmptyFirstPageStays(t *testing.T) {
	l := New(ProjectPageSize)
	tk := l.Begin()
	accepted, refetch := l.Apply(tk, 0, 0)
	assert.True(t, accepted)
	assert.False(t, refetch)
	assert.Equal(t, 0, l.Page)
}

func TestPrevNextDisabled(t *testing.T) {
	for total := 1; total <= 5; total++ {
		for page := 0; page < total; page++ {
			l := List{Page: page, TotalPages: total, Size: 5}
			assert.Equal(t, page == 0, l.PrevDisabled(), "page=%d total=%d", page, total)
			assert.Equal(t, page == total-1, l.NextDisabled(), "page=%d total=%d", page, total)
		}
	}
}

func TestPrevNext_NoOpWhenDisabled(t *testing.T) {
	l := List{Page: 0, TotalPages: 2}
	assert.False(t, l.Prev())
	assert.Equal(t, 0, l.Page)
	assert.True(t, l.Next())
	assert.Equal(t, 1, l.Page)
	assert.False(t, l.Next())
	assert.Equal(t, 1, l.Page)
	assert.True(t, l.Prev())
	assert.Equal(t, 0, l.Page)
}

func TestGoTo(t *testing.T) {
	l := List{TotalPages: 5}
	for _, k := range []int{3, 0, 4, 1} {
		l.GoTo(k)
		assert.Equal(t, k, l.Page)
	}
	assert.False(t, l.GoTo(1), "same page needs no refetch")
}

func TestControls(t *testing.T) {
	l := List{Page: 1, TotalPages: 3}
	c := l.Controls()
	require.False(t, c.Hidden)
	assert.False(t, c.PrevDisabled)
	assert.False(t, c.NextDisabled)
	require.Len(t, c.Pages, 3)
	assert.Equal(t, "1", c.Pages[0].Label)
	assert.Equal(t, 2, c.Pages[2].Index)
	assert.True(t, c.Pages[1].Current)
	assert.False(t, c.Pages[0].Current)
}

func TestControls_HiddenForSinglePage(t *testing.T) {
	for _, total := range []int{0, 1} {
		l := List{TotalPages: total}
		assert.True(t, l.Controls().Hidden)
	}
}
