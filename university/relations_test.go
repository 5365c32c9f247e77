package university

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alp4ka/unigraph"
	"github.com/Alp4ka/unigraph/internal/testdb"
)

func Test_RootOrgUnit(t *testing.T) {
	root := RootOrgUnit()
	assert.Equal(t, RootOrgUnitKey, root.ID)
	assert.Equal(t, "Root organisation", root.Name)
	require.NotNil(t, root.ParentKey)
	assert.Equal(t, RootOrgUnitKey, *root.ParentKey)

	// Callers may not corrupt each other's root.
	root.Name = "changed"
	assert.Equal(t, "Root organisation", RootOrgUnit().Name)
}

func Test_OrgUnit_Parent(t *testing.T) {
	tests := []struct {
		name     string
		unit     OrgUnit
		expected *OrgUnit
	}{
		{
			name:     "no parent",
			unit:     OrgUnit{ID: 4},
			expected: nil,
		},
		{
			name:     "top level unit",
			unit:     OrgUnit{ID: 1, ParentKey: ptr(RootOrgUnitKey)},
			expected: RootOrgUnit(),
		},
		{
			name:     "root is its own parent",
			unit:     *RootOrgUnit(),
			expected: RootOrgUnit(),
		},
		{
			name:     "stored parent",
			unit:     OrgUnit{ID: 2, ParentKey: ptr(int64(1))},
			expected: &OrgUnit{ID: 1, Name: "Faculty of Engineering", ParentKey: ptr(RootOrgUnitKey)},
		},
		{
			name:     "dangling parent",
			unit:     OrgUnit{ID: 5, ParentKey: ptr(int64(99))},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newCountingStorage(testdb.Open(t))
			l := NewLoaders(st)

			parent, err := tt.unit.Parent(context.Background(), l)()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, parent)

			if tt.unit.ParentKey == nil || *tt.unit.ParentKey == RootOrgUnitKey {
				assert.Zero(t, st.count("FetchMatching", "org_unit"))
			}
		})
	}
}

func Test_Loaders_OneGroupedFetchPerTick(t *testing.T) {
	ctx := context.Background()
	st := newCountingStorage(testdb.Open(t))
	l := NewLoaders(st)

	students, err := unigraph.GetAll(ctx, st, StudentKind)
	require.NoError(t, err)

	var thunks []unigraph.Thunk[*Place]
	for _, s := range students {
		thunks = append(thunks, s.BirthPlace(ctx, l), s.Residence(ctx, l))
	}
	assert.Zero(t, st.count("FetchMatching", "place"))

	var names []string
	for _, thunk := range thunks {
		place, err := thunk()
		require.NoError(t, err)
		require.NotNil(t, place)
		names = append(names, place.Name)
	}

	assert.Equal(t, []string{"Split", "Zagreb", "Zagreb", "Zagreb", "Sesvete", "Split"}, names)
	assert.Equal(t, [][]int64{{10000, 10360, 21000}}, st.matchingKeys("place"))

	// The next tick reads the cache for known keys.
	place, err := students[0].Residence(ctx, l)()
	require.NoError(t, err)
	assert.Equal(t, "Zagreb", place.Name)
	assert.Equal(t, 1, st.count("FetchMatching", "place"))
}

func Test_Loaders_KindsAreBatchedSeparately(t *testing.T) {
	ctx := context.Background()
	st := newCountingStorage(testdb.Open(t))
	l := NewLoaders(st)

	result := ExamResult{ID: 1, StudentKey: 1, CourseKey: 1, InstructorKey: 1}
	student := result.Student(ctx, l)
	course := result.Course(ctx, l)
	instructor := result.Instructor(ctx, l)

	s, err := student()
	require.NoError(t, err)
	assert.Equal(t, "Horvat", s.LastName)

	c, err := course()
	require.NoError(t, err)
	assert.Equal(t, "PROG", c.ShortName)

	i, err := instructor()
	require.NoError(t, err)
	assert.Equal(t, "Novak", i.LastName)

	for _, collection := range []string{"student", "course", "instructor"} {
		assert.Equal(t, 1, st.count("FetchMatching", collection), collection)
	}

	unit, err := c.OrgUnit(ctx, l)()
	require.NoError(t, err)
	assert.Equal(t, "Department of Computing", unit.Name)

	residence, err := i.Residence(ctx, l)()
	require.NoError(t, err)
	assert.Equal(t, "Zagreb", residence.Name)

	district, err := residence.District(ctx, l)()
	require.NoError(t, err)
	assert.Equal(t, "City of Zagreb", district.Name)
}

func Test_Reservation_Relations(t *testing.T) {
	ctx := context.Background()
	l := NewLoaders(testdb.Open(t))

	reservation := Reservation{ID: 2, RoomKey: 2, CourseKey: 2}

	room, err := reservation.Room(ctx, l)()
	require.NoError(t, err)
	assert.Equal(t, &Room{ID: 2, Capacity: 20}, room)

	course, err := reservation.Course(ctx, l)()
	require.NoError(t, err)
	assert.Equal(t, "Mathematics 1", course.Name)

	unit, err := course.OrgUnit(ctx, l)()
	require.NoError(t, err)
	assert.Equal(t, "Department of Mathematics", unit.Name)
}

func Test_Loaders_MissingReference(t *testing.T) {
	l := NewLoaders(testdb.Open(t))

	district, err := Place{ID: 1, DistrictKey: 99}.District(context.Background(), l)()
	require.NoError(t, err)
	assert.Nil(t, district)
}

func Test_Loaders_WithoutBatching(t *testing.T) {
	ctx := context.Background()
	st := newCountingStorage(testdb.Open(t))
	l := NewLoaders(st, WithoutBatching())
	assert.Same(t, st, l.Storage())

	instructor := Instructor{ID: 1, ResidenceKey: 10000, OrgUnitKey: 2}
	residence := instructor.Residence(ctx, l)
	unit := instructor.OrgUnit(ctx, l)
	assert.Zero(t, st.count("FetchOne", "place"))

	place, err := residence()
	require.NoError(t, err)
	assert.Equal(t, "Zagreb", place.Name)

	u, err := unit()
	require.NoError(t, err)
	assert.Equal(t, "Department of Computing", u.Name)

	_, err = residence()
	require.NoError(t, err)

	assert.Equal(t, 2, st.count("FetchOne", "place"))
	assert.Equal(t, 1, st.count("FetchOne", "org_unit"))
	assert.Zero(t, st.count("FetchMatching", "place"))
	assert.Zero(t, st.count("FetchMatching", "org_unit"))
}

type tFailingStorage struct {
	unigraph.Storage
}

var errUnavailable = errors.New("database unavailable")

func (tFailingStorage) FetchMatching(context.Context, string, string, []int64) ([]unigraph.Row, error) {
	return nil, errUnavailable
}

func Test_Loaders_StorageFailure(t *testing.T) {
	ctx := context.Background()
	l := NewLoaders(tFailingStorage{})

	first := Student{BirthPlaceKey: 10000, ResidenceKey: 21000}
	second := Student{BirthPlaceKey: 10360}

	birth := first.BirthPlace(ctx, l)
	residence := first.Residence(ctx, l)
	other := second.BirthPlace(ctx, l)

	for _, thunk := range []unigraph.Thunk[*Place]{birth, residence, other} {
		_, err := thunk()
		assert.ErrorIs(t, err, errUnavailable)
	}
}

func Test_Loaders_ByKey(t *testing.T) {
	ctx := context.Background()
	st := newCountingStorage(testdb.Open(t))
	l := NewLoaders(st)

	first := l.ExamResult(ctx, 1)
	last := l.ExamResult(ctx, 4)
	missing := l.ExamResult(ctx, 99)
	monday := l.Reservation(ctx, 1)
	wednesday := l.Reservation(ctx, 3)
	assert.Zero(t, st.count("FetchMatching", "exam_result"))

	result, err := first()
	require.NoError(t, err)
	assert.Equal(t, &ExamResult{ID: 1, StudentKey: 1, CourseKey: 1, InstructorKey: 1, Date: "2024-01-20", Grade: 5}, result)

	result, err = last()
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Grade)

	result, err = missing()
	require.NoError(t, err)
	assert.Nil(t, result)

	reservation, err := monday()
	require.NoError(t, err)
	assert.Equal(t, &Reservation{ID: 1, RoomKey: 1, Day: "MON", Hour: 8, CourseKey: 1}, reservation)

	reservation, err = wednesday()
	require.NoError(t, err)
	assert.Equal(t, "WED", reservation.Day)

	assert.Equal(t, [][]int64{{1, 4, 99}}, st.matchingKeys("exam_result"))
	assert.Equal(t, [][]int64{{1, 3}}, st.matchingKeys("reservation"))

	room, err := l.Room(ctx, reservation.RoomKey)()
	require.NoError(t, err)
	assert.Equal(t, int64(10), room.Capacity)
}
