package university

import (
	"context"

	"github.com/Alp4ka/unigraph"
	"github.com/Alp4ka/unigraph/metrics"
)

type LoadersOption func(*Loaders)

// WithoutBatching makes relational accessors fetch every referenced record
// with its own single key query.
func WithoutBatching() LoadersOption {
	return func(l *Loaders) {
		l.batching = false
	}
}

// Loaders holds one batch loader per entity kind. A Loaders value caches
// records and must not outlive the request it was created for.
type Loaders struct {
	storage  unigraph.Storage
	batching bool

	rooms        *unigraph.Loader[int64, *Room]
	districts    *unigraph.Loader[int64, *District]
	places       *unigraph.Loader[int64, *Place]
	students     *unigraph.Loader[int64, *Student]
	orgUnits     *unigraph.Loader[int64, *OrgUnit]
	courses      *unigraph.Loader[int64, *Course]
	instructors  *unigraph.Loader[int64, *Instructor]
	examResults  *unigraph.Loader[int64, *ExamResult]
	reservations *unigraph.Loader[int64, *Reservation]
}

func NewLoaders(st unigraph.Storage, opts ...LoadersOption) *Loaders {
	l := &Loaders{
		storage:  st,
		batching: true,

		rooms:        newLoader(st, RoomKind),
		districts:    newLoader(st, DistrictKind),
		places:       newLoader(st, PlaceKind),
		students:     newLoader(st, StudentKind),
		orgUnits:     newLoader(st, OrgUnitKind),
		courses:      newLoader(st, CourseKind),
		instructors:  newLoader(st, InstructorKind),
		examResults:  newLoader(st, ExamResultKind),
		reservations: newLoader(st, ReservationKind),
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Storage returns the storage the loaders read from.
func (l *Loaders) Storage() unigraph.Storage {
	return l.storage
}

// The lookups below resolve a single record by key. Lookups of one kind
// issued before any of their thunks is called share one grouped fetch.

func (l *Loaders) Room(ctx context.Context, key int64) unigraph.Thunk[*Room] {
	return load(ctx, l, l.rooms, RoomKind, key)
}

func (l *Loaders) District(ctx context.Context, key int64) unigraph.Thunk[*District] {
	return load(ctx, l, l.districts, DistrictKind, key)
}

func (l *Loaders) Place(ctx context.Context, key int64) unigraph.Thunk[*Place] {
	return load(ctx, l, l.places, PlaceKind, key)
}

func (l *Loaders) Student(ctx context.Context, key int64) unigraph.Thunk[*Student] {
	return load(ctx, l, l.students, StudentKind, key)
}

func (l *Loaders) OrgUnit(ctx context.Context, key int64) unigraph.Thunk[*OrgUnit] {
	return load(ctx, l, l.orgUnits, OrgUnitKind, key)
}

func (l *Loaders) Course(ctx context.Context, key int64) unigraph.Thunk[*Course] {
	return load(ctx, l, l.courses, CourseKind, key)
}

func (l *Loaders) Instructor(ctx context.Context, key int64) unigraph.Thunk[*Instructor] {
	return load(ctx, l, l.instructors, InstructorKind, key)
}

func (l *Loaders) ExamResult(ctx context.Context, key int64) unigraph.Thunk[*ExamResult] {
	return load(ctx, l, l.examResults, ExamResultKind, key)
}

func (l *Loaders) Reservation(ctx context.Context, key int64) unigraph.Thunk[*Reservation] {
	return load(ctx, l, l.reservations, ReservationKind, key)
}

func newLoader[T unigraph.Entity](st unigraph.Storage, kind unigraph.Kind[T]) *unigraph.Loader[int64, *T] {
	batchSize := metrics.LoaderBatchSize.WithLabelValues(kind.Name())

	return unigraph.NewEntityLoader(st, kind, unigraph.WithBatchObserver(func(size int) {
		batchSize.Observe(float64(size))
	}))
}

func load[T unigraph.Entity](
	ctx context.Context,
	l *Loaders,
	loader *unigraph.Loader[int64, *T],
	kind unigraph.Kind[T],
	key int64,
) unigraph.Thunk[*T] {
	if !l.batching {
		return func() (*T, error) {
			return unigraph.GetOne(ctx, l.storage, kind, key)
		}
	}

	return loader.Load(ctx, key)
}
