package university

import (
	"context"

	"github.com/Alp4ka/unigraph"
)

// RootOrgUnitKey is the parent key of top level organisational units. No
// stored unit has it.
const RootOrgUnitKey int64 = 0

// RootOrgUnit returns the synthetic unit every top level unit points to. It
// is its own parent.
func RootOrgUnit() *OrgUnit {
	parent := RootOrgUnitKey

	return &OrgUnit{
		ID:        RootOrgUnitKey,
		Name:      "Root organisation",
		ParentKey: &parent,
	}
}

func (p Place) District(ctx context.Context, l *Loaders) unigraph.Thunk[*District] {
	return l.District(ctx, p.DistrictKey)
}

// BirthPlace resolves the place the student was born in.
func (s Student) BirthPlace(ctx context.Context, l *Loaders) unigraph.Thunk[*Place] {
	return l.Place(ctx, s.BirthPlaceKey)
}

// Residence resolves the place the student lives in.
func (s Student) Residence(ctx context.Context, l *Loaders) unigraph.Thunk[*Place] {
	return l.Place(ctx, s.ResidenceKey)
}

// Parent resolves the parent unit: nil when the unit has no parent, the
// synthetic root for RootOrgUnitKey, the stored unit otherwise.
func (o OrgUnit) Parent(ctx context.Context, l *Loaders) unigraph.Thunk[*OrgUnit] {
	switch {
	case o.ParentKey == nil:
		return unigraph.Resolved[*OrgUnit](nil)
	case *o.ParentKey == RootOrgUnitKey:
		return unigraph.Resolved(RootOrgUnit())
	default:
		return l.OrgUnit(ctx, *o.ParentKey)
	}
}

func (c Course) OrgUnit(ctx context.Context, l *Loaders) unigraph.Thunk[*OrgUnit] {
	return l.OrgUnit(ctx, c.OrgUnitKey)
}

func (i Instructor) Residence(ctx context.Context, l *Loaders) unigraph.Thunk[*Place] {
	return l.Place(ctx, i.ResidenceKey)
}

func (i Instructor) OrgUnit(ctx context.Context, l *Loaders) unigraph.Thunk[*OrgUnit] {
	return l.OrgUnit(ctx, i.OrgUnitKey)
}

func (e ExamResult) Student(ctx context.Context, l *Loaders) unigraph.Thunk[*Student] {
	return l.Student(ctx, e.StudentKey)
}

func (e ExamResult) Course(ctx context.Context, l *Loaders) unigraph.Thunk[*Course] {
	return l.Course(ctx, e.CourseKey)
}

func (e ExamResult) Instructor(ctx context.Context, l *Loaders) unigraph.Thunk[*Instructor] {
	return l.Instructor(ctx, e.InstructorKey)
}

func (r Reservation) Room(ctx context.Context, l *Loaders) unigraph.Thunk[*Room] {
	return l.Room(ctx, r.RoomKey)
}

func (r Reservation) Course(ctx context.Context, l *Loaders) unigraph.Thunk[*Course] {
	return l.Course(ctx, r.CourseKey)
}
