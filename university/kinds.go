// Package university defines the entity kinds of the university dataset,
// their row mappers and the relational accessors between them.
package university

import (
	"github.com/Alp4ka/unigraph"
)

// Room is a lecture hall.
type Room struct {
	ID       int64 `json:"id"`
	Capacity int64 `json:"capacity"`
}

// District is a unit of local government.
type District struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Place is a settlement identified by its postal code.
type Place struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DistrictKey int64  `json:"districtId"`
}

type Student struct {
	ID            int64  `json:"id"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	BirthPlaceKey int64  `json:"birthPlaceId"`
	ResidenceKey  int64  `json:"residenceId"`
	Birthday      string `json:"birthday"`
	NationalID    string `json:"nationalId"`
}

// OrgUnit is an organisational unit. ParentKey is nil for units without a
// parent and 0 for top level units.
type OrgUnit struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ParentKey *int64 `json:"parentId"`
}

type Course struct {
	ID          int64  `json:"id"`
	ShortName   string `json:"shortName"`
	Name        string `json:"name"`
	OrgUnitKey  int64  `json:"orgUnitId"`
	Enrolled    int64  `json:"enrolled"`
	WeeklyHours int64  `json:"weeklyHours"`
}

type Instructor struct {
	ID           int64   `json:"id"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	ResidenceKey int64   `json:"residenceId"`
	OrgUnitKey   int64   `json:"orgUnitId"`
	Coefficient  float64 `json:"coefficient"`
}

type ExamResult struct {
	ID            int64  `json:"id"`
	StudentKey    int64  `json:"studentId"`
	CourseKey     int64  `json:"courseId"`
	InstructorKey int64  `json:"instructorId"`
	Date          string `json:"date"`
	Grade         int64  `json:"grade"`
}

// Reservation books a room for a course on a day at an hour.
type Reservation struct {
	ID        int64  `json:"id"`
	RoomKey   int64  `json:"roomId"`
	Day       string `json:"day"`
	Hour      int64  `json:"hour"`
	CourseKey int64  `json:"courseId"`
}

func (r Room) Key() int64        { return r.ID }
func (d District) Key() int64    { return d.ID }
func (p Place) Key() int64       { return p.ID }
func (s Student) Key() int64     { return s.ID }
func (o OrgUnit) Key() int64     { return o.ID }
func (c Course) Key() int64      { return c.ID }
func (i Instructor) Key() int64  { return i.ID }
func (e ExamResult) Key() int64  { return e.ID }
func (r Reservation) Key() int64 { return r.ID }

var (
	RoomKind = unigraph.NewKind("room", "room", "room_id", func(row unigraph.Row) (Room, error) {
		r := rowReader{row: row}
		ret := Room{
			ID:       r.integer("room_id"),
			Capacity: r.integer("capacity"),
		}

		return ret, r.err
	})

	DistrictKind = unigraph.NewKind("district", "district", "district_id", func(row unigraph.Row) (District, error) {
		r := rowReader{row: row}
		ret := District{
			ID:   r.integer("district_id"),
			Name: r.text("name"),
		}

		return ret, r.err
	})

	PlaceKind = unigraph.NewKind("place", "place", "postal_code", func(row unigraph.Row) (Place, error) {
		r := rowReader{row: row}
		ret := Place{
			ID:          r.integer("postal_code"),
			Name:        r.text("name"),
			DistrictKey: r.integer("district_id"),
		}

		return ret, r.err
	})

	StudentKind = unigraph.NewKind("student", "student", "student_id", func(row unigraph.Row) (Student, error) {
		r := rowReader{row: row}
		ret := Student{
			ID:            r.integer("student_id"),
			FirstName:     r.text("first_name"),
			LastName:      r.text("last_name"),
			BirthPlaceKey: r.integer("birth_postal_code"),
			ResidenceKey:  r.integer("residence_postal_code"),
			Birthday:      r.text("birthday"),
			NationalID:    r.text("national_id"),
		}

		return ret, r.err
	})

	OrgUnitKind = unigraph.NewKind("org unit", "org_unit", "org_unit_id", func(row unigraph.Row) (OrgUnit, error) {
		r := rowReader{row: row}
		ret := OrgUnit{
			ID:        r.integer("org_unit_id"),
			Name:      r.text("name"),
			ParentKey: r.nullInteger("parent_id"),
		}

		return ret, r.err
	})

	CourseKind = unigraph.NewKind("course", "course", "course_id", func(row unigraph.Row) (Course, error) {
		r := rowReader{row: row}
		ret := Course{
			ID:          r.integer("course_id"),
			ShortName:   r.text("short_name"),
			Name:        r.text("name"),
			OrgUnitKey:  r.integer("org_unit_id"),
			Enrolled:    r.integer("enrolled"),
			WeeklyHours: r.integer("weekly_hours"),
		}

		return ret, r.err
	})

	InstructorKind = unigraph.NewKind("instructor", "instructor", "instructor_id", func(row unigraph.Row) (Instructor, error) {
		r := rowReader{row: row}
		ret := Instructor{
			ID:           r.integer("instructor_id"),
			FirstName:    r.text("first_name"),
			LastName:     r.text("last_name"),
			ResidenceKey: r.integer("residence_postal_code"),
			OrgUnitKey:   r.integer("org_unit_id"),
			Coefficient:  r.decimal("coefficient"),
		}

		return ret, r.err
	})

	ExamResultKind = unigraph.NewKind("exam result", "exam_result", "id", func(row unigraph.Row) (ExamResult, error) {
		r := rowReader{row: row}
		ret := ExamResult{
			ID:            r.integer("id"),
			StudentKey:    r.integer("student_id"),
			CourseKey:     r.integer("course_id"),
			InstructorKey: r.integer("instructor_id"),
			Date:          r.text("exam_date"),
			Grade:         r.integer("grade"),
		}

		return ret, r.err
	})

	ReservationKind = unigraph.NewKind("reservation", "reservation", "id", func(row unigraph.Row) (Reservation, error) {
		r := rowReader{row: row}
		ret := Reservation{
			ID:        r.integer("id"),
			RoomKey:   r.integer("room_id"),
			Day:       r.text("day"),
			Hour:      r.integer("hour"),
			CourseKey: r.integer("course_id"),
		}

		return ret, r.err
	})
)

// rowReader reads typed columns and keeps the first error, so a mapper can
// read every field and check once.
type rowReader struct {
	row unigraph.Row
	err error
}

func (r *rowReader) integer(field string) int64 {
	if r.err != nil {
		return 0
	}

	var v int64
	v, r.err = r.row.Int64(field)

	return v
}

func (r *rowReader) nullInteger(field string) *int64 {
	if r.err != nil {
		return nil
	}

	var v *int64
	v, r.err = r.row.NullInt64(field)

	return v
}

func (r *rowReader) decimal(field string) float64 {
	if r.err != nil {
		return 0
	}

	var v float64
	v, r.err = r.row.Float64(field)

	return v
}

func (r *rowReader) text(field string) string {
	if r.err != nil {
		return ""
	}

	var v string
	v, r.err = r.row.String(field)

	return v
}
