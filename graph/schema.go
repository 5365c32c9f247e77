// Package graph exposes the university dataset as a read-only GraphQL API.
//
// Every kind gets three query fields: an offset paginated one named after
// the kind, a cursor paginated one with the Sequence suffix and an
// unpaginated list prefixed with all. Relational fields return thunks, so
// graphql-go resolves a whole level of a query before the loaders flush the
// keys it collected.
package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/samber/lo"

	"github.com/Alp4ka/unigraph"
	"github.com/Alp4ka/unigraph/university"
)

type builder struct {
	pageInput     *graphql.InputObject
	sequenceInput *graphql.InputObject
	query         graphql.Fields
}

// NewSchema builds the query schema. The schema holds no state; resolvers
// find their storage and loaders in the request context, see WithLoaders.
func NewSchema() (graphql.Schema, error) {
	b := &builder{
		pageInput: graphql.NewInputObject(graphql.InputObjectConfig{
			Name:        "PageInput",
			Description: "Selects one page of a collection ordered by key.",
			Fields: graphql.InputObjectConfigFieldMap{
				"number": &graphql.InputObjectFieldConfig{
					Type:         graphql.Int,
					DefaultValue: unigraph.DefaultPageNumber,
					Description:  "Zero based page number.",
				},
				"size": &graphql.InputObjectFieldConfig{
					Type:         graphql.Int,
					DefaultValue: unigraph.DefaultLimit,
					Description:  "Number of records per page.",
				},
			},
		}),
		sequenceInput: graphql.NewInputObject(graphql.InputObjectConfig{
			Name:        "SequenceInput",
			Description: "Selects a slice of a collection next to a cursor.",
			Fields: graphql.InputObjectConfigFieldMap{
				"cursor": &graphql.InputObjectFieldConfig{
					Type:         graphql.String,
					DefaultValue: "",
					Description:  "Cursor of the record to start after or before. Empty starts at the beginning.",
				},
				"forward": &graphql.InputObjectFieldConfig{
					Type:         graphql.Boolean,
					DefaultValue: true,
					Description:  "Walk towards greater keys.",
				},
				"limit": &graphql.InputObjectFieldConfig{
					Type:         graphql.Int,
					DefaultValue: unigraph.DefaultLimit,
					Description:  "Maximum number of records.",
				},
			},
		}),
		query: graphql.Fields{},
	}

	room := graphql.NewObject(graphql.ObjectConfig{
		Name:        "Room",
		Description: "A lecture hall.",
		Fields: graphql.Fields{
			"id":       idField("Room number."),
			"capacity": scalarField(graphql.Int, "Number of seats."),
		},
	})

	district := graphql.NewObject(graphql.ObjectConfig{
		Name:        "District",
		Description: "A unit of local government.",
		Fields: graphql.Fields{
			"id":   idField("District code."),
			"name": scalarField(graphql.String, "District name."),
		},
	})

	place := graphql.NewObject(graphql.ObjectConfig{
		Name:        "Place",
		Description: "A settlement people live in.",
		Fields: graphql.Fields{
			"id":       idField("Postal code."),
			"name":     scalarField(graphql.String, "Place name."),
			"district": relation(district, "District the place belongs to.", university.Place.District),
		},
	})

	student := graphql.NewObject(graphql.ObjectConfig{
		Name:        "Student",
		Description: "A person enrolled at the university.",
		Fields: graphql.Fields{
			"id":         idField("Student number."),
			"firstName":  scalarField(graphql.String, "First name."),
			"lastName":   scalarField(graphql.String, "Last name."),
			"birthPlace": relation(place, "Place of birth.", university.Student.BirthPlace),
			"residence":  relation(place, "Place of residence.", university.Student.Residence),
			"birthday":   scalarField(graphql.String, "Date of birth, YYYY-MM-DD."),
			"nationalId": scalarField(graphql.String, "National identification number."),
		},
	})

	var orgUnit *graphql.Object
	orgUnit = graphql.NewObject(graphql.ObjectConfig{
		Name:        "OrgUnit",
		Description: "An organisational unit: university, faculty or department.",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":     idField("Unit code."),
				"name":   scalarField(graphql.String, "Unit name."),
				"parent": relation(orgUnit, "Parent unit. The root organisation is its own parent.", university.OrgUnit.Parent),
			}
		}),
	})

	course := graphql.NewObject(graphql.ObjectConfig{
		Name:        "Course",
		Description: "A course taught at an organisational unit.",
		Fields: graphql.Fields{
			"id":          idField("Course code."),
			"shortName":   scalarField(graphql.String, "Abbreviated name."),
			"name":        scalarField(graphql.String, "Full name."),
			"orgUnit":     relation(orgUnit, "Unit teaching the course.", university.Course.OrgUnit),
			"enrolled":    scalarField(graphql.Int, "Number of enrolled students."),
			"weeklyHours": scalarField(graphql.Int, "Hours per week."),
		},
	})

	instructor := graphql.NewObject(graphql.ObjectConfig{
		Name:        "Instructor",
		Description: "A member of the teaching staff.",
		Fields: graphql.Fields{
			"id":          idField("Instructor number."),
			"firstName":   scalarField(graphql.String, "First name."),
			"lastName":    scalarField(graphql.String, "Last name."),
			"residence":   relation(place, "Place of residence.", university.Instructor.Residence),
			"orgUnit":     relation(orgUnit, "Unit employing the instructor.", university.Instructor.OrgUnit),
			"coefficient": scalarField(graphql.Float, "Salary coefficient."),
		},
	})

	examResult := graphql.NewObject(graphql.ObjectConfig{
		Name:        "ExamResult",
		Description: "A grade a student received at an exam.",
		Fields: graphql.Fields{
			"id":         idField("Result number."),
			"student":    relation(student, "Examined student.", university.ExamResult.Student),
			"course":     relation(course, "Examined course.", university.ExamResult.Course),
			"instructor": relation(instructor, "Examiner.", university.ExamResult.Instructor),
			"date":       scalarField(graphql.String, "Exam date, YYYY-MM-DD."),
			"grade":      scalarField(graphql.Int, "Grade from 1 to 5."),
		},
	})

	reservation := graphql.NewObject(graphql.ObjectConfig{
		Name:        "Reservation",
		Description: "A room booked for a course.",
		Fields: graphql.Fields{
			"id":     idField("Reservation number."),
			"room":   relation(room, "Booked room.", university.Reservation.Room),
			"day":    scalarField(graphql.String, "Day of the week."),
			"hour":   scalarField(graphql.Int, "Starting hour."),
			"course": relation(course, "Course held in the room.", university.Reservation.Course),
		},
	})

	addQueries(b, room, university.RoomKind, "room", "rooms")
	addQueries(b, district, university.DistrictKind, "district", "districts")
	addQueries(b, place, university.PlaceKind, "place", "places")
	addQueries(b, student, university.StudentKind, "student", "students")
	addQueries(b, orgUnit, university.OrgUnitKind, "orgUnit", "orgUnits")
	addQueries(b, course, university.CourseKind, "course", "courses")
	addQueries(b, instructor, university.InstructorKind, "instructor", "instructors")
	addQueries(b, examResult, university.ExamResultKind, "examResult", "examResults")
	addQueries(b, reservation, university.ReservationKind, "reservation", "reservations")

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: b.query,
		}),
	})
}

// addQueries registers the page, sequence and all fields of one kind.
func addQueries[T unigraph.Entity](b *builder, object *graphql.Object, kind unigraph.Kind[T], field, plural string) {
	name := object.Name()

	pageType := graphql.NewObject(graphql.ObjectConfig{
		Name:        name + "Page",
		Description: "One page of " + plural + ".",
		Fields: graphql.Fields{
			"total": scalarField(graphql.Int, "Number of records in the collection."),
			"items": scalarField(graphql.NewList(object), "Records of the page."),
		},
	})

	elementType := graphql.NewObject(graphql.ObjectConfig{
		Name:        name + "Element",
		Description: "A record together with its cursor.",
		Fields: graphql.Fields{
			"item":   scalarField(object, "The record."),
			"cursor": scalarField(graphql.String, "Cursor positioned at the record."),
		},
	})

	sequenceType := graphql.NewObject(graphql.ObjectConfig{
		Name:        name + "Sequence",
		Description: "A slice of " + plural + " next to a cursor.",
		Fields: graphql.Fields{
			"total":  scalarField(graphql.Int, "Number of records in the collection."),
			"items":  scalarField(graphql.NewList(elementType), "Records in traversal order."),
			"cursor": scalarField(graphql.String, "Cursor of the last record, empty when there is none."),
			"end":    scalarField(graphql.Boolean, "No further records exist in the requested direction."),
		},
	})

	b.query[field] = &graphql.Field{
		Type:        pageType,
		Description: "Page of " + plural + " ordered by key.",
		Args: graphql.FieldConfigArgument{
			"page": &graphql.ArgumentConfig{
				Type: b.pageInput,
				DefaultValue: map[string]interface{}{
					"number": unigraph.DefaultPageNumber,
					"size":   unigraph.DefaultLimit,
				},
			},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			st, err := storageFrom(p.Context)
			if err != nil {
				return nil, err
			}

			input, _ := p.Args["page"].(map[string]interface{})
			pager, err := unigraph.RawOffsetPager{
				Number: intArg(input, "number", unigraph.DefaultPageNumber),
				Size:   intArg(input, "size", unigraph.DefaultLimit),
			}.Decode()
			if err != nil {
				return nil, fmt.Errorf("cannot paginate %s: %w", kind.Name(), err)
			}

			page, err := unigraph.GetPage(p.Context, st, kind, pager)
			if err != nil {
				return nil, err
			}

			return map[string]interface{}{
				"total": page.Total,
				"items": page.Items,
			}, nil
		},
	}

	b.query[field+"Sequence"] = &graphql.Field{
		Type:        sequenceType,
		Description: "Slice of " + plural + " next to a cursor.",
		Args: graphql.FieldConfigArgument{
			"sequence": &graphql.ArgumentConfig{
				Type: b.sequenceInput,
				DefaultValue: map[string]interface{}{
					"cursor":  "",
					"forward": true,
					"limit":   unigraph.DefaultLimit,
				},
			},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			st, err := storageFrom(p.Context)
			if err != nil {
				return nil, err
			}

			input, _ := p.Args["sequence"].(map[string]interface{})
			pager, err := unigraph.RawCursorPager{
				Limit:      intArg(input, "limit", unigraph.DefaultLimit),
				StartToken: stringArg(input, "cursor", ""),
				Forward:    boolArg(input, "forward", true),
			}.Decode()
			if err != nil {
				return nil, fmt.Errorf("cannot paginate %s: %w", kind.Name(), err)
			}

			slice, err := unigraph.GetSlice(p.Context, st, kind, pager)
			if err != nil {
				return nil, err
			}

			return map[string]interface{}{
				"total": slice.Total,
				"items": lo.Map(slice.Items, func(item unigraph.CursorItem[T], _ int) map[string]interface{} {
					return map[string]interface{}{
						"item":   item.Item,
						"cursor": item.Cursor.String(),
					}
				}),
				"cursor": slice.NextCursor.String(),
				"end":    slice.End,
			}, nil
		},
	}

	b.query["all"+strings.ToUpper(plural[:1])+plural[1:]] = &graphql.Field{
		Type:        graphql.NewList(object),
		Description: "Every record of " + plural + " ordered by key.",
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			st, err := storageFrom(p.Context)
			if err != nil {
				return nil, err
			}

			return unigraph.GetAll(p.Context, st, kind)
		},
	}
}

// relation builds a field resolved lazily through the request loaders.
// accessor is a method expression such as university.Place.District.
func relation[S any, T any](
	typ graphql.Output,
	description string,
	accessor func(S, context.Context, *university.Loaders) unigraph.Thunk[*T],
) *graphql.Field {
	return &graphql.Field{
		Type:        typ,
		Description: description,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			source, err := sourceAs[S](p.Source)
			if err != nil {
				return nil, err
			}

			loaders, err := LoadersFromContext(p.Context)
			if err != nil {
				return nil, err
			}

			return resolveLater(accessor(source, p.Context, loaders)), nil
		},
	}
}

// resolveLater adapts a thunk to the signature graphql-go defers. A missing
// record becomes an untyped nil so the field resolves to null.
func resolveLater[T any](thunk unigraph.Thunk[*T]) func() (interface{}, error) {
	return func() (interface{}, error) {
		value, err := thunk()
		if err != nil || value == nil {
			return nil, err
		}

		return value, nil
	}
}

// sourceAs accepts both records of list fields and pointers returned by
// relational fields.
func sourceAs[S any](source interface{}) (S, error) {
	switch v := source.(type) {
	case S:
		return v, nil
	case *S:
		if v != nil {
			return *v, nil
		}
	}

	var empty S
	return empty, fmt.Errorf("unexpected source %T", source)
}

func storageFrom(ctx context.Context) (unigraph.Storage, error) {
	loaders, err := LoadersFromContext(ctx)
	if err != nil {
		return nil, err
	}

	return loaders.Storage(), nil
}

func idField(description string) *graphql.Field {
	return scalarField(graphql.ID, description)
}

func scalarField(typ graphql.Output, description string) *graphql.Field {
	return &graphql.Field{
		Type:        typ,
		Description: description,
	}
}

func intArg(input map[string]interface{}, name string, def int) int {
	switch v := input[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

func stringArg(input map[string]interface{}, name, def string) string {
	if v, ok := input[name].(string); ok {
		return v
	}

	return def
}

func boolArg(input map[string]interface{}, name string, def bool) bool {
	if v, ok := input[name].(bool); ok {
		return v
	}

	return def
}
